package vtbuf

import (
	"errors"
	"os"
	"strconv"
	"sync"

	"golang.org/x/image/math/f32"
	"golang.org/x/image/math/f64"
)

// Scene matrices are 4x4, row-major, and transform row vectors:
//
//	| m0  m1  m2  m3  |
//	| m4  m5  m6  m7  |
//	| m8  m9  m10 m11 |
//	| m12 m13 m14 m15 |
//
// The translation lives in m12, m13, m14.

// IdentityMatrix returns the 4x4 identity matrix.
func IdentityMatrix() f64.Mat4 {
	return f64.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// TranslateMatrix creates a translation matrix.
func TranslateMatrix(x, y, z float64) f64.Mat4 {
	return f64.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

// ScaleMatrix creates a scaling matrix.
func ScaleMatrix(x, y, z float64) f64.Mat4 {
	return f64.Mat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// MultiplyMatrix returns a * b. With row vectors, a is applied first.
func MultiplyMatrix(a, b f64.Mat4) f64.Mat4 {
	var m f64.Mat4
	for r := range 4 {
		for c := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[r*4+k] * b[k*4+c]
			}
			m[r*4+c] = sum
		}
	}
	return m
}

// IsIdentityMatrix reports whether m is exactly the identity.
func IsIdentityMatrix(m f64.Mat4) bool {
	return m == IdentityMatrix()
}

// MatrixToFloat converts a double precision matrix to single precision,
// preserving element order.
func MatrixToFloat(m f64.Mat4) f32.Mat4 {
	var out f32.Mat4
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

// EnvDoubleMatrix is the environment variable that selects double precision
// default matrices. It accepts any value strconv.ParseBool understands.
const EnvDoubleMatrix = "VTBUF_ENABLE_DOUBLEMATRIX"

// ErrConfigFrozen is returned when the matrix precision is changed after
// DefaultMatrixType has been queried.
var ErrConfigFrozen = errors.New("vtbuf: matrix precision already in use")

// matrixConfig holds the process-wide matrix precision setting.
var matrixConfig struct {
	mu       sync.Mutex
	frozen   bool
	override *bool
}

var defaultMatrixType = sync.OnceValue(func() ComponentType {
	matrixConfig.mu.Lock()
	defer matrixConfig.mu.Unlock()
	matrixConfig.frozen = true

	env, envSet := os.LookupEnv(EnvDoubleMatrix)
	return selectMatrixType(compiledDoubleMatrices, env, envSet, matrixConfig.override)
})

// selectMatrixType resolves the default matrix type. The override wins over
// the environment, which wins over the compiled default.
func selectMatrixType(compiled bool, env string, envSet bool, override *bool) ComponentType {
	double := compiled
	if envSet {
		if b, err := strconv.ParseBool(env); err == nil {
			double = b
		} else {
			Logger().Warn("vtbuf: ignoring malformed matrix precision setting",
				"env", EnvDoubleMatrix, "value", env)
		}
	}
	if override != nil {
		double = *override
	}
	if double {
		return TypeDoubleMat4
	}
	return TypeFloatMat4
}

// DefaultMatrixType returns the matrix type used when a caller does not
// choose a precision: TypeFloatMat4, or TypeDoubleMat4 when double precision
// matrices are enabled.
//
// The result is fixed for the lifetime of the process. It is decided on the
// first call from, in increasing priority: the vtbuf_doublematrix build tag,
// the VTBUF_ENABLE_DOUBLEMATRIX environment variable, and
// SetDoublePrecisionMatrices.
func DefaultMatrixType() ComponentType {
	return defaultMatrixType()
}

// SetDoublePrecisionMatrices enables or disables double precision default
// matrices. It must be called before the first DefaultMatrixType call (and
// so before any matrix source is built); afterwards it returns
// ErrConfigFrozen and has no effect.
func SetDoublePrecisionMatrices(enable bool) error {
	matrixConfig.mu.Lock()
	defer matrixConfig.mu.Unlock()
	if matrixConfig.frozen {
		return ErrConfigFrozen
	}
	matrixConfig.override = &enable
	return nil
}

// matrixValue converts matrices to typ, TypeDoubleMat4 or TypeFloatMat4,
// and wraps them as an array value.
func matrixValue(ms []f64.Mat4, typ ComponentType) Value {
	if typ == TypeDoubleMat4 {
		out := make([]f64.Mat4, len(ms))
		copy(out, ms)
		return ArrayOf(out)
	}
	out := make([]f32.Mat4, len(ms))
	for i, m := range ms {
		out[i] = MatrixToFloat(m)
	}
	return ArrayOf(out)
}
