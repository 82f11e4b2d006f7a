// Package ctyvalue converts dynamically typed cty values into vtbuf values.
//
// cty is the value system behind HCL; scene description files decode into
// cty values whose shape (number, list, tuple) carries no binary layout.
// A type hint such as "float3" or "matrix4d" selects the element type; the
// shape of the cty value decides between a single element and an array:
//
//	Convert(cty.NumberFloatVal(1), "float")          // Float
//	Convert([1, 2, 3], "float")                      // Float[3]
//	Convert([1, 2, 3], "float3")                     // FloatVec3
//	Convert([[1, 2, 3], [4, 5, 6]], "float3")        // FloatVec3[2]
//
// Matrices are written as flat, row-major lists of 9 or 16 numbers.
package ctyvalue

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/vtbuf"
	"github.com/x448/float16"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
	"golang.org/x/image/math/f32"
	"golang.org/x/image/math/f64"
)

var (
	// ErrUnknownHint is returned for a type hint with no element type.
	ErrUnknownHint = errors.New("ctyvalue: unknown type hint")

	// ErrNotWhollyKnown is returned for null or unknown values.
	ErrNotWhollyKnown = errors.New("ctyvalue: value is null or not fully known")

	// ErrShape is returned when a value's shape does not fit the hint.
	ErrShape = errors.New("ctyvalue: value shape does not match type hint")
)

type decodeFunc func(v cty.Value, array bool) (vtbuf.Value, error)

type decoder struct {
	kind   vtbuf.ComponentType
	decode decodeFunc
}

// decoders is keyed by lower-case hint. Every ComponentType is also
// reachable by its lower-cased name, e.g. "floatvec3".
var decoders = map[string]decoder{
	"int8":   {vtbuf.TypeInt8, decode[int8]},
	"uint8":  {vtbuf.TypeUint8, decode[uint8]},
	"int16":  {vtbuf.TypeInt16, decode[int16]},
	"uint16": {vtbuf.TypeUint16, decode[uint16]},

	"int":  {vtbuf.TypeInt32, decode[int32]},
	"int2": {vtbuf.TypeInt32Vec2, decode[vtbuf.Vec2i]},
	"int3": {vtbuf.TypeInt32Vec3, decode[vtbuf.Vec3i]},
	"int4": {vtbuf.TypeInt32Vec4, decode[vtbuf.Vec4i]},

	"uint":  {vtbuf.TypeUint32, decode[uint32]},
	"uint2": {vtbuf.TypeUint32Vec2, decode[vtbuf.Vec2u]},
	"uint3": {vtbuf.TypeUint32Vec3, decode[vtbuf.Vec3u]},
	"uint4": {vtbuf.TypeUint32Vec4, decode[vtbuf.Vec4u]},

	"half":  {vtbuf.TypeHalf, decodeVia(float16.Fromfloat32)},
	"half2": {vtbuf.TypeHalfVec2, decodeVia(halfVec2)},
	"half3": {vtbuf.TypeHalfVec3, decodeVia(halfVec3)},
	"half4": {vtbuf.TypeHalfVec4, decodeVia(halfVec4)},

	"float":    {vtbuf.TypeFloat, decode[float32]},
	"float2":   {vtbuf.TypeFloatVec2, decode[f32.Vec2]},
	"float3":   {vtbuf.TypeFloatVec3, decode[f32.Vec3]},
	"float4":   {vtbuf.TypeFloatVec4, decode[f32.Vec4]},
	"matrix3f": {vtbuf.TypeFloatMat3, decode[f32.Mat3]},
	"matrix4f": {vtbuf.TypeFloatMat4, decode[f32.Mat4]},

	"double":   {vtbuf.TypeDouble, decode[float64]},
	"double2":  {vtbuf.TypeDoubleVec2, decode[f64.Vec2]},
	"double3":  {vtbuf.TypeDoubleVec3, decode[f64.Vec3]},
	"double4":  {vtbuf.TypeDoubleVec4, decode[f64.Vec4]},
	"matrix3d": {vtbuf.TypeDoubleMat3, decode[f64.Mat3]},
	"matrix4d": {vtbuf.TypeDoubleMat4, decode[f64.Mat4]},
}

func init() {
	aliases := make(map[string]decoder)
	for _, d := range decoders {
		aliases[strings.ToLower(d.kind.String())] = d
	}
	for name, d := range aliases {
		if _, ok := decoders[name]; !ok {
			decoders[name] = d
		}
	}
}

// Hints returns the accepted type hints, sorted.
func Hints() []string {
	hints := make([]string, 0, len(decoders))
	for h := range decoders {
		hints = append(hints, h)
	}
	sort.Strings(hints)
	return hints
}

// KindOf returns the element type a hint selects.
func KindOf(hint string) (vtbuf.ComponentType, error) {
	d, ok := decoders[strings.ToLower(hint)]
	if !ok {
		return vtbuf.TypeInvalid, fmt.Errorf("%w: %q", ErrUnknownHint, hint)
	}
	return d.kind, nil
}

// Convert decodes v as the element type named by hint. Numbers, lists and
// tuples are accepted; sets, maps and objects are not.
func Convert(v cty.Value, hint string) (vtbuf.Value, error) {
	d, ok := decoders[strings.ToLower(hint)]
	if !ok {
		return vtbuf.Value{}, fmt.Errorf("%w: %q", ErrUnknownHint, hint)
	}
	if v.IsNull() || !v.IsWhollyKnown() {
		return vtbuf.Value{}, ErrNotWhollyKnown
	}

	array, err := isArray(v, d.kind)
	if err != nil {
		return vtbuf.Value{}, err
	}
	return d.decode(v, array)
}

// isArray decides whether v is an array of elements or a single element.
// For vector and matrix kinds a flat list of numbers is one element.
func isArray(v cty.Value, kind vtbuf.ComponentType) (bool, error) {
	ty := v.Type()
	switch {
	case ty == cty.Number:
		if kind.ComponentCount() != 1 {
			return false, fmt.Errorf("%w: number for %s", ErrShape, kind)
		}
		return false, nil
	case !isSequence(ty):
		return false, fmt.Errorf("%w: %s for %s", ErrShape, ty.FriendlyName(), kind)
	case kind.ComponentCount() == 1, v.LengthInt() == 0:
		return true, nil
	}

	first := v.Index(cty.NumberIntVal(0))
	return isSequence(first.Type()), nil
}

func isSequence(ty cty.Type) bool {
	return ty.IsListType() || ty.IsTupleType()
}

// targetType returns the cty type gocty needs to fill T or []T.
func targetType(componentCount int, array bool) cty.Type {
	ty := cty.Number
	if componentCount > 1 {
		ty = cty.List(ty)
	}
	if array {
		ty = cty.List(ty)
	}
	return ty
}

func decode[T vtbuf.Element](v cty.Value, array bool) (vtbuf.Value, error) {
	return decodeVia(func(t T) T { return t })(v, array)
}

// decodeVia decodes into S with gocty, then maps each element to T.
func decodeVia[S any, T vtbuf.Element](conv func(S) T) decodeFunc {
	return func(v cty.Value, array bool) (vtbuf.Value, error) {
		var zero T
		want := targetType(vtbuf.ScalarOf(zero).Kind().ComponentCount(), array)
		cv, err := convert.Convert(v, want)
		if err != nil {
			return vtbuf.Value{}, fmt.Errorf("%w: %w", ErrShape, err)
		}

		if !array {
			var s S
			if err := gocty.FromCtyValue(cv, &s); err != nil {
				return vtbuf.Value{}, fmt.Errorf("%w: %w", ErrShape, err)
			}
			return vtbuf.ScalarOf(conv(s)), nil
		}

		var ss []S
		if err := gocty.FromCtyValue(cv, &ss); err != nil {
			return vtbuf.Value{}, fmt.Errorf("%w: %w", ErrShape, err)
		}
		out := make([]T, len(ss))
		for i, s := range ss {
			out[i] = conv(s)
		}
		return vtbuf.ArrayOf(out), nil
	}
}

func halfVec2(v f32.Vec2) vtbuf.Vec2h {
	return vtbuf.Vec2h{float16.Fromfloat32(v[0]), float16.Fromfloat32(v[1])}
}

func halfVec3(v f32.Vec3) vtbuf.Vec3h {
	return vtbuf.Vec3h{float16.Fromfloat32(v[0]), float16.Fromfloat32(v[1]), float16.Fromfloat32(v[2])}
}

func halfVec4(v f32.Vec4) vtbuf.Vec4h {
	return vtbuf.Vec4h{
		float16.Fromfloat32(v[0]), float16.Fromfloat32(v[1]),
		float16.Fromfloat32(v[2]), float16.Fromfloat32(v[3]),
	}
}
