package vtbuf

import "fmt"

// ComponentType identifies the binary type of one element of a buffer.
//
// The set is closed: scalars of 8/16/32-bit signed and unsigned integers,
// 16/32/64-bit floats, and the fixed-size vector and matrix variants built
// from them. The zero value is TypeInvalid.
type ComponentType uint8

const (
	// TypeInvalid marks a value whose runtime shape has no mapping.
	TypeInvalid ComponentType = iota

	TypeInt8
	TypeUint8
	TypeInt16
	TypeUint16

	TypeInt32
	TypeInt32Vec2
	TypeInt32Vec3
	TypeInt32Vec4

	TypeUint32
	TypeUint32Vec2
	TypeUint32Vec3
	TypeUint32Vec4

	TypeHalf
	TypeHalfVec2
	TypeHalfVec3
	TypeHalfVec4

	TypeFloat
	TypeFloatVec2
	TypeFloatVec3
	TypeFloatVec4
	TypeFloatMat3
	TypeFloatMat4

	TypeDouble
	TypeDoubleVec2
	TypeDoubleVec3
	TypeDoubleVec4
	TypeDoubleMat3
	TypeDoubleMat4

	typeCount
)

// typeInfo describes the layout of one ComponentType.
type typeInfo struct {
	name   string
	scalar ComponentType
	count  int // scalars per element
	size   int // bytes per scalar
}

// typeInfos is indexed by ComponentType.
var typeInfos = [typeCount]typeInfo{
	TypeInvalid: {"Invalid", TypeInvalid, 0, 0},

	TypeInt8:   {"Int8", TypeInt8, 1, 1},
	TypeUint8:  {"Uint8", TypeUint8, 1, 1},
	TypeInt16:  {"Int16", TypeInt16, 1, 2},
	TypeUint16: {"Uint16", TypeUint16, 1, 2},

	TypeInt32:     {"Int32", TypeInt32, 1, 4},
	TypeInt32Vec2: {"Int32Vec2", TypeInt32, 2, 4},
	TypeInt32Vec3: {"Int32Vec3", TypeInt32, 3, 4},
	TypeInt32Vec4: {"Int32Vec4", TypeInt32, 4, 4},

	TypeUint32:     {"Uint32", TypeUint32, 1, 4},
	TypeUint32Vec2: {"Uint32Vec2", TypeUint32, 2, 4},
	TypeUint32Vec3: {"Uint32Vec3", TypeUint32, 3, 4},
	TypeUint32Vec4: {"Uint32Vec4", TypeUint32, 4, 4},

	TypeHalf:     {"Half", TypeHalf, 1, 2},
	TypeHalfVec2: {"HalfVec2", TypeHalf, 2, 2},
	TypeHalfVec3: {"HalfVec3", TypeHalf, 3, 2},
	TypeHalfVec4: {"HalfVec4", TypeHalf, 4, 2},

	TypeFloat:     {"Float", TypeFloat, 1, 4},
	TypeFloatVec2: {"FloatVec2", TypeFloat, 2, 4},
	TypeFloatVec3: {"FloatVec3", TypeFloat, 3, 4},
	TypeFloatVec4: {"FloatVec4", TypeFloat, 4, 4},
	TypeFloatMat3: {"FloatMat3", TypeFloat, 9, 4},
	TypeFloatMat4: {"FloatMat4", TypeFloat, 16, 4},

	TypeDouble:     {"Double", TypeDouble, 1, 8},
	TypeDoubleVec2: {"DoubleVec2", TypeDouble, 2, 8},
	TypeDoubleVec3: {"DoubleVec3", TypeDouble, 3, 8},
	TypeDoubleVec4: {"DoubleVec4", TypeDouble, 4, 8},
	TypeDoubleMat3: {"DoubleMat3", TypeDouble, 9, 8},
	TypeDoubleMat4: {"DoubleMat4", TypeDouble, 16, 8},
}

func (t ComponentType) info() typeInfo {
	if t >= typeCount {
		return typeInfos[TypeInvalid]
	}
	return typeInfos[t]
}

// String returns the type name, e.g. "FloatVec3".
func (t ComponentType) String() string {
	if t >= typeCount {
		return fmt.Sprintf("ComponentType(%d)", uint8(t))
	}
	return t.info().name
}

// IsValid reports whether t is a known, non-invalid type.
func (t ComponentType) IsValid() bool {
	return t != TypeInvalid && t < typeCount
}

// Scalar returns the scalar type t is built from.
// Scalars return themselves; TypeFloatMat4 returns TypeFloat.
func (t ComponentType) Scalar() ComponentType {
	return t.info().scalar
}

// ComponentCount returns the number of scalars in one element of type t:
// 1 for scalars, 3 for a 3-vector, 16 for a 4x4 matrix.
func (t ComponentType) ComponentCount() int {
	return t.info().count
}

// Size returns the size in bytes of one element of type t.
func (t ComponentType) Size() int {
	i := t.info()
	return i.count * i.size
}

// IsMatrix reports whether t is a 3x3 or 4x4 matrix type.
func (t ComponentType) IsMatrix() bool {
	switch t {
	case TypeFloatMat3, TypeFloatMat4, TypeDoubleMat3, TypeDoubleMat4:
		return true
	}
	return false
}

// TupleType describes the binary layout of one buffer element:
// Count scalars of type Type, tightly packed.
//
// Type is always a scalar ComponentType for tuple types derived by this
// package; vector and matrix shapes are folded into Count.
type TupleType struct {
	Type  ComponentType
	Count int
}

// IsValid reports whether the tuple describes a non-empty, known layout.
func (t TupleType) IsValid() bool {
	return t.Type.IsValid() && t.Count > 0
}

// Size returns the size of one tuple in bytes.
func (t TupleType) Size() int {
	return t.Type.Size() * t.Count
}

// String returns "(Type, Count)".
func (t TupleType) String() string {
	return fmt.Sprintf("(%s, %d)", t.Type, t.Count)
}

// TupleTypeOf returns the tuple type of one element of v with an array
// multiplicity of 1. Values with an unmapped runtime type return the zero
// TupleType.
func TupleTypeOf(v Value) TupleType {
	k := v.Kind()
	if !k.IsValid() {
		return TupleType{}
	}
	return TupleType{Type: k.Scalar(), Count: k.ComponentCount()}
}
