package vtbuf

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/x448/float16"
	"golang.org/x/image/math/f32"
	"golang.org/x/image/math/f64"
)

// Half is an IEEE 754 binary16 floating point value.
type Half = float16.Float16

// Fixed-size vector element types with no x/image counterpart.
type (
	Vec2h [2]Half
	Vec3h [3]Half
	Vec4h [4]Half

	Vec2i [2]int32
	Vec3i [3]int32
	Vec4i [4]int32

	Vec2u [2]uint32
	Vec3u [3]uint32
	Vec4u [4]uint32
)

// Element is the closed set of element shapes a Value can hold.
//
// Floating point vectors and matrices use the golang.org/x/image/math
// types; matrices are stored row-major.
type Element interface {
	int8 | uint8 | int16 | uint16 |
		int32 | Vec2i | Vec3i | Vec4i |
		uint32 | Vec2u | Vec3u | Vec4u |
		Half | Vec2h | Vec3h | Vec4h |
		float32 | f32.Vec2 | f32.Vec3 | f32.Vec4 | f32.Mat3 | f32.Mat4 |
		float64 | f64.Vec2 | f64.Vec3 | f64.Vec4 | f64.Mat3 | f64.Mat4
}

// elementKinds maps every Element type to its ComponentType.
// It is the single lookup table used to tag values.
var elementKinds = map[reflect.Type]ComponentType{
	reflect.TypeFor[int8]():   TypeInt8,
	reflect.TypeFor[uint8]():  TypeUint8,
	reflect.TypeFor[int16]():  TypeInt16,
	reflect.TypeFor[uint16](): TypeUint16,

	reflect.TypeFor[int32](): TypeInt32,
	reflect.TypeFor[Vec2i](): TypeInt32Vec2,
	reflect.TypeFor[Vec3i](): TypeInt32Vec3,
	reflect.TypeFor[Vec4i](): TypeInt32Vec4,

	reflect.TypeFor[uint32](): TypeUint32,
	reflect.TypeFor[Vec2u]():  TypeUint32Vec2,
	reflect.TypeFor[Vec3u]():  TypeUint32Vec3,
	reflect.TypeFor[Vec4u]():  TypeUint32Vec4,

	reflect.TypeFor[Half]():  TypeHalf,
	reflect.TypeFor[Vec2h](): TypeHalfVec2,
	reflect.TypeFor[Vec3h](): TypeHalfVec3,
	reflect.TypeFor[Vec4h](): TypeHalfVec4,

	reflect.TypeFor[float32]():  TypeFloat,
	reflect.TypeFor[f32.Vec2](): TypeFloatVec2,
	reflect.TypeFor[f32.Vec3](): TypeFloatVec3,
	reflect.TypeFor[f32.Vec4](): TypeFloatVec4,
	reflect.TypeFor[f32.Mat3](): TypeFloatMat3,
	reflect.TypeFor[f32.Mat4](): TypeFloatMat4,

	reflect.TypeFor[float64]():  TypeDouble,
	reflect.TypeFor[f64.Vec2](): TypeDoubleVec2,
	reflect.TypeFor[f64.Vec3](): TypeDoubleVec3,
	reflect.TypeFor[f64.Vec4](): TypeDoubleVec4,
	reflect.TypeFor[f64.Mat3](): TypeDoubleMat3,
	reflect.TypeFor[f64.Mat4](): TypeDoubleMat4,
}

// Value is an immutable, type-tagged scene data value: either a single
// element or a homogeneous array of elements.
//
// A Value references the storage it was built from; it never copies array
// payloads. Callers must not modify a slice after wrapping it.
//
// The zero Value is an empty, invalid value.
type Value struct {
	kind  ComponentType
	array bool
	n     int
	data  unsafe.Pointer
	raw   any
}

// ScalarOf wraps a single element.
func ScalarOf[T Element](v T) Value {
	box := []T{v}
	return Value{
		kind: kindOf[T](),
		n:    1,
		data: unsafe.Pointer(unsafe.SliceData(box)),
		raw:  v,
	}
}

// ArrayOf wraps a slice of elements without copying it.
// A nil or empty slice yields a valid, empty array value.
func ArrayOf[T Element](vs []T) Value {
	return Value{
		kind:  kindOf[T](),
		array: true,
		n:     len(vs),
		data:  unsafe.Pointer(unsafe.SliceData(vs)),
		raw:   vs,
	}
}

// ValueOf wraps an opaque value produced by a dynamically typed layer.
//
// x may be an Element or a slice of Elements. Any other runtime type
// yields a Value whose Kind is TypeInvalid; ValueOf never panics.
func ValueOf(x any) Value {
	if v, ok := x.(Value); ok {
		return v
	}
	if x == nil {
		return Value{}
	}

	rv := reflect.ValueOf(x)
	t := rv.Type()

	if t.Kind() == reflect.Slice {
		k, ok := elementKinds[t.Elem()]
		if !ok {
			return Value{array: true, n: rv.Len(), raw: x}
		}
		return Value{
			kind:  k,
			array: true,
			n:     rv.Len(),
			data:  rv.UnsafePointer(),
			raw:   x,
		}
	}

	k, ok := elementKinds[t]
	if !ok {
		return Value{n: 1, raw: x}
	}
	box := reflect.New(t)
	box.Elem().Set(rv)
	return Value{
		kind: k,
		n:    1,
		data: box.UnsafePointer(),
		raw:  x,
	}
}

func kindOf[T Element]() ComponentType {
	return elementKinds[reflect.TypeFor[T]()]
}

// Kind returns the component type of one element, or TypeInvalid when the
// runtime type of the wrapped value has no mapping.
func (v Value) Kind() ComponentType {
	return v.kind
}

// IsArray reports whether v holds an array of elements.
func (v Value) IsArray() bool {
	return v.array
}

// Len returns the number of top-level elements: the array length for array
// values, 1 for scalar values and 0 for the zero Value.
func (v Value) Len() int {
	return v.n
}

// IsEmpty reports whether v holds no elements.
func (v Value) IsEmpty() bool {
	return v.n == 0
}

// Bytes returns a read-only view of the element storage. The returned slice
// aliases the wrapped storage and must not be modified. Invalid values
// return nil.
func (v Value) Bytes() []byte {
	if !v.kind.IsValid() || v.n == 0 || v.data == nil {
		return nil
	}
	return unsafe.Slice((*byte)(v.data), v.n*v.kind.Size())
}

// Any returns the wrapped Go value: the slice for arrays, the element for
// scalars.
func (v Value) Any() any {
	return v.raw
}

// String returns a short description such as "FloatVec3[4]" or "Double".
func (v Value) String() string {
	name := v.kind.String()
	if v.kind == TypeInvalid && v.raw != nil {
		name = fmt.Sprintf("Invalid(%T)", v.raw)
	}
	if v.array {
		return fmt.Sprintf("%s[%d]", name, v.n)
	}
	return name
}
