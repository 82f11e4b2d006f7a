package ctyvalue

import (
	"errors"
	"testing"

	"github.com/gogpu/vtbuf"
	"github.com/google/go-cmp/cmp"
	"github.com/x448/float16"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/image/math/f32"
	"golang.org/x/image/math/f64"
)

func nums(vs ...float64) cty.Value {
	out := make([]cty.Value, len(vs))
	for i, v := range vs {
		out[i] = cty.NumberFloatVal(v)
	}
	return cty.TupleVal(out)
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name  string
		value cty.Value
		hint  string
		kind  vtbuf.ComponentType
		array bool
		want  any
	}{
		{
			name: "float scalar", value: cty.NumberFloatVal(1.5), hint: "float",
			kind: vtbuf.TypeFloat, want: float32(1.5),
		},
		{
			name: "float array", value: nums(1, 2, 3), hint: "float",
			kind: vtbuf.TypeFloat, array: true, want: []float32{1, 2, 3},
		},
		{
			name: "single vec3", value: nums(1, 2, 3), hint: "float3",
			kind: vtbuf.TypeFloatVec3, want: f32.Vec3{1, 2, 3},
		},
		{
			name: "vec3 array", value: cty.TupleVal([]cty.Value{nums(0, 0, 0), nums(1, 0, 0)}), hint: "float3",
			kind: vtbuf.TypeFloatVec3, array: true, want: []f32.Vec3{{0, 0, 0}, {1, 0, 0}},
		},
		{
			name: "int list", value: cty.ListVal([]cty.Value{cty.NumberIntVal(0), cty.NumberIntVal(7)}), hint: "int",
			kind: vtbuf.TypeInt32, array: true, want: []int32{0, 7},
		},
		{
			name: "component type name", value: nums(1, 2), hint: "Int32Vec2",
			kind: vtbuf.TypeInt32Vec2, want: vtbuf.Vec2i{1, 2},
		},
		{
			name: "uint8 array", value: nums(255, 0), hint: "uint8",
			kind: vtbuf.TypeUint8, array: true, want: []uint8{255, 0},
		},
		{
			name: "matrix4d", value: nums(1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 4, 5, 6, 1), hint: "matrix4d",
			kind: vtbuf.TypeDoubleMat4, want: vtbuf.TranslateMatrix(4, 5, 6),
		},
		{
			name: "double2 array", value: cty.TupleVal([]cty.Value{nums(1, 2)}), hint: "double2",
			kind: vtbuf.TypeDoubleVec2, array: true, want: []f64.Vec2{{1, 2}},
		},
		{
			name: "empty array", value: cty.EmptyTupleVal, hint: "float3",
			kind: vtbuf.TypeFloatVec3, array: true, want: []f32.Vec3{},
		},
		{
			name: "half2", value: nums(0.5, 2), hint: "half2",
			kind: vtbuf.TypeHalfVec2, want: vtbuf.Vec2h{float16.Fromfloat32(0.5), float16.Fromfloat32(2)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Convert(tt.value, tt.hint)
			if err != nil {
				t.Fatalf("Convert() error = %v", err)
			}
			if v.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", v.Kind(), tt.kind)
			}
			if v.IsArray() != tt.array {
				t.Errorf("IsArray() = %v, want %v", v.IsArray(), tt.array)
			}
			if diff := cmp.Diff(tt.want, v.Any()); diff != "" {
				t.Errorf("Any() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConvertErrors(t *testing.T) {
	tests := []struct {
		name  string
		value cty.Value
		hint  string
		want  error
	}{
		{"unknown hint", nums(1), "quaternion", ErrUnknownHint},
		{"null", cty.NullVal(cty.Number), "float", ErrNotWhollyKnown},
		{"unknown", cty.UnknownVal(cty.List(cty.Number)), "float", ErrNotWhollyKnown},
		{"number for vector", cty.NumberIntVal(1), "float3", ErrShape},
		{"string", cty.StringVal("x"), "float", ErrShape},
		{"wrong vector length", nums(1, 2), "float3", ErrShape},
		{"nested for scalar", cty.TupleVal([]cty.Value{nums(1, 2)}), "float", ErrShape},
		{"out of range", nums(300), "uint8", ErrShape},
		{"object", cty.ObjectVal(map[string]cty.Value{"x": cty.NumberIntVal(1)}), "float", ErrShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Convert(tt.value, tt.hint); !errors.Is(err, tt.want) {
				t.Errorf("Convert() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestConvertFeedsValueSource(t *testing.T) {
	v, err := Convert(cty.TupleVal([]cty.Value{nums(0, 0, 0), nums(1, 1, 1), nums(2, 2, 2)}), "float3")
	if err != nil {
		t.Fatal(err)
	}
	src, err := vtbuf.NewValueSource("points", v, 1)
	if err != nil {
		t.Fatal(err)
	}
	if src.TupleType() != (vtbuf.TupleType{Type: vtbuf.TypeFloat, Count: 3}) {
		t.Errorf("TupleType() = %v", src.TupleType())
	}
	if !src.Resolve() || src.NumElements() != 3 || len(src.Data()) != 36 {
		t.Errorf("resolved source = %v with %d bytes", src, len(src.Data()))
	}
}

func TestKindOfAndHints(t *testing.T) {
	k, err := KindOf("Matrix4F")
	if err != nil || k != vtbuf.TypeFloatMat4 {
		t.Errorf("KindOf(Matrix4F) = %v, %v", k, err)
	}
	if _, err := KindOf("nope"); !errors.Is(err, ErrUnknownHint) {
		t.Errorf("KindOf(nope) error = %v", err)
	}

	hints := Hints()
	for _, want := range []string{"float3", "floatvec3", "matrix4d", "doublemat4", "half"} {
		found := false
		for _, h := range hints {
			if h == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Hints() missing %q", want)
		}
	}
}
