package vtbuf

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/image/math/f64"
)

// ErrInvalidArraySize is returned when a source is built with an array size
// below 1.
var ErrInvalidArraySize = errors.New("vtbuf: array size must be at least 1")

// ValueSource is a BufferSource over a single Value.
//
// The tuple type is derived from the value's runtime shape when the source is
// built, so TupleType and AddBufferSpecs never need resolution. Resolve only
// finalises the element count; Data aliases the value's storage and is never
// copied.
//
// A value whose runtime type has no mapping produces an invalid source:
// IsValid returns false, TupleType is the zero TupleType and Data is nil.
// Callers are expected to filter invalid sources out before computing a
// buffer layout.
type ValueSource struct {
	ResolveState

	name      string
	value     Value
	arraySize int
	tupleType TupleType

	// Written once by the resolving caller before MarkResolved.
	numElements int
}

var _ BufferSource = (*ValueSource)(nil)

// NewValueSource wraps v. arraySize is the number of values per element:
// with arraySize 2, an array of six floats is three elements of two floats.
func NewValueSource(name string, v Value, arraySize int) (*ValueSource, error) {
	if arraySize < 1 {
		return nil, fmt.Errorf("%w: source %q has array size %d", ErrInvalidArraySize, name, arraySize)
	}

	s := &ValueSource{
		name:      name,
		value:     v,
		arraySize: arraySize,
	}
	if tt := TupleTypeOf(v); tt.IsValid() {
		tt.Count *= arraySize
		s.tupleType = tt
	} else {
		Logger().Debug("vtbuf: unmapped value type", "source", name, "value", v.String())
	}
	return s, nil
}

// NewMatrixSource wraps a single matrix converted to DefaultMatrixType as a
// one-element array.
func NewMatrixSource(name string, m f64.Mat4) *ValueSource {
	s, _ := newMatrixSource(name, []f64.Mat4{m}, 1, DefaultMatrixType())
	return s
}

// NewMatrixArraySource converts every matrix to DefaultMatrixType, preserving
// order, and wraps the result.
func NewMatrixArraySource(name string, ms []f64.Mat4, arraySize int) (*ValueSource, error) {
	return newMatrixSource(name, ms, arraySize, DefaultMatrixType())
}

// newMatrixSource converts ms to the matrix type typ.
func newMatrixSource(name string, ms []f64.Mat4, arraySize int, typ ComponentType) (*ValueSource, error) {
	if arraySize < 1 {
		return nil, fmt.Errorf("%w: source %q has array size %d", ErrInvalidArraySize, name, arraySize)
	}
	return NewValueSource(name, matrixValue(ms, typ), arraySize)
}

// Name returns the source name.
func (s *ValueSource) Name() string {
	return s.name
}

// Value returns the held value.
func (s *ValueSource) Value() Value {
	return s.value
}

// ArraySize returns the number of values per element.
func (s *ValueSource) ArraySize() int {
	return s.arraySize
}

// TupleType returns the layout of one element.
func (s *ValueSource) TupleType() TupleType {
	return s.tupleType
}

// Data returns a read-only view of the held value's storage, or nil for an
// invalid source. It must only be called after Resolve returned true.
func (s *ValueSource) Data() []byte {
	if !s.checkValid() {
		return nil
	}
	return s.value.Bytes()
}

// NumElements returns the number of elements. It is 0 until Resolve has
// returned true.
func (s *ValueSource) NumElements() int {
	if !s.IsResolved() {
		return 0
	}
	return s.numElements
}

// AddBufferSpecs appends the source's spec.
func (s *ValueSource) AddBufferSpecs(specs *BufferSpecs) {
	specs.Add(s.name, s.tupleType)
}

// Resolve computes the element count. It returns false only while another
// caller is resolving; repeated calls after resolution return true without
// further work.
func (s *ValueSource) Resolve() bool {
	if !s.TryAcquire() {
		return s.IsResolved()
	}

	switch {
	case !s.checkValid():
		s.numElements = 0
	case s.value.IsArray():
		s.numElements = s.value.Len() / s.arraySize
	default:
		s.numElements = 1
	}

	s.MarkResolved()
	return true
}

// IsValid reports whether the held value mapped to a tuple type.
func (s *ValueSource) IsValid() bool {
	return s.checkValid()
}

func (s *ValueSource) checkValid() bool {
	return s.tupleType.IsValid()
}

// String renders the source for diagnostics, e.g.
// "points: (Float, 3) x 4" or "points: (Float, 3) x unresolved".
func (s *ValueSource) String() string {
	count := "unresolved"
	if s.IsResolved() {
		count = fmt.Sprint(s.numElements)
	}
	if !s.checkValid() {
		return fmt.Sprintf("%s: invalid %s x %s", s.name, s.value, count)
	}
	return fmt.Sprintf("%s: %s x %s", s.name, s.tupleType, count)
}

// LogValue implements slog.LogValuer.
func (s *ValueSource) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("name", s.name),
		slog.String("tuple", s.tupleType.String()),
	}
	if s.IsResolved() {
		attrs = append(attrs, slog.Int("elements", s.numElements))
	} else {
		attrs = append(attrs, slog.String("elements", "unresolved"))
	}
	if !s.checkValid() {
		attrs = append(attrs, slog.String("value", s.value.String()))
	}
	return slog.GroupValue(attrs...)
}
