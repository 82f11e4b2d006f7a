package vtbuf

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

// ErrNoVertexFormat is returned when a tuple type cannot be expressed as
// vertex attributes.
var ErrNoVertexFormat = errors.New("vtbuf: no vertex format for tuple type")

// maxAttributeComponents is the widest vertex attribute (a vec4).
const maxAttributeComponents = 4

// vertexFormats maps a scalar type and component count to a vertex format.
// Missing entries have no vertex format.
var vertexFormats = map[ComponentType][maxAttributeComponents + 1]gputypes.VertexFormat{
	TypeInt8: {
		2: gputypes.VertexFormatSint8x2,
		4: gputypes.VertexFormatSint8x4,
	},
	TypeUint8: {
		2: gputypes.VertexFormatUint8x2,
		4: gputypes.VertexFormatUint8x4,
	},
	TypeInt16: {
		2: gputypes.VertexFormatSint16x2,
		4: gputypes.VertexFormatSint16x4,
	},
	TypeUint16: {
		2: gputypes.VertexFormatUint16x2,
		4: gputypes.VertexFormatUint16x4,
	},
	TypeInt32: {
		1: gputypes.VertexFormatSint32,
		2: gputypes.VertexFormatSint32x2,
		3: gputypes.VertexFormatSint32x3,
		4: gputypes.VertexFormatSint32x4,
	},
	TypeUint32: {
		1: gputypes.VertexFormatUint32,
		2: gputypes.VertexFormatUint32x2,
		3: gputypes.VertexFormatUint32x3,
		4: gputypes.VertexFormatUint32x4,
	},
	TypeHalf: {
		2: gputypes.VertexFormatFloat16x2,
		4: gputypes.VertexFormatFloat16x4,
	},
	TypeFloat: {
		1: gputypes.VertexFormatFloat32,
		2: gputypes.VertexFormatFloat32x2,
		3: gputypes.VertexFormatFloat32x3,
		4: gputypes.VertexFormatFloat32x4,
	},
}

func vertexFormat(scalar ComponentType, count int) (gputypes.VertexFormat, error) {
	if count < 1 || count > maxAttributeComponents {
		return gputypes.VertexFormatUndefined, fmt.Errorf("%w: %s x %d", ErrNoVertexFormat, scalar, count)
	}
	f := vertexFormats[scalar][count]
	if f == gputypes.VertexFormatUndefined {
		return f, fmt.Errorf("%w: %s x %d", ErrNoVertexFormat, scalar, count)
	}
	return f, nil
}

// VertexFormat returns the vertex format of a tuple that fits in a single
// shader location (at most four components).
func (t TupleType) VertexFormat() (gputypes.VertexFormat, error) {
	return vertexFormat(t.Type.Scalar(), t.Count)
}

// Locations returns the number of shader locations the tuple occupies when
// split into vec4 columns: 1 for a vec3, 4 for a 4x4 matrix.
func (t TupleType) Locations() int {
	if t.Count <= 0 {
		return 0
	}
	return (t.Count + maxAttributeComponents - 1) / maxAttributeComponents
}

// VertexAttributes splits the tuple into consecutive vertex attributes,
// starting at the given byte offset and shader location. Tuples wider than
// four components (matrices, arrays) use one attribute per four components.
func (t TupleType) VertexAttributes(offset uint64, location uint32) ([]gputypes.VertexAttribute, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrNoVertexFormat, t)
	}

	scalar := t.Type.Scalar()
	attrs := make([]gputypes.VertexAttribute, 0, t.Locations())
	for remaining := t.Count; remaining > 0; remaining -= maxAttributeComponents {
		n := min(remaining, maxAttributeComponents)
		f, err := vertexFormat(scalar, n)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, gputypes.VertexAttribute{
			Format:         f,
			Offset:         offset,
			ShaderLocation: location,
		})
		offset += f.Size()
		location++
	}
	return attrs, nil
}

// VertexBufferLayout describes the specs as one interleaved vertex buffer:
// attributes in spec order, tightly packed, with shader locations assigned
// consecutively from firstLocation.
func (s BufferSpecs) VertexBufferLayout(step gputypes.VertexStepMode, firstLocation uint32) (gputypes.VertexBufferLayout, error) {
	layout := gputypes.VertexBufferLayout{StepMode: step}
	location := firstLocation
	for _, spec := range s {
		attrs, err := spec.TupleType.VertexAttributes(layout.ArrayStride, location)
		if err != nil {
			return gputypes.VertexBufferLayout{}, fmt.Errorf("buffer %q: %w", spec.Name, err)
		}
		for _, a := range attrs {
			layout.ArrayStride += a.Format.Size()
		}
		layout.Attributes = append(layout.Attributes, attrs...)
		location += uint32(len(attrs))
	}
	return layout, nil
}
