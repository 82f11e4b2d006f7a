package vtbuf

import "strings"

// BufferSpec names one buffer and the layout of its elements.
type BufferSpec struct {
	Name      string
	TupleType TupleType
}

// BufferSpecs is an ordered list of buffer specs.
type BufferSpecs []BufferSpec

// Add appends a spec.
func (s *BufferSpecs) Add(name string, tt TupleType) {
	*s = append(*s, BufferSpec{Name: name, TupleType: tt})
}

// Find returns the first spec with the given name.
func (s BufferSpecs) Find(name string) (BufferSpec, bool) {
	for _, spec := range s {
		if spec.Name == name {
			return spec, true
		}
	}
	return BufferSpec{}, false
}

// IsSubset reports whether every spec in s appears in super with the same
// tuple type.
func (s BufferSpecs) IsSubset(super BufferSpecs) bool {
	for _, spec := range s {
		found, ok := super.Find(spec.Name)
		if !ok || found.TupleType != spec.TupleType {
			return false
		}
	}
	return true
}

// Union returns s followed by the specs of other whose names are not in s.
// The first spec seen for a name wins.
func (s BufferSpecs) Union(other BufferSpecs) BufferSpecs {
	out := make(BufferSpecs, 0, len(s)+len(other))
	seen := make(map[string]struct{}, len(s)+len(other))
	for _, specs := range [2]BufferSpecs{s, other} {
		for _, spec := range specs {
			if _, dup := seen[spec.Name]; dup {
				continue
			}
			seen[spec.Name] = struct{}{}
			out = append(out, spec)
		}
	}
	return out
}

// String renders the specs one per line as "name (Type, Count)".
func (s BufferSpecs) String() string {
	var b strings.Builder
	for i, spec := range s {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(spec.Name)
		b.WriteByte(' ')
		b.WriteString(spec.TupleType.String())
	}
	return b.String()
}
