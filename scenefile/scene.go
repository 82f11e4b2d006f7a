// Package scenefile loads buffer sources from HCL scene description files.
//
// A scene file declares named primvars and transforms:
//
//	primvar "points" {
//	  type       = "float3"
//	  array_size = 1
//	  value      = [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
//	}
//
//	transform "instanceXforms" {
//	  matrices = [
//	    [1, 0, 0, 0,  0, 1, 0, 0,  0, 0, 1, 0,  0, 0, 0, 1],
//	  ]
//	}
//
//	transform "root" {
//	  scale     = [2, 2, 2]
//	  translate = [0, 1, 0]
//	}
//
// Primvar types are ctyvalue hints. A primvar whose type is not a known hint
// still loads, as an invalid source, so the caller can report it alongside
// the valid ones. Transforms are converted to the default matrix type.
package scenefile

import "github.com/gogpu/vtbuf"

// Scene is the set of buffer sources declared by one or more files. Within
// a file, primvars come before transforms, each in declaration order.
type Scene struct {
	sources []vtbuf.BufferSource
	byName  map[string]vtbuf.BufferSource
}

func newScene() *Scene {
	return &Scene{byName: make(map[string]vtbuf.BufferSource)}
}

// Sources returns all sources, valid or not.
func (s *Scene) Sources() []vtbuf.BufferSource {
	return s.sources
}

// Source returns the source with the given (NFC-normalised) name.
func (s *Scene) Source(name string) (vtbuf.BufferSource, bool) {
	src, ok := s.byName[normalizeName(name)]
	return src, ok
}

// Valid returns the sources that can be placed in a buffer layout.
func (s *Scene) Valid() []vtbuf.BufferSource {
	return s.filter(true)
}

// Invalid returns the sources whose values could not be mapped to a tuple
// type.
func (s *Scene) Invalid() []vtbuf.BufferSource {
	return s.filter(false)
}

func (s *Scene) filter(valid bool) []vtbuf.BufferSource {
	var out []vtbuf.BufferSource
	for _, src := range s.sources {
		if src.IsValid() == valid {
			out = append(out, src)
		}
	}
	return out
}

// Specs returns the buffer specs of all valid sources.
func (s *Scene) Specs() vtbuf.BufferSpecs {
	var specs vtbuf.BufferSpecs
	for _, src := range s.Valid() {
		src.AddBufferSpecs(&specs)
	}
	return specs
}

func (s *Scene) add(src vtbuf.BufferSource) {
	s.sources = append(s.sources, src)
	s.byName[src.Name()] = src
}
