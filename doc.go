// Package vtbuf stages scene data for GPU buffers.
//
// # Overview
//
// A scene-description layer produces loosely typed values: point positions,
// normals, transform matrices, topology indices. A renderer needs them as
// fixed-stride binary buffers. vtbuf sits between the two: it wraps a value
// in a [BufferSource] that knows the binary layout of one element (its
// [TupleType]) from the value's runtime shape, and hands out the bytes
// without copying them.
//
// # Quick Start
//
//	points := []f32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
//	src, err := vtbuf.NewValueSource("points", vtbuf.ArrayOf(points), 1)
//	if err != nil {
//	    return err
//	}
//
//	var specs vtbuf.BufferSpecs
//	src.AddBufferSpecs(&specs) // [{points (Float, 3)}], no resolution needed
//
//	if src.Resolve() {
//	    upload(src.Data(), src.NumElements())
//	}
//
// # Values
//
// [Value] is a tagged variant over a closed set of element shapes (see
// [Element]): 8/16/32-bit integers, half, single and double precision
// floats, their 2/3/4-vectors and 3x3/4x4 float and double matrices, either
// as one element or as an array. Build values with [ScalarOf] and [ArrayOf],
// or [ValueOf] for values from a dynamically typed producer. A runtime type
// outside the closed set yields an invalid value; sources built from it
// report IsValid false instead of failing.
//
// # Resolution
//
// Sources are resolved at most once. Any number of goroutines may call
// Resolve on the same source: one of them does the work, callers that race
// with it get false immediately and retry later, and every call after
// completion returns true. The state machine is a single atomic word
// ([ResolveState]); no locks are taken and Resolve never blocks.
//
// # Matrices
//
// [NewMatrixSource] and [NewMatrixArraySource] convert double precision
// matrices to the process-wide default matrix type ([DefaultMatrixType]),
// single precision unless double precision matrices are enabled with the
// vtbuf_doublematrix build tag, the VTBUF_ENABLE_DOUBLEMATRIX environment
// variable or [SetDoublePrecisionMatrices].
//
// # Vertex layouts
//
// [BufferSpecs.VertexBufferLayout] turns specs into a
// gputypes.VertexBufferLayout for renderers built on gogpu.
//
// # Logging
//
// vtbuf logs nothing by default. Use [SetLogger] to enable diagnostics.
package vtbuf
