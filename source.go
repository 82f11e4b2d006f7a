package vtbuf

import "sync/atomic"

// BufferSource is a named, lazily resolved block of data destined for a
// GPU buffer.
//
// Name, TupleType, IsValid and AddBufferSpecs may be called at any time.
// Data and NumElements may only be called once Resolve has returned true;
// calling them earlier is a caller error.
//
// All methods are safe for concurrent use.
type BufferSource interface {
	// Name returns the identifier used to match the source to a buffer spec.
	Name() string

	// Data returns a read-only view of the resolved bytes.
	Data() []byte

	// TupleType returns the layout of one element.
	TupleType() TupleType

	// NumElements returns the number of elements in Data.
	NumElements() int

	// AddBufferSpecs appends the specs this source provides.
	AddBufferSpecs(specs *BufferSpecs)

	// Resolve performs the one-time preparation of Data. It returns true
	// once the source is resolved, and false while another caller is still
	// resolving it. It never blocks; callers that get false retry later.
	Resolve() bool

	// IsResolved reports whether Resolve has completed.
	IsResolved() bool

	// IsValid reports whether the source describes a usable buffer. It does
	// not require resolution.
	IsValid() bool
}

// State is the resolution state of a buffer source.
type State int32

const (
	// StateUnresolved means no caller has started resolving.
	StateUnresolved State = iota
	// StateResolving means one caller holds the resolution.
	StateResolving
	// StateResolved means Data and NumElements are ready.
	StateResolved
	// StateResolveFailed means the resolving caller gave up with an error.
	StateResolveFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "Unresolved"
	case StateResolving:
		return "Resolving"
	case StateResolved:
		return "Resolved"
	case StateResolveFailed:
		return "ResolveFailed"
	default:
		return "Unknown"
	}
}

// ResolveState is the lock-free resolution state machine shared by buffer
// source implementations. Embed it and call TryAcquire at the start of
// Resolve:
//
//	func (s *MySource) Resolve() bool {
//	    if !s.TryAcquire() {
//	        return s.IsResolved()
//	    }
//	    // ... prepare data ...
//	    s.MarkResolved()
//	    return true
//	}
//
// States only move forward: Unresolved, Resolving, then Resolved or
// ResolveFailed. The zero value is Unresolved and ready to use.
type ResolveState struct {
	state atomic.Int32
}

// TryAcquire moves the state from Unresolved to Resolving. Exactly one of
// any number of concurrent callers gets true; that caller must finish with
// MarkResolved or MarkFailed.
func (r *ResolveState) TryAcquire() bool {
	return r.state.CompareAndSwap(int32(StateUnresolved), int32(StateResolving))
}

// MarkResolved moves the state from Resolving to Resolved. Writes made by
// the resolving caller before MarkResolved are visible to any caller that
// then observes IsResolved. It has no effect in any other state.
func (r *ResolveState) MarkResolved() {
	r.state.CompareAndSwap(int32(StateResolving), int32(StateResolved))
}

// MarkFailed moves the state from Resolving to ResolveFailed. It has no
// effect in any other state.
func (r *ResolveState) MarkFailed() {
	r.state.CompareAndSwap(int32(StateResolving), int32(StateResolveFailed))
}

// State returns the current state.
func (r *ResolveState) State() State {
	return State(r.state.Load())
}

// IsResolved reports whether the state is Resolved.
func (r *ResolveState) IsResolved() bool {
	return r.State() == StateResolved
}

// HasResolveError reports whether resolution failed.
func (r *ResolveState) HasResolveError() bool {
	return r.State() == StateResolveFailed
}
