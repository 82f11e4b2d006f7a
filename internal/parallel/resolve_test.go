package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/vtbuf"
	"github.com/google/go-cmp/cmp"
)

// gatedSource holds its resolution until gate is closed.
type gatedSource struct {
	vtbuf.ResolveState

	name  string
	gate  chan struct{}
	fail  bool
	calls atomic.Int32
}

func newGated(name string) *gatedSource {
	return &gatedSource{name: name, gate: make(chan struct{})}
}

func (s *gatedSource) Name() string                      { return s.name }
func (s *gatedSource) Data() []byte                      { return []byte{1, 2, 3, 4} }
func (s *gatedSource) TupleType() vtbuf.TupleType        { return vtbuf.TupleType{Type: vtbuf.TypeFloat, Count: 1} }
func (s *gatedSource) NumElements() int                  { return 1 }
func (s *gatedSource) AddBufferSpecs(*vtbuf.BufferSpecs) {}
func (s *gatedSource) IsValid() bool                     { return true }

func (s *gatedSource) Resolve() bool {
	s.calls.Add(1)
	if !s.TryAcquire() {
		return s.IsResolved()
	}
	<-s.gate
	if s.fail {
		s.MarkFailed()
		return false
	}
	s.MarkResolved()
	return true
}

func sources(t *testing.T, n int) []vtbuf.BufferSource {
	t.Helper()
	out := make([]vtbuf.BufferSource, n)
	for i := range out {
		v := make([]float32, i+1)
		src, err := vtbuf.NewValueSource("s"+string(rune('a'+i)), vtbuf.ArrayOf(v), 1)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = src
	}
	return out
}

// =============================================================================
// ResolveAll Tests
// =============================================================================

func TestResolveAll(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	srcs := sources(t, 20)
	res, err := pool.ResolveAll(context.Background(), srcs)
	if err != nil {
		t.Fatalf("ResolveAll() error = %v", err)
	}
	if res.Resolved != 20 || len(res.Failed) != 0 {
		t.Errorf("ResolveAll() = %+v, want 20 resolved", res)
	}
	for i, src := range srcs {
		if !src.IsResolved() {
			t.Errorf("source %d not resolved", i)
		}
		if src.NumElements() != i+1 {
			t.Errorf("source %d NumElements() = %d, want %d", i, src.NumElements(), i+1)
		}
	}
}

func TestResolveAllSkipsInvalid(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	bad, err := vtbuf.NewValueSource("labels", vtbuf.ValueOf([]string{"a"}), 1)
	if err != nil {
		t.Fatal(err)
	}
	srcs := append(sources(t, 2), bad)

	res, err := pool.ResolveAll(context.Background(), srcs)
	if err != nil {
		t.Fatal(err)
	}
	if res.Resolved != 2 || len(res.Failed) != 0 {
		t.Errorf("ResolveAll() = %+v, want 2 resolved and none failed", res)
	}
	if bad.IsResolved() {
		t.Error("invalid source was resolved")
	}
}

func TestResolveAllWaitsForOtherResolver(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	src := newGated("slow")
	held := make(chan bool)
	go func() { held <- src.Resolve() }()

	for src.State() != vtbuf.StateResolving {
		time.Sleep(time.Millisecond)
	}

	done := make(chan Result)
	go func() {
		res, _ := pool.ResolveAll(context.Background(), []vtbuf.BufferSource{src})
		done <- res
	}()

	select {
	case <-done:
		t.Fatal("ResolveAll returned while another caller held the source")
	case <-time.After(20 * time.Millisecond):
	}

	close(src.gate)
	if !<-held {
		t.Error("holder Resolve() = false")
	}
	res := <-done
	if res.Resolved != 1 {
		t.Errorf("ResolveAll() = %+v, want 1 resolved", res)
	}
	if src.calls.Load() < 2 {
		t.Errorf("Resolve called %d times, want at least 2", src.calls.Load())
	}
}

func TestResolveAllReportsFailures(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	ok := newGated("ok")
	bad := newGated("bad")
	bad.fail = true
	close(ok.gate)
	close(bad.gate)

	res, err := pool.ResolveAll(context.Background(), []vtbuf.BufferSource{ok, bad})
	if err != nil {
		t.Fatal(err)
	}
	want := Result{Resolved: 1, Failed: []string{"bad"}}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("ResolveAll() mismatch (-want +got):\n%s", diff)
	}
	if !bad.HasResolveError() {
		t.Error("bad source should be in ResolveFailed")
	}
}

func TestResolveAllCanceled(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srcs := sources(t, 3)
	res, err := pool.ResolveAll(ctx, srcs)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ResolveAll() error = %v, want context.Canceled", err)
	}
	if res.Resolved != 0 || len(res.Failed) != 3 {
		t.Errorf("ResolveAll() = %+v, want nothing resolved", res)
	}
}
