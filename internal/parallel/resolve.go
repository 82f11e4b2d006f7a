package parallel

import (
	"context"
	"runtime"
	"sync/atomic"

	"github.com/gogpu/vtbuf"
	"github.com/gogpu/vtbuf/internal/ctxlog"
)

// stateReporter is implemented by sources that embed vtbuf.ResolveState.
type stateReporter interface {
	State() vtbuf.State
}

// Result summarises one ResolveAll call.
type Result struct {
	Resolved int
	Failed   []string
}

// ResolveAll resolves every valid source on the pool and waits for them.
// Invalid sources are skipped.
//
// A Resolve that loses the race to another caller returns false while the
// winner is still working; such sources are retried until the winner
// finishes. Sources that end up unresolved are listed in Failed. If ctx is
// canceled, tasks not yet started are skipped and ctx.Err() is returned.
func (p *Pool) ResolveAll(ctx context.Context, sources []vtbuf.BufferSource) (Result, error) {
	logger := ctxlog.FromContext(ctx)

	var resolved atomic.Int64
	failed := make([]bool, len(sources))

	tasks := make([]func(), 0, len(sources))
	for i, src := range sources {
		if !src.IsValid() {
			continue
		}
		tasks = append(tasks, func() {
			if ctx.Err() != nil {
				failed[i] = true
				return
			}
			if resolveOrWait(ctx, src) {
				resolved.Add(1)
				return
			}
			failed[i] = true
			logger.Warn("vtbuf: source did not resolve", "source", src.Name())
		})
	}
	p.Run(tasks)

	res := Result{Resolved: int(resolved.Load())}
	for i, f := range failed {
		if f {
			res.Failed = append(res.Failed, sources[i].Name())
		}
	}
	logger.Debug("vtbuf: resolved sources", "resolved", res.Resolved, "failed", len(res.Failed), "skipped", len(sources)-len(tasks))
	return res, ctx.Err()
}

func resolveOrWait(ctx context.Context, src vtbuf.BufferSource) bool {
	if src.Resolve() {
		return true
	}
	sr, ok := src.(stateReporter)
	if !ok {
		return src.IsResolved()
	}
	for sr.State() == vtbuf.StateResolving {
		if ctx.Err() != nil {
			return false
		}
		runtime.Gosched()
	}
	return src.IsResolved()
}
