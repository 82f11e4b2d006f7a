package parallel

import (
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// Pool Creation Tests
// =============================================================================

func TestPool_Create(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("pool should be running after creation")
	}
	if pool.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", pool.Pending())
	}
}

func TestPool_DefaultWorkers(t *testing.T) {
	for _, n := range []int{0, -5} {
		pool := NewPool(n)
		if pool.Workers() != runtime.GOMAXPROCS(0) {
			t.Errorf("NewPool(%d).Workers() = %d, want GOMAXPROCS", n, pool.Workers())
		}
		pool.Close()
	}
}

// =============================================================================
// Run Tests
// =============================================================================

func TestPool_Run(t *testing.T) {
	tests := []struct {
		name    string
		workers int
		tasks   int
	}{
		{"empty", 4, 0},
		{"single", 4, 1},
		{"one worker", 1, 50},
		{"more workers than tasks", 32, 10},
		{"many small tasks", 4, 10000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewPool(tt.workers)
			defer pool.Close()

			var counter atomic.Int64
			tasks := make([]func(), tt.tasks)
			for i := range tasks {
				tasks[i] = func() { counter.Add(1) }
			}
			pool.Run(tasks)

			if counter.Load() != int64(tt.tasks) {
				t.Errorf("counter = %d, want %d", counter.Load(), tt.tasks)
			}
		})
	}
}

func TestPool_RunEveryIndexOnce(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	hits := make([]atomic.Int32, 200)
	tasks := make([]func(), len(hits))
	for i := range tasks {
		tasks[i] = func() { hits[i].Add(1) }
	}
	pool.Run(tasks)

	for i := range hits {
		if n := hits[i].Load(); n != 1 {
			t.Fatalf("task %d ran %d times", i, n)
		}
	}
}

func TestPool_RunUneven(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	var slow, fast atomic.Int64
	tasks := make([]func(), 100)
	for i := range tasks {
		if i%10 == 0 {
			tasks[i] = func() {
				time.Sleep(5 * time.Millisecond)
				slow.Add(1)
			}
		} else {
			tasks[i] = func() { fast.Add(1) }
		}
	}
	pool.Run(tasks)

	if slow.Load() != 10 || fast.Load() != 90 {
		t.Errorf("slow = %d, fast = %d, want 10 and 90", slow.Load(), fast.Load())
	}
}

func TestPool_RunConcurrentCallers(t *testing.T) {
	pool := NewPool(4)
	defer pool.Close()

	var counter atomic.Int64
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tasks := make([]func(), 50)
			for i := range tasks {
				tasks[i] = func() { counter.Add(1) }
			}
			pool.Run(tasks)
		}()
	}
	wg.Wait()

	if counter.Load() != 500 {
		t.Errorf("counter = %d, want 500", counter.Load())
	}
}

// =============================================================================
// Submit Tests
// =============================================================================

func TestPool_Submit(t *testing.T) {
	pool := NewPool(2)
	defer pool.Close()

	done := make(chan struct{})
	pool.Submit(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("submitted task did not run")
	}

	pool.Submit(nil)
}

// =============================================================================
// Close Tests
// =============================================================================

func TestPool_Close(t *testing.T) {
	pool := NewPool(4)
	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Error("pool should not be running after Close")
	}

	var executed atomic.Bool
	pool.Run([]func(){func() { executed.Store(true) }})
	pool.Submit(func() { executed.Store(true) })
	time.Sleep(20 * time.Millisecond)

	if executed.Load() {
		t.Error("closed pool executed work")
	}
}

func TestPool_CloseDrainsQueued(t *testing.T) {
	pool := NewPool(2)

	var counter atomic.Int64
	for range 16 {
		pool.Submit(func() { counter.Add(1) })
	}
	pool.Close()

	if counter.Load() != 16 {
		t.Errorf("counter = %d after Close, want 16", counter.Load())
	}
}

func TestPool_RunOverlappingClose(t *testing.T) {
	for range 50 {
		pool := NewPool(2)

		const callers, perCaller = 8, 64
		var ran atomic.Int64
		var wg sync.WaitGroup
		for range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				tasks := make([]func(), perCaller)
				for i := range tasks {
					tasks[i] = func() { ran.Add(1) }
				}
				pool.Run(tasks)
			}()
		}
		pool.Close()

		finished := make(chan struct{})
		go func() {
			wg.Wait()
			close(finished)
		}()
		select {
		case <-finished:
		case <-time.After(5 * time.Second):
			t.Fatal("Run did not return after Close")
		}
		if n := ran.Load(); n%perCaller != 0 {
			t.Fatalf("%d tasks ran, want whole batches of %d", n, perCaller)
		}
	}
}

func TestPool_NoGoroutineLeak(t *testing.T) {
	runtime.GC()
	time.Sleep(20 * time.Millisecond)
	baseline := runtime.NumGoroutine()

	for range 5 {
		pool := NewPool(4)
		tasks := make([]func(), 100)
		for i := range tasks {
			tasks[i] = func() {}
		}
		pool.Run(tasks)
		pool.Close()
	}

	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	if final := runtime.NumGoroutine(); final > baseline+2 {
		t.Errorf("goroutines: baseline=%d, final=%d", baseline, final)
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkPool_Run(b *testing.B) {
	for _, n := range []int{10, 100, 1000} {
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			pool := NewPool(runtime.GOMAXPROCS(0))
			defer pool.Close()

			tasks := make([]func(), n)
			for i := range tasks {
				tasks[i] = func() {}
			}

			b.ReportAllocs()
			for b.Loop() {
				pool.Run(tasks)
			}
		})
	}
}
