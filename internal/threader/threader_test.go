package threader

import (
	"sync/atomic"
	"testing"
)

func TestPoolRunsAllJobs(t *testing.T) {
	p := New(4)
	defer p.Shutdown()

	var count int64
	const jobs = 500
	for i := 0; i < jobs; i++ {
		p.Submit(func() {
			atomic.AddInt64(&count, 1)
		})
	}
	p.Wait()

	if got := atomic.LoadInt64(&count); got != jobs {
		t.Fatalf("ran %d jobs, want %d", got, jobs)
	}
}

func TestPoolClampsToAtLeastOne(t *testing.T) {
	p := New(0)
	defer p.Shutdown()

	done := make(chan struct{})
	p.Submit(func() { close(done) })
	p.Wait()

	select {
	case <-done:
	default:
		t.Fatal("job did not run")
	}
}

func TestPoolReusableAcrossWaits(t *testing.T) {
	p := New(2)
	defer p.Shutdown()

	var count int64
	for round := 0; round < 3; round++ {
		for i := 0; i < 10; i++ {
			p.Submit(func() { atomic.AddInt64(&count, 1) })
		}
		p.Wait()
	}
	if got := atomic.LoadInt64(&count); got != 30 {
		t.Fatalf("ran %d jobs, want 30", got)
	}
}
