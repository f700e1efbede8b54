package runloop

import (
	"context"
	"sync"
	"testing"
	"time"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})
	return l, cancel
}

func TestLoopRunsInPostingOrder(t *testing.T) {
	l, _ := startLoop(t)

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		if !l.Post(func() { got = append(got, i) }) {
			t.Fatalf("post %d rejected", i)
		}
	}
	if !l.Call(func() {}) {
		t.Fatalf("call rejected")
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("position %d ran %d", i, v)
		}
	}
	if len(got) != 100 {
		t.Fatalf("expected 100 functions to run, got %d", len(got))
	}
}

func TestLoopSerializesConcurrentPosters(t *testing.T) {
	l, _ := startLoop(t)

	// counter is only touched on the loop; the race detector flags any overlap.
	counter := 0
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				l.Post(func() { counter++ })
			}
		}()
	}
	wg.Wait()

	var final int
	l.Call(func() { final = counter })
	if final != 400 {
		t.Fatalf("expected 400 increments, got %d", final)
	}
}

func TestPostFromLoopDoesNotBlock(t *testing.T) {
	l, _ := startLoop(t)

	done := make(chan struct{})
	l.Post(func() {
		l.Post(func() { close(done) })
	})
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("nested post never ran")
	}
}

func TestStopRejectsPosts(t *testing.T) {
	l, _ := startLoop(t)

	l.Stop()
	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not return after stop")
	}
	if l.Post(func() {}) {
		t.Fatalf("expected post after stop to be rejected")
	}
	if l.Call(func() {}) {
		t.Fatalf("expected call after stop to be rejected")
	}
	l.Stop()
}

func TestCancelEndsRun(t *testing.T) {
	l, cancel := startLoop(t)
	cancel()
	select {
	case <-l.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not return after cancel")
	}
}

func TestInlineRunsImmediately(t *testing.T) {
	ran := false
	if !(Inline{}).Post(func() { ran = true }) || !ran {
		t.Fatalf("inline executor must run synchronously")
	}
}
