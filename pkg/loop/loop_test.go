package loop

import (
	"context"
	"errors"
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

func TestLoopRunsTasksInOrder(t *testing.T) {
	l, _ := startLoop(t)

	var got []int
	for i := 0; i < 5; i++ {
		i := i
		l.Defer(func() { got = append(got, i) })
	}

	if err := l.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("order = %v", got)
		}
	}
	if len(got) != 5 {
		t.Fatalf("ran %d tasks, want 5", len(got))
	}
}

func TestLoopTaskCanDefer(t *testing.T) {
	l, _ := startLoop(t)

	var order []string
	done := make(chan struct{})
	l.Defer(func() {
		order = append(order, "a")
		l.Defer(func() {
			order = append(order, "c")
			close(done)
		})
	})
	l.Defer(func() { order = append(order, "b") })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out")
	}
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Errorf("order = %v, want [a b c]", order)
	}
}

func TestLoopRecoversPanic(t *testing.T) {
	l, _ := startLoop(t)

	var mu sync.Mutex
	var recovered any
	l.OnPanic = func(v any) {
		mu.Lock()
		recovered = v
		mu.Unlock()
	}

	l.Defer(func() { panic("boom") })
	if err := l.Do(context.Background(), func() error { return nil }); err != nil {
		t.Fatalf("loop did not survive panic: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if recovered != "boom" {
		t.Errorf("recovered = %v, want boom", recovered)
	}
}

func TestLoopDoReturnsError(t *testing.T) {
	l, _ := startLoop(t)
	want := errors.New("nope")
	if err := l.Do(context.Background(), func() error { return want }); err != want {
		t.Errorf("Do() = %v, want %v", err, want)
	}
}

func TestLoopDoAfterStop(t *testing.T) {
	l, cancel := startLoop(t)
	cancel()
	<-l.Done()

	if err := l.Do(context.Background(), func() error { return nil }); !errors.Is(err, ErrStopped) {
		t.Errorf("Do() after stop = %v, want ErrStopped", err)
	}
}

func TestLoopRunTwice(t *testing.T) {
	l, _ := startLoop(t)
	// Wait until the first Run has marked itself running.
	_ = l.Do(context.Background(), func() error { return nil })
	if err := l.Run(context.Background()); err == nil {
		t.Error("second Run should fail")
	}
}

func TestManual(t *testing.T) {
	m := NewManual()
	var got []int
	m.Defer(func() { got = append(got, 1) })
	m.Defer(func() {
		got = append(got, 2)
		m.Defer(func() { got = append(got, 3) })
	})

	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	if !m.Step() || len(got) != 1 {
		t.Fatalf("Step did not run first task: %v", got)
	}
	if n := m.RunUntilIdle(0); n != 2 {
		t.Errorf("RunUntilIdle() = %d, want 2", n)
	}
	if m.Step() {
		t.Error("Step on empty queue should report false")
	}
	if len(got) != 3 {
		t.Errorf("got = %v", got)
	}
}

func TestManualRunUntilIdleLimit(t *testing.T) {
	m := NewManual()
	var tick func()
	tick = func() { m.Defer(tick) }
	m.Defer(tick)

	if n := m.RunUntilIdle(10); n != 10 {
		t.Errorf("RunUntilIdle(10) = %d", n)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}
