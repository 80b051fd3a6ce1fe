package link

import (
	"testing"
	"time"

	"github.com/danmuck/satlink/internal/testutil/testlog"
)

func TestQueueFIFOOrder(t *testing.T) {
	testlog.Start(t)
	q := NewQueue[int]()
	q.Push(42)
	q.Push(100)

	if v, ok := q.TryPop(); !ok || v != 42 {
		t.Fatalf("first pop: got=%d ok=%v", v, ok)
	}
	if v, ok := q.TryPop(); !ok || v != 100 {
		t.Fatalf("second pop: got=%d ok=%v", v, ok)
	}
	if _, ok := q.TryPop(); ok {
		t.Fatalf("pop from empty queue must fail")
	}
	if !q.Empty() {
		t.Fatalf("queue must be empty")
	}
}

func TestQueuePopTimeoutElapses(t *testing.T) {
	testlog.Start(t)
	q := NewQueue[int]()
	start := time.Now()
	if _, ok := q.PopTimeout(30 * time.Millisecond); ok {
		t.Fatalf("pop on empty queue must time out")
	}
	if waited := time.Since(start); waited < 25*time.Millisecond {
		t.Fatalf("returned before timeout: %v", waited)
	}
}

func TestQueuePopTimeoutWakesOnPush(t *testing.T) {
	testlog.Start(t)
	q := NewQueue[string]()
	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Push("frame")
	}()
	v, ok := q.PopTimeout(2 * time.Second)
	if !ok || v != "frame" {
		t.Fatalf("expected pushed item, got=%q ok=%v", v, ok)
	}
}

func TestQueueZeroTimeoutIsNonBlocking(t *testing.T) {
	testlog.Start(t)
	q := NewQueue[int]()
	q.Push(7)
	if v, ok := q.PopTimeout(0); !ok || v != 7 {
		t.Fatalf("zero timeout with item: got=%d ok=%v", v, ok)
	}
	if _, ok := q.PopTimeout(0); ok {
		t.Fatalf("zero timeout on empty queue must fail")
	}
}

func TestQueueProducerConsumer(t *testing.T) {
	testlog.Start(t)
	const numItems = 1000
	q := NewQueue[int]()
	sum := make(chan int, 1)

	go func() {
		total := 0
		for i := 0; i < numItems; i++ {
			total += q.Pop()
		}
		sum <- total
	}()
	go func() {
		for i := 0; i < numItems; i++ {
			q.Push(i)
		}
	}()

	select {
	case total := <-sum:
		want := numItems * (numItems - 1) / 2
		if total != want {
			t.Fatalf("sum mismatch: got=%d want=%d", total, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("consumer did not finish")
	}
}

func TestQueuePreservesPushOrderUnderConcurrency(t *testing.T) {
	testlog.Start(t)
	const numItems = 1000
	q := NewQueue[int]()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < numItems; i++ {
			if v := q.Pop(); v != i {
				t.Errorf("out of order: got=%d want=%d", v, i)
				return
			}
		}
	}()
	for i := 0; i < numItems; i++ {
		q.Push(i)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("consumer did not finish")
	}
}
