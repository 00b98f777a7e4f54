package window

import "testing"

func TestQueueEnqueueDequeueOrder(t *testing.T) {
	q := NewQueue(3)
	if !q.IsEmpty() {
		t.Fatalf("expected new queue empty")
	}
	if err := q.Enqueue(NewMouseEvent(DestToAll, MouseEvent{Action: MouseMove, X: 1, Y: 2})); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := q.Enqueue(NewKeyEvent(DestTo(5), KeyEvent{Action: KeyPressed, Usage: 0x04})); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if q.Len() != 2 {
		t.Fatalf("expected len 2, got %d", q.Len())
	}

	first, err := q.Dequeue()
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if first.Kind != KindMouse || first.Mouse.X != 1 {
		t.Fatalf("expected first event to be the mouse move, got %+v", first)
	}

	second, err := q.Dequeue()
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if second.Kind != KindKeyboard || second.Key.Usage != 0x04 {
		t.Fatalf("expected second event to be the key press, got %+v", second)
	}
	if !q.IsEmpty() {
		t.Fatalf("expected queue empty after draining")
	}
}

func TestQueueFullAndEmptyErrors(t *testing.T) {
	q := NewQueue(2)
	if err := q.Enqueue(NewWindowEvent(DestToNone, WindowSelect)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := q.Enqueue(NewWindowEvent(DestToNone, WindowClose)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if err := q.Enqueue(NewWindowEvent(DestToNone, WindowMove)); err != ErrQueueFull {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}

	if _, err := q.Dequeue(); err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if _, err := q.Dequeue(); err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if _, err := q.Dequeue(); err != ErrQueueEmpty {
		t.Fatalf("expected ErrQueueEmpty, got %v", err)
	}
}

func TestQueueWrapsAroundBuffer(t *testing.T) {
	q := NewQueue(2)
	for i := 0; i < 5; i++ {
		if err := q.Enqueue(NewUpdateEvent(DestToAll, UpdateEvent{ID: i})); err != nil {
			t.Fatalf("Enqueue %d: %v", i, err)
		}
		got, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue %d: %v", i, err)
		}
		if got.Update.ID != i {
			t.Fatalf("expected ID %d, got %d", i, got.Update.ID)
		}
	}
}
