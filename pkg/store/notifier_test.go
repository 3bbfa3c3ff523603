package store

import "testing"

func TestNotifierRunsListenersInOrder(t *testing.T) {
	var n notifier
	var calls []int
	n.Subscribe(func() { calls = append(calls, 1) })
	n.Subscribe(func() { calls = append(calls, 2) })
	n.notify()
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Fatalf("calls = %v, want [1 2]", calls)
	}
}

func TestNotifierUnsubscribeIsIdempotent(t *testing.T) {
	var n notifier
	first, firstCount := countingListener()
	second, secondCount := countingListener()
	unsubscribe := n.Subscribe(first)
	n.Subscribe(second)

	unsubscribe()
	unsubscribe()
	n.notify()

	if *firstCount != 0 {
		t.Fatalf("unsubscribed listener fired %d times", *firstCount)
	}
	if *secondCount != 1 {
		t.Fatalf("remaining listener fired %d times, want 1", *secondCount)
	}
}

func TestNotifierListenerMayUnsubscribeDuringNotify(t *testing.T) {
	var n notifier
	var unsubscribe func()
	fired := 0
	unsubscribe = n.Subscribe(func() {
		fired++
		unsubscribe()
	})
	n.notify()
	n.notify()
	if fired != 1 {
		t.Fatalf("listener fired %d times, want 1", fired)
	}
}

func TestNotifierNilListener(t *testing.T) {
	var n notifier
	unsubscribe := n.Subscribe(nil)
	unsubscribe()
	n.notify()
}
