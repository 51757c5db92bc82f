package event

import (
	"sync"
	"testing"
)

func TestBus_Subscribe(t *testing.T) {
	bus := NewBus()

	called := false
	id := bus.Subscribe(TypeLocksRefreshed, func(e Event) {
		called = true
	})

	if id == "" {
		t.Error("Subscribe should return a non-empty ID")
	}

	if bus.SubscriptionCount() != 1 {
		t.Errorf("Expected 1 subscription, got %d", bus.SubscriptionCount())
	}

	if called {
		t.Error("Handler should not be called until an event is published")
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus()

	var receivedEvent Event
	bus.Subscribe(TypeLocksRefreshed, func(e Event) {
		receivedEvent = e
	})

	bus.Publish(NewLocksRefreshedEvent(3, false))

	if receivedEvent == nil {
		t.Fatal("Handler should have received the event")
	}

	if receivedEvent.EventType() != TypeLocksRefreshed {
		t.Errorf("Expected event type %q, got %q", TypeLocksRefreshed, receivedEvent.EventType())
	}

	refreshed, ok := receivedEvent.(LocksRefreshedEvent)
	if !ok {
		t.Fatalf("Expected LocksRefreshedEvent, got %T", receivedEvent)
	}
	if refreshed.Count != 3 {
		t.Errorf("Count = %d, want 3", refreshed.Count)
	}
	if refreshed.Errored {
		t.Error("Errored should be false")
	}
}

func TestBus_PublishStatusChanged(t *testing.T) {
	bus := NewBus()

	var got LockStatusChangedEvent
	bus.Subscribe(TypeLockStatusChanged, func(e Event) {
		got = e.(LockStatusChangedEvent)
	})

	bus.Publish(NewLockStatusChangedEvent("Assets/scene.unity", "42", "unlock", false, "conflict"))

	if got.Path != "Assets/scene.unity" {
		t.Errorf("Path = %q, want %q", got.Path, "Assets/scene.unity")
	}
	if got.LockID != "42" {
		t.Errorf("LockID = %q, want %q", got.LockID, "42")
	}
	if got.Action != "unlock" {
		t.Errorf("Action = %q, want %q", got.Action, "unlock")
	}
	if got.Pending {
		t.Error("Pending should be false")
	}
	if got.Err != "conflict" {
		t.Errorf("Err = %q, want %q", got.Err, "conflict")
	}
}

func TestBus_PublishMultipleHandlers(t *testing.T) {
	bus := NewBus()

	callCount := 0
	bus.Subscribe(TypeBranchChanged, func(e Event) {
		callCount++
	})
	bus.Subscribe(TypeBranchChanged, func(e Event) {
		callCount++
	})

	bus.Publish(NewBranchChangedEvent("main", "feature/x"))

	if callCount != 2 {
		t.Errorf("Expected both handlers to be called, got %d calls", callCount)
	}
}

func TestBus_PublishNoMatchingHandlers(t *testing.T) {
	bus := NewBus()

	bus.Subscribe(TypeLockStatusChanged, func(e Event) {
		t.Error("Handler should not be called for non-matching event type")
	})

	// This should not panic or call the handler
	bus.Publish(NewLocksRefreshedEvent(0, false))
}

func TestBus_SubscribeAll(t *testing.T) {
	bus := NewBus()

	var events []string
	bus.SubscribeAll(func(e Event) {
		events = append(events, e.EventType())
	})

	bus.Publish(NewLocksRefreshedEvent(1, false))
	bus.Publish(NewLockStatusChangedEvent("a.png", "", "lock", true, ""))
	bus.Publish(NewBranchChangedEvent("main", ""))

	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}

	expected := []string{TypeLocksRefreshed, TypeLockStatusChanged, TypeBranchChanged}
	for i, e := range expected {
		if events[i] != e {
			t.Errorf("Expected event %d to be %q, got %q", i, e, events[i])
		}
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()

	called := false
	id := bus.Subscribe(TypeLocksRefreshed, func(e Event) {
		called = true
	})

	removed := bus.Unsubscribe(id)
	if !removed {
		t.Error("Unsubscribe should return true when subscription exists")
	}

	if bus.SubscriptionCount() != 0 {
		t.Errorf("Expected 0 subscriptions after unsubscribe, got %d", bus.SubscriptionCount())
	}

	bus.Publish(NewLocksRefreshedEvent(0, false))

	if called {
		t.Error("Handler should not be called after unsubscribing")
	}
}

func TestBus_UnsubscribeNonExistent(t *testing.T) {
	bus := NewBus()

	removed := bus.Unsubscribe("non-existent-id")
	if removed {
		t.Error("Unsubscribe should return false for non-existent ID")
	}
}

func TestBus_UnsubscribeOne(t *testing.T) {
	bus := NewBus()

	calls := make(map[string]int)
	id1 := bus.Subscribe(TypeLocksRefreshed, func(e Event) {
		calls["handler1"]++
	})
	bus.Subscribe(TypeLocksRefreshed, func(e Event) {
		calls["handler2"]++
	})

	bus.Unsubscribe(id1)

	bus.Publish(NewLocksRefreshedEvent(0, false))

	if calls["handler1"] != 0 {
		t.Error("handler1 should not be called after unsubscribing")
	}
	if calls["handler2"] != 1 {
		t.Error("handler2 should still be called")
	}
}

func TestBus_Clear(t *testing.T) {
	bus := NewBus()

	bus.Subscribe(TypeLocksRefreshed, func(e Event) {})
	bus.Subscribe(TypeBranchChanged, func(e Event) {})
	bus.SubscribeAll(func(e Event) {})

	if bus.SubscriptionCount() != 3 {
		t.Errorf("Expected 3 subscriptions before clear, got %d", bus.SubscriptionCount())
	}

	bus.Clear()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("Expected 0 subscriptions after clear, got %d", bus.SubscriptionCount())
	}
}

func TestBus_HandlerPanicRecovery(t *testing.T) {
	bus := NewBus()

	calls := 0
	bus.Subscribe(TypeLocksRefreshed, func(e Event) {
		calls++
		panic("handler panic")
	})
	bus.Subscribe(TypeLocksRefreshed, func(e Event) {
		calls++
	})

	// Should not panic
	bus.Publish(NewLocksRefreshedEvent(0, false))

	if calls != 2 {
		t.Errorf("Expected both handlers to be called despite panic, got %d calls", calls)
	}
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	calls := 0
	bus.Subscribe(TypeLocksRefreshed, func(e Event) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			bus.Publish(NewLocksRefreshedEvent(0, false))
		})
	}
	wg.Wait()

	if calls != 100 {
		t.Errorf("Expected 100 calls, got %d", calls)
	}
}

func TestBus_ConcurrentSubscribeUnsubscribe(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			id := bus.Subscribe(TypeLocksRefreshed, func(e Event) {})
			bus.Unsubscribe(id)
		})
	}
	wg.Wait()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("Expected 0 subscriptions after concurrent add/remove, got %d", bus.SubscriptionCount())
	}
}

func TestBus_MixedSubscriptions(t *testing.T) {
	bus := NewBus()

	var events []string
	bus.Subscribe(TypeLocksRefreshed, func(e Event) {
		events = append(events, "specific:"+e.EventType())
	})
	bus.SubscribeAll(func(e Event) {
		events = append(events, "wildcard:"+e.EventType())
	})

	bus.Publish(NewLocksRefreshedEvent(0, false))

	if len(events) != 2 {
		t.Fatalf("Expected 2 handler calls, got %d", len(events))
	}

	// Specific handlers run before wildcard handlers
	if events[0] != "specific:"+TypeLocksRefreshed {
		t.Errorf("first call = %q, want specific handler", events[0])
	}
	if events[1] != "wildcard:"+TypeLocksRefreshed {
		t.Errorf("second call = %q, want wildcard handler", events[1])
	}
}

func TestBus_UniqueIDs(t *testing.T) {
	bus := NewBus()

	ids := make(map[string]bool)
	for range 100 {
		id := bus.Subscribe(TypeLocksRefreshed, func(e Event) {})
		if ids[id] {
			t.Errorf("Duplicate subscription ID: %s", id)
		}
		ids[id] = true
	}
}
