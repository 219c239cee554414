package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/Karlitosantana/reima-resale/internal/notify"
)

func TestBroadcaster_SubscriberReceivesSignal(t *testing.T) {
	b := notify.NewBroadcaster()

	ch, cancel := b.Subscribe()
	defer cancel()

	if err := b.Changed(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a change signal")
	}
}

// Signals coalesce: a slow subscriber sees at most one pending signal no
// matter how many changes happened while it was away.
func TestBroadcaster_SignalsCoalesce(t *testing.T) {
	b := notify.NewBroadcaster()

	ch, cancel := b.Subscribe()
	defer cancel()

	for range 5 {
		if err := b.Changed(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected at least one signal")
	}

	select {
	case <-ch:
		t.Fatal("expected coalesced signals, got a second one")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcaster_CancelStopsDelivery(t *testing.T) {
	b := notify.NewBroadcaster()

	ch, cancel := b.Subscribe()
	cancel()

	if err := b.Changed(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("cancelled subscriber must not receive signals")
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcaster_IndependentSubscribers(t *testing.T) {
	b := notify.NewBroadcaster()

	first, cancelFirst := b.Subscribe()
	defer cancelFirst()
	second, cancelSecond := b.Subscribe()
	defer cancelSecond()

	if err := b.Changed(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, ch := range []<-chan struct{}{first, second} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d did not receive the signal", i)
		}
	}
}
