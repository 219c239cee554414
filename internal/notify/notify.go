// Package notify carries the single "items changed, reload" signal every
// mutation emits. The signal is parameterless on purpose: observers always
// reload the full collection from the repository.
package notify

import (
	"context"
	"sync"
)

//go:generate mockgen -source=notify.go -destination=mock/notify.go -package=mock_notify

type Notifier interface {
	Changed(ctx context.Context) error
}

// Broadcaster is the in-process notifier. Subscribers get a coalescing
// one-slot channel: a burst of mutations collapses into one pending signal.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan struct{}
	nextID int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[int]chan struct{}),
	}
}

func (b *Broadcaster) Changed(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// Subscribe registers an observer. The returned cancel func must be called
// when the observer goes away.
func (b *Broadcaster) Subscribe() (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan struct{}, 1)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
	return ch, cancel
}
