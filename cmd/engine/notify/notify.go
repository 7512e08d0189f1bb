// Package notify delivers fire-and-forget refresh notifications to
// interested live clients. Publishers and subscribers register explicitly
// with a Broker; there is no implicit "last connected client" handle.
package notify

import (
	"context"
	"sync"
)

const (
	// EventRefresh tells clients a transcript's derived table-row data
	// changed and should be re-fetched.
	EventRefresh = "refresh"
)

type Event struct {
	Type         string `json:"type"`
	TranscriptID string `json:"transcriptID,omitempty"`
	OwnerID      string `json:"ownerID,omitempty"`
}

// Broker fans events out to registered subscribers. Delivery is best effort:
// a notification either reaches a subscriber or it doesn't, nothing in the
// core depends on it.
type Broker interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe registers fn for every subsequent event and returns a stop
	// function that unregisters it.
	Subscribe(ctx context.Context, fn func(Event)) (func(), error)
	Close() error
}

// memoryBroker is the single-node Broker: plain fan-out under a mutex.
type memoryBroker struct {
	mut    sync.Mutex
	nextID int
	subs   map[int]func(Event)
	closed bool
}

// NewMemoryBroker returns an in-process Broker.
func NewMemoryBroker() Broker {
	return &memoryBroker{subs: make(map[int]func(Event))}
}

func (b *memoryBroker) Publish(_ context.Context, ev Event) error {
	b.mut.Lock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mut.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
	return nil
}

func (b *memoryBroker) Subscribe(_ context.Context, fn func(Event)) (func(), error) {
	b.mut.Lock()
	defer b.mut.Unlock()

	id := b.nextID
	b.nextID++
	b.subs[id] = fn

	return func() {
		b.mut.Lock()
		defer b.mut.Unlock()
		delete(b.subs, id)
	}, nil
}

func (b *memoryBroker) Close() error {
	b.mut.Lock()
	defer b.mut.Unlock()
	b.subs = make(map[int]func(Event))
	b.closed = true
	return nil
}
