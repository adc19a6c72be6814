package conversation_test

import (
	"context"
	"errors"
	"sync"

	"github.com/tailored-agentic-units/chatwidget/observability"
	"github.com/tailored-agentic-units/chatwidget/storage"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []observability.Event
}

func (o *recordingObserver) OnEvent(_ context.Context, event observability.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) count(typ observability.EventType) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, e := range o.events {
		if e.Type == typ {
			n++
		}
	}
	return n
}

var errBackend = errors.New("backend unavailable")

// failingStore rejects every read and write.
type failingStore struct{}

func (failingStore) List(context.Context) ([]string, error) {
	return nil, errBackend
}

func (failingStore) Load(context.Context, ...string) ([]storage.Entry, error) {
	return nil, errBackend
}

func (failingStore) Save(context.Context, ...storage.Entry) error {
	return errBackend
}

func (failingStore) Delete(context.Context, ...string) error {
	return errBackend
}
