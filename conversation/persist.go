package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/chatwidget/core/protocol"
	"github.com/tailored-agentic-units/chatwidget/observability"
	"github.com/tailored-agentic-units/chatwidget/storage"
)

// Persist writes the full conversation list to the backend under the
// configured key. Mutations already persist on their own; Persist is for
// callers that want the error. A nil backend is a no-op.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	err := s.persistLocked(ctx)
	s.mu.Unlock()

	s.reportPersist(ctx, err)
	return err
}

// Restore replaces the in-memory state with the persisted list. Absent or
// malformed data resets to an empty list; the failure is reported to the
// observer and never returned. No conversation is active afterwards.
func (s *Store) Restore(ctx context.Context) {
	convs, err := s.load(ctx)

	s.mu.Lock()
	if err != nil {
		convs = []Conversation{}
	}
	s.conversations = convs
	s.active = NoActive
	derived := s.deriveTitlesLocked()
	res := commit{
		seq:     s.nextSeqLocked(),
		snap:    s.snapshotLocked(),
		derived: derived,
	}
	s.mu.Unlock()

	switch {
	case errors.Is(err, storage.ErrKeyNotFound):
		s.emit(ctx, EventRestored, observability.LevelVerbose, map[string]any{
			"key":   s.key,
			"count": 0,
		})
	case err != nil:
		s.emit(ctx, EventRestoreFailed, observability.LevelWarning, map[string]any{
			"key":   s.key,
			"error": err.Error(),
		})
	default:
		s.emit(ctx, EventRestored, observability.LevelInfo, map[string]any{
			"key":   s.key,
			"count": len(convs),
		})
	}
	s.finish(ctx, res)
}

func (s *Store) load(ctx context.Context) ([]Conversation, error) {
	if s.backend == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrKeyNotFound, s.key)
	}

	entries, err := s.backend.Load(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", storage.ErrKeyNotFound, s.key)
	}

	convs, err := decode(entries[0].Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return convs, nil
}

func (s *Store) persistLocked(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}

	data, err := encode(s.conversations)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := s.backend.Save(ctx, storage.Entry{Key: s.key, Value: data}); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func (s *Store) reportPersist(ctx context.Context, err error) {
	if s.backend == nil {
		return
	}
	if err != nil {
		s.emit(ctx, EventPersistFailed, observability.LevelWarning, map[string]any{
			"key":   s.key,
			"error": err.Error(),
		})
		return
	}
	s.emit(ctx, EventPersisted, observability.LevelVerbose, map[string]any{
		"key": s.key,
	})
}

func encode(convs []Conversation) ([]byte, error) {
	if convs == nil {
		convs = []Conversation{}
	}
	return json.Marshal(convs)
}

// decode parses a persisted list. Unknown roles fail; missing identifiers and
// titles are filled in.
func decode(data []byte) ([]Conversation, error) {
	var convs []Conversation
	if err := json.Unmarshal(data, &convs); err != nil {
		return nil, fmt.Errorf("malformed conversation list: %w", err)
	}

	if convs == nil {
		return nil, errors.New("malformed conversation list: null")
	}

	for i := range convs {
		c := &convs[i]
		if c.ID == "" {
			c.ID = uuid.Must(uuid.NewV7()).String()
		}
		if c.Title == "" {
			c.Title = DefaultTitle
		}
		if c.Messages == nil {
			c.Messages = []protocol.Message{}
		}
		for j, m := range c.Messages {
			if !m.Role.Valid() {
				return nil, fmt.Errorf("%w: conversation %d message %d: %q", ErrInvalidRole, i, j, m.Role)
			}
		}
	}
	return convs, nil
}
