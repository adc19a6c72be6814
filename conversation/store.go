package conversation

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/tailored-agentic-units/chatwidget/core/protocol"
	"github.com/tailored-agentic-units/chatwidget/observability"
	"github.com/tailored-agentic-units/chatwidget/storage"
)

// NoActive is the active index when no conversation is selected.
const NoActive = -1

// Snapshot is an immutable copy of the store state handed to readers.
type Snapshot struct {
	Conversations []Conversation
	ActiveIndex   int
}

// Active returns the active conversation, if any.
func (s Snapshot) Active() (Conversation, bool) {
	if s.ActiveIndex < 0 || s.ActiveIndex >= len(s.Conversations) {
		return Conversation{}, false
	}
	return s.Conversations[s.ActiveIndex], true
}

// Listener is called after every state change with the resulting snapshot.
// Listeners run outside the store lock and may read from the store, but must
// not mutate it. Calls are serialized and never deliver a snapshot older than
// one already delivered.
type Listener func(ctx context.Context, snap Snapshot)

// Option configures a Store.
type Option func(*Store)

// WithObserver sets the observer that receives store events, including
// persistence failures. Defaults to NoOpObserver.
func WithObserver(o observability.Observer) Option {
	return func(s *Store) {
		s.observer = o
	}
}

type subscription struct {
	id int
	fn Listener
}

// Store is the single writer of conversation state. Every mutation derives
// titles and persists the full list to the backend before the lock is
// released. A nil backend keeps the store in memory only.
type Store struct {
	mu            sync.Mutex
	conversations []Conversation
	active        int

	backend     storage.Store
	key         string
	titleLength int
	observer    observability.Observer

	seq uint64

	lmu       sync.Mutex
	listeners []subscription
	nextSub   int

	nmu       sync.Mutex
	delivered uint64
}

// NewStore creates an empty store persisting into backend. A nil cfg uses
// DefaultConfig; zero fields fall back to their defaults.
func NewStore(cfg *Config, backend storage.Store, opts ...Option) *Store {
	c := DefaultConfig()
	if cfg != nil {
		c.Merge(cfg)
	}

	s := &Store{
		conversations: []Conversation{},
		active:        NoActive,
		backend:       backend,
		key:           c.StorageKey,
		titleLength:   c.TitleLength,
		observer:      observability.NoOpObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartNewConversation inserts an empty conversation at index 0 and makes it
// active.
func (s *Store) StartNewConversation(ctx context.Context) Conversation {
	conv := New()

	s.mu.Lock()
	s.conversations = slices.Insert(s.conversations, 0, conv)
	s.active = 0
	res := s.commitLocked(ctx)
	s.mu.Unlock()

	s.emit(ctx, EventCreated, observability.LevelInfo, map[string]any{
		"id":    conv.ID,
		"count": len(res.snap.Conversations),
	})
	s.finish(ctx, res)
	return conv.Clone()
}

// AppendMessage appends msg to the active conversation. Returns
// ErrInvalidState when no conversation is active.
func (s *Store) AppendMessage(ctx context.Context, msg protocol.Message) error {
	if !msg.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, msg.Role)
	}

	s.mu.Lock()
	if s.active == NoActive {
		s.mu.Unlock()
		return ErrInvalidState
	}
	id := s.appendLocked(s.active, msg)
	res := s.commitLocked(ctx)
	s.mu.Unlock()

	s.emitAppended(ctx, id, msg)
	s.finish(ctx, res)
	return nil
}

// AppendMessageTo appends msg to the conversation identified by id, whether
// or not it is active. Returns ErrConversationNotFound when it no longer
// exists.
func (s *Store) AppendMessageTo(ctx context.Context, id string, msg protocol.Message) error {
	if !msg.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, msg.Role)
	}

	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrConversationNotFound, id)
	}
	s.appendLocked(idx, msg)
	res := s.commitLocked(ctx)
	s.mu.Unlock()

	s.emitAppended(ctx, id, msg)
	s.finish(ctx, res)
	return nil
}

// LoadConversation makes the conversation at index active. Out-of-range
// indexes are ignored and report false.
func (s *Store) LoadConversation(ctx context.Context, index int) bool {
	s.mu.Lock()
	if index < 0 || index >= len(s.conversations) {
		s.mu.Unlock()
		return false
	}
	s.active = index
	id := s.conversations[index].ID
	res := s.commitLocked(ctx)
	s.mu.Unlock()

	s.emit(ctx, EventLoaded, observability.LevelVerbose, map[string]any{
		"id":    id,
		"index": index,
	})
	s.finish(ctx, res)
	return true
}

// ClearActive returns to the pre-chat state: no conversation is active and
// none is created until the next StartNewConversation or send.
func (s *Store) ClearActive(ctx context.Context) {
	s.mu.Lock()
	s.active = NoActive
	res := s.commitLocked(ctx)
	s.mu.Unlock()

	s.emit(ctx, EventCleared, observability.LevelVerbose, nil)
	s.finish(ctx, res)
}

// DeleteConversation removes the conversation at index. Deleting the active
// conversation clears the selection; deleting one before it shifts the active
// index down. Out-of-range indexes are ignored and report false.
func (s *Store) DeleteConversation(ctx context.Context, index int) bool {
	s.mu.Lock()
	if index < 0 || index >= len(s.conversations) {
		s.mu.Unlock()
		return false
	}
	id := s.conversations[index].ID
	s.conversations = slices.Delete(s.conversations, index, index+1)
	switch {
	case s.active == index:
		s.active = NoActive
	case s.active > index:
		s.active--
	}
	res := s.commitLocked(ctx)
	s.mu.Unlock()

	s.emit(ctx, EventDeleted, observability.LevelInfo, map[string]any{
		"id":    id,
		"index": index,
		"count": len(res.snap.Conversations),
	})
	s.finish(ctx, res)
	return true
}

// RenameConversation sets the title of the conversation at index. Titles are
// trimmed; an empty result or an out-of-range index leaves state unchanged
// and reports false.
func (s *Store) RenameConversation(ctx context.Context, index int, title string) bool {
	title = strings.TrimSpace(title)

	s.mu.Lock()
	if title == "" || index < 0 || index >= len(s.conversations) {
		s.mu.Unlock()
		return false
	}
	s.conversations[index].Title = title
	id := s.conversations[index].ID
	res := s.commitLocked(ctx)
	s.mu.Unlock()

	s.emit(ctx, EventRenamed, observability.LevelInfo, map[string]any{
		"id":    id,
		"title": title,
	})
	s.finish(ctx, res)
	return true
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Conversations returns a deep copy of the conversation list.
func (s *Store) Conversations() []Conversation {
	return s.Snapshot().Conversations
}

// ActiveIndex returns the active index, or NoActive.
func (s *Store) ActiveIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Active returns a copy of the active conversation, if any.
func (s *Store) Active() (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == NoActive {
		return Conversation{}, false
	}
	return s.conversations[s.active].Clone(), true
}

// Find returns the current index of the conversation with the given ID.
func (s *Store) Find(id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	return idx, idx >= 0
}

// Len returns the number of conversations.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// Subscribe registers fn to run after every state change. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn Listener) func() {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		s.listeners = slices.DeleteFunc(s.listeners, func(sub subscription) bool {
			return sub.id == id
		})
	}
}

// commit carries the outcome of a mutation out of the lock.
type commit struct {
	seq        uint64
	snap       Snapshot
	derived    []string
	persisted  bool
	persistErr error
}

func (s *Store) commitLocked(ctx context.Context) commit {
	derived := s.deriveTitlesLocked()
	err := s.persistLocked(ctx)
	return commit{
		seq:        s.nextSeqLocked(),
		snap:       s.snapshotLocked(),
		derived:    derived,
		persisted:  true,
		persistErr: err,
	}
}

func (s *Store) nextSeqLocked() uint64 {
	s.seq++
	return s.seq
}

// finish reports the side effects of a commit and notifies listeners.
func (s *Store) finish(ctx context.Context, res commit) {
	for _, id := range res.derived {
		s.emit(ctx, EventTitleDerived, observability.LevelVerbose, map[string]any{
			"id": id,
		})
	}
	if res.persisted {
		s.reportPersist(ctx, res.persistErr)
	}
	s.notify(ctx, res.seq, res.snap)
}

func (s *Store) appendLocked(index int, msg protocol.Message) string {
	s.conversations[index].Messages = append(s.conversations[index].Messages, msg)
	return s.conversations[index].ID
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.conversations, func(c Conversation) bool {
		return c.ID == id
	})
}

func (s *Store) deriveTitlesLocked() []string {
	var derived []string
	for i := range s.conversations {
		if DeriveTitle(&s.conversations[i], s.titleLength) {
			derived = append(derived, s.conversations[i].ID)
		}
	}
	return derived
}

func (s *Store) snapshotLocked() Snapshot {
	convs := make([]Conversation, len(s.conversations))
	for i, c := range s.conversations {
		convs[i] = c.Clone()
	}
	return Snapshot{
		Conversations: convs,
		ActiveIndex:   s.active,
	}
}

// notify delivers snap to every listener unless a later commit has already
// been delivered.
func (s *Store) notify(ctx context.Context, seq uint64, snap Snapshot) {
	s.nmu.Lock()
	defer s.nmu.Unlock()
	if seq <= s.delivered {
		return
	}
	s.delivered = seq

	s.lmu.Lock()
	subs := slices.Clone(s.listeners)
	s.lmu.Unlock()

	for _, sub := range subs {
		sub.fn(ctx, snap)
	}
}

func (s *Store) emitAppended(ctx context.Context, id string, msg protocol.Message) {
	s.emit(ctx, EventMessageAppended, observability.LevelVerbose, map[string]any{
		"id":             id,
		"role":           string(msg.Role),
		"content_length": len(msg.Content),
	})
}

func (s *Store) emit(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	s.observer.OnEvent(ctx, observability.NewEvent(typ, level, "conversation.Store", data))
}
