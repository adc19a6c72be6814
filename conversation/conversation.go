// Package conversation owns the widget's conversation list: which conversation
// is active, how titles are derived, and how the list is persisted to durable
// storage after every change.
//
// A Store is an explicit state object; renderers and transports receive it by
// reference and read immutable snapshots.
//
//	store := conversation.NewStore(nil, backend)
//	store.Restore(ctx)
//	store.StartNewConversation(ctx)
//	err := store.AppendMessage(ctx, protocol.NewMessage(protocol.RoleUser, "Hello"))
package conversation

import (
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/chatwidget/core/protocol"
)

// DefaultTitle is the sentinel title of a conversation that has not yet
// received a user message.
const DefaultTitle = "New Chat"

// DefaultTitleLength is the number of characters of the first user message
// kept in a derived title.
const DefaultTitleLength = 30

const titleEllipsis = "..."

// Conversation is one chat session: a title plus an ordered, append-only list
// of messages. ID is stable for the conversation's lifetime and lets callers
// find it again after its index has shifted.
type Conversation struct {
	ID       string             `json:"id,omitempty"`
	Title    string             `json:"title"`
	Messages []protocol.Message `json:"messages"`
}

// New creates an empty conversation with the sentinel title and a fresh
// UUIDv7 identifier.
func New() Conversation {
	return Conversation{
		ID:       uuid.Must(uuid.NewV7()).String(),
		Title:    DefaultTitle,
		Messages: []protocol.Message{},
	}
}

// Clone returns a copy that shares no memory with c.
func (c Conversation) Clone() Conversation {
	c.Messages = slices.Clone(c.Messages)
	if c.Messages == nil {
		c.Messages = []protocol.Message{}
	}
	return c
}

// DeriveTitle replaces the sentinel title with the first maxLen characters of
// the first user message followed by "...". It never touches a title that is
// already derived or renamed, so repeated calls are no-ops. Returns true when
// the title changed. maxLen <= 0 selects DefaultTitleLength.
func DeriveTitle(c *Conversation, maxLen int) bool {
	if c.Title != DefaultTitle {
		return false
	}
	if maxLen <= 0 {
		maxLen = DefaultTitleLength
	}

	idx := slices.IndexFunc(c.Messages, func(m protocol.Message) bool {
		return m.Role == protocol.RoleUser
	})
	if idx < 0 {
		return false
	}

	text := strings.Join(strings.Fields(c.Messages[idx].Content), " ")
	if text == "" {
		return false
	}

	runes := []rune(text)
	if len(runes) > maxLen {
		runes = runes[:maxLen]
	}
	c.Title = string(runes) + titleEllipsis
	return true
}
