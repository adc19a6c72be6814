// Package render turns conversation snapshots into output for a terminal or
// a web page. Renderers only read snapshots; they never mutate the store.
package render

import (
	"context"
	"sync"

	"github.com/tailored-agentic-units/chatwidget/conversation"
	"github.com/tailored-agentic-units/chatwidget/core/protocol"
)

// Renderer draws the history list and the active thread.
type Renderer interface {
	// Render draws the history list followed by the active conversation.
	Render(ctx context.Context, snap conversation.Snapshot) error
	// RenderHistory draws the conversation titles, marking the active one.
	RenderHistory(ctx context.Context, snap conversation.Snapshot) error
	// RenderConversation draws one conversation's messages in order.
	RenderConversation(ctx context.Context, c conversation.Conversation) error
}

// TypingIndicator shows and hides the transient "assistant is typing" cue
// for a conversation while a reply is pending.
type TypingIndicator interface {
	ShowTyping(ctx context.Context, conversationID string)
	HideTyping(ctx context.Context, conversationID string)
}

// typingState tracks which conversations currently show the indicator.
type typingState struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func (t *typingState) ShowTyping(_ context.Context, conversationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ids == nil {
		t.ids = make(map[string]struct{})
	}
	t.ids[conversationID] = struct{}{}
}

func (t *typingState) HideTyping(_ context.Context, conversationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.ids, conversationID)
}

// IsTyping reports whether the indicator is shown for conversationID.
func (t *typingState) IsTyping(conversationID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.ids[conversationID]
	return ok
}

func speaker(role protocol.Role) string {
	switch role {
	case protocol.RoleUser:
		return "You"
	case protocol.RoleAssistant:
		return "Assistant"
	default:
		return "System"
	}
}
