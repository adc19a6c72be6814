package render

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/tailored-agentic-units/chatwidget/conversation"
)

// TextRenderer writes plain text for terminals.
type TextRenderer struct {
	typingState
	w io.Writer
}

// NewTextRenderer creates a TextRenderer writing to w.
func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

func (r *TextRenderer) Render(ctx context.Context, snap conversation.Snapshot) error {
	var b bytes.Buffer
	r.writeHistory(&b, snap)
	b.WriteByte('\n')
	if c, ok := snap.Active(); ok {
		r.writeConversation(&b, c)
	} else {
		b.WriteString("No conversation selected.\n")
	}
	_, err := r.w.Write(b.Bytes())
	return err
}

func (r *TextRenderer) RenderHistory(_ context.Context, snap conversation.Snapshot) error {
	var b bytes.Buffer
	r.writeHistory(&b, snap)
	_, err := r.w.Write(b.Bytes())
	return err
}

func (r *TextRenderer) RenderConversation(_ context.Context, c conversation.Conversation) error {
	var b bytes.Buffer
	r.writeConversation(&b, c)
	_, err := r.w.Write(b.Bytes())
	return err
}

func (r *TextRenderer) writeHistory(b *bytes.Buffer, snap conversation.Snapshot) {
	if len(snap.Conversations) == 0 {
		b.WriteString("No conversations.\n")
		return
	}
	for i, c := range snap.Conversations {
		marker := " "
		if i == snap.ActiveIndex {
			marker = "*"
		}
		fmt.Fprintf(b, "%s [%d] %s\n", marker, i, c.Title)
	}
}

func (r *TextRenderer) writeConversation(b *bytes.Buffer, c conversation.Conversation) {
	fmt.Fprintf(b, "== %s ==\n", c.Title)
	for _, m := range c.Messages {
		fmt.Fprintf(b, "%s: %s\n", speaker(m.Role), m.Content)
	}
	if r.IsTyping(c.ID) {
		b.WriteString(typingText + "\n")
	}
}

var (
	_ Renderer        = (*TextRenderer)(nil)
	_ TypingIndicator = (*TextRenderer)(nil)
)
