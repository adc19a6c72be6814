package render

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/tailored-agentic-units/chatwidget/conversation"
	"github.com/tailored-agentic-units/chatwidget/core/protocol"
)

const typingMarkup = `<div class="message bot typing-indicator"><span></span><span></span><span></span></div>`

// HTMLRenderer writes the history sidebar and chat container markup. Titles
// are escaped; message bodies are rendered as Markdown with raw HTML dropped.
type HTMLRenderer struct {
	typingState
	w io.Writer
}

// NewHTMLRenderer creates an HTMLRenderer writing to w.
func NewHTMLRenderer(w io.Writer) *HTMLRenderer {
	return &HTMLRenderer{w: w}
}

func (r *HTMLRenderer) Render(ctx context.Context, snap conversation.Snapshot) error {
	var b bytes.Buffer
	r.writeHistory(&b, snap)
	c, _ := snap.Active()
	r.writeConversation(&b, c)
	_, err := r.w.Write(b.Bytes())
	return err
}

func (r *HTMLRenderer) RenderHistory(_ context.Context, snap conversation.Snapshot) error {
	var b bytes.Buffer
	r.writeHistory(&b, snap)
	_, err := r.w.Write(b.Bytes())
	return err
}

func (r *HTMLRenderer) RenderConversation(_ context.Context, c conversation.Conversation) error {
	var b bytes.Buffer
	r.writeConversation(&b, c)
	_, err := r.w.Write(b.Bytes())
	return err
}

func (r *HTMLRenderer) writeHistory(b *bytes.Buffer, snap conversation.Snapshot) {
	b.WriteString(`<div id="history">` + "\n")
	for i, c := range snap.Conversations {
		class := "history-item"
		if i == snap.ActiveIndex {
			class += " active"
		}
		fmt.Fprintf(b, `<div class="%s" data-index="%d">%s</div>`+"\n", class, i, html.EscapeString(c.Title))
	}
	b.WriteString("</div>\n")
}

func (r *HTMLRenderer) writeConversation(b *bytes.Buffer, c conversation.Conversation) {
	if c.ID == "" {
		b.WriteString(`<div id="chat-container">` + "\n")
	} else {
		fmt.Fprintf(b, `<div id="chat-container" data-conversation="%s">`+"\n", html.EscapeString(c.ID))
	}
	for _, m := range c.Messages {
		fmt.Fprintf(b, `<div class="message %s">%s</div>`+"\n", senderClass(m.Role), MarkdownToHTML(m.Content))
	}
	if c.ID != "" && r.IsTyping(c.ID) {
		b.WriteString(typingMarkup + "\n")
	}
	b.WriteString("</div>\n")
}

// MarkdownToHTML renders message content as HTML. Raw HTML in the source is
// skipped and only safe link schemes are emitted.
func MarkdownToHTML(content string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.SkipHTML | mdhtml.Safelink,
	})
	return string(bytes.TrimSpace(markdown.ToHTML([]byte(content), p, renderer)))
}

func senderClass(role protocol.Role) string {
	switch role {
	case protocol.RoleUser:
		return "user"
	case protocol.RoleAssistant:
		return "bot"
	default:
		return "system"
	}
}

var (
	_ Renderer        = (*HTMLRenderer)(nil)
	_ TypingIndicator = (*HTMLRenderer)(nil)
)
