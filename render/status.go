package render

import (
	"context"
	"io"
	"sync"
)

const (
	typingText = "Assistant is typing..."
	clearLine  = "\r\x1b[K"
)

// StatusLine shows the typing cue as a single terminal line that is erased
// when the reply arrives. It draws nothing else, so it can share a terminal
// with a renderer writing elsewhere.
type StatusLine struct {
	mu    sync.Mutex
	w     io.Writer
	shown bool
}

// NewStatusLine creates a StatusLine writing to w, typically stderr.
func NewStatusLine(w io.Writer) *StatusLine {
	return &StatusLine{w: w}
}

func (s *StatusLine) ShowTyping(_ context.Context, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shown {
		return
	}
	s.shown = true
	io.WriteString(s.w, typingText)
}

func (s *StatusLine) HideTyping(_ context.Context, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.shown {
		return
	}
	s.shown = false
	io.WriteString(s.w, clearLine)
}

var _ TypingIndicator = (*StatusLine)(nil)
