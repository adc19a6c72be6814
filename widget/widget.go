// Package widget composes the conversation store, the reply service client,
// durable storage and an optional renderer into the chat widget's send and
// upload flows.
//
// The widget initializes from configuration via New, creating all subsystems
// internally. Functional options allow test overrides of any subsystem.
//
//	w, err := widget.New(&cfg)
//	w.Restore(ctx)
//	err = w.Send(ctx, "Hello")
package widget

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/tailored-agentic-units/chatwidget/conversation"
	"github.com/tailored-agentic-units/chatwidget/core/protocol"
	"github.com/tailored-agentic-units/chatwidget/observability"
	"github.com/tailored-agentic-units/chatwidget/render"
	"github.com/tailored-agentic-units/chatwidget/storage"
	"github.com/tailored-agentic-units/chatwidget/transport"
)

// FallbackReply is appended as the assistant's reply when /chat fails.
const FallbackReply = "Sorry, I encountered an error. Please try again."

// Transport abstracts the reply service for testability. The default
// implementation is transport.Client.
type Transport interface {
	Chat(ctx context.Context, message string) (string, error)
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

// Option configures a Widget before config-driven initialization fills in
// the subsystems that were not overridden.
type Option func(*Widget)

// WithTransport overrides the config-created transport client.
func WithTransport(t Transport) Option {
	return func(w *Widget) { w.transport = t }
}

// WithTransportLogger routes the config-created transport client's HTTP
// diagnostics to logger. Ignored when WithTransport is also given.
func WithTransportLogger(logger zerolog.Logger) Option {
	return func(w *Widget) { w.transportLogger = &logger }
}

// WithStorage overrides the config-created storage backend. A nil store
// keeps conversations in memory only.
func WithStorage(s storage.Store) Option {
	return func(w *Widget) {
		w.backend = s
		w.backendSet = true
	}
}

// WithObserver overrides the observer named in the config.
func WithObserver(o observability.Observer) Option {
	return func(w *Widget) { w.observer = o }
}

// WithRenderer redraws through r after every state change. When r also
// implements render.TypingIndicator it shows the typing cue as well.
func WithRenderer(r render.Renderer) Option {
	return func(w *Widget) { w.renderer = r }
}

// WithTypingIndicator overrides the typing cue.
func WithTypingIndicator(t render.TypingIndicator) Option {
	return func(w *Widget) { w.typing = t }
}

// Widget runs the chat flows against a single conversation store. At most one
// send or upload is in flight at a time.
type Widget struct {
	transport  Transport
	backend    storage.Store
	backendSet bool
	ownBackend bool
	store      *conversation.Store
	observer   observability.Observer
	renderer   render.Renderer
	typing     render.TypingIndicator
	inflight   *semaphore.Weighted

	transportLogger *zerolog.Logger
	unsubscribe     func()
}

// New creates a Widget from configuration. Subsystems not supplied through
// options are initialized from their config sections.
func New(cfg *Config, opts ...Option) (*Widget, error) {
	w := &Widget{
		inflight: semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.observer == nil {
		name := cfg.Observer
		if name == "" {
			name = defaultObserver
		}
		obs, err := observability.GetObserver(name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve observer: %w", err)
		}
		w.observer = obs
	}

	if !w.backendSet {
		backend, err := storage.NewStore(&cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage: %w", err)
		}
		w.backend = backend
		w.ownBackend = true
	}

	if w.transport == nil {
		var topts []transport.Option
		if w.transportLogger != nil {
			topts = append(topts, transport.WithLogger(*w.transportLogger))
		}
		w.transport = transport.New(&cfg.Transport, topts...)
	}

	if w.typing == nil {
		if t, ok := w.renderer.(render.TypingIndicator); ok {
			w.typing = t
		}
	}

	w.store = conversation.NewStore(
		&cfg.Conversation,
		w.backend,
		conversation.WithObserver(w.observer),
	)

	if w.renderer != nil {
		w.unsubscribe = w.store.Subscribe(w.render)
	}

	return w, nil
}

// Store returns the widget's conversation store.
func (w *Widget) Store() *conversation.Store {
	return w.store
}

// Restore loads persisted conversations. Nothing is active afterwards.
func (w *Widget) Restore(ctx context.Context) {
	w.store.Restore(ctx)
}

// Close stops rendering and releases the storage backend when the widget
// created it.
func (w *Widget) Close() error {
	if w.unsubscribe != nil {
		w.unsubscribe()
	}
	if w.ownBackend {
		return storage.Close(w.backend)
	}
	return nil
}

// Send appends text as a user message to the active conversation, starting
// one when none is active, and appends the service reply to the same
// conversation. A failed request appends FallbackReply instead and is not
// returned as an error. If the conversation is deleted while the request is
// pending, the reply is dropped.
func (w *Widget) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if err := w.acquire(ctx); err != nil {
		return err
	}
	defer w.inflight.Release(1)

	id := w.ensureActive(ctx)
	if err := w.store.AppendMessageTo(ctx, id, protocol.NewMessage(protocol.RoleUser, text)); err != nil {
		return err
	}

	w.emit(ctx, EventSendStart, observability.LevelInfo, "widget.Send", map[string]any{
		"conversation":   id,
		"message_length": len(text),
	})

	hide := w.showTyping(ctx, id)
	defer hide()

	start := time.Now()
	reply, err := w.transport.Chat(ctx, text)
	hide()

	if err != nil {
		w.emit(ctx, EventSendFailed, observability.LevelWarning, "widget.Send", map[string]any{
			"conversation": id,
			"error":        err.Error(),
		})
		reply = FallbackReply
	} else {
		w.emit(ctx, EventSendComplete, observability.LevelInfo, "widget.Send", map[string]any{
			"conversation": id,
			"reply_length": len(reply),
			"duration_ms":  time.Since(start).Milliseconds(),
		})
	}

	w.deliver(ctx, id, protocol.NewMessage(protocol.RoleAssistant, reply))
	return nil
}

// Upload sends the file to the upload endpoint and records the outcome as a
// single system message in the active conversation, starting one when none
// is active. A failed upload is recorded, not returned.
func (w *Widget) Upload(ctx context.Context, filename string, r io.Reader) error {
	filename = strings.TrimSpace(filename)
	if filename == "" || r == nil {
		return ErrNoFile
	}
	if err := w.acquire(ctx); err != nil {
		return err
	}
	defer w.inflight.Release(1)

	id := w.ensureActive(ctx)

	w.emit(ctx, EventUploadStart, observability.LevelInfo, "widget.Upload", map[string]any{
		"conversation": id,
		"filename":     filename,
	})

	outcome, err := w.transport.Upload(ctx, filename, r)
	if err != nil {
		w.emit(ctx, EventUploadFailed, observability.LevelWarning, "widget.Upload", map[string]any{
			"conversation": id,
			"error":        err.Error(),
		})
		outcome = "Upload failed: " + transport.Reason(err)
	} else {
		w.emit(ctx, EventUploadComplete, observability.LevelInfo, "widget.Upload", map[string]any{
			"conversation": id,
			"filename":     filename,
		})
	}

	w.deliver(ctx, id, protocol.NewMessage(protocol.RoleSystem, outcome))
	return nil
}

func (w *Widget) acquire(ctx context.Context) error {
	if !w.inflight.TryAcquire(1) {
		w.emit(ctx, EventBusy, observability.LevelVerbose, "widget", nil)
		return ErrBusy
	}
	return nil
}

func (w *Widget) ensureActive(ctx context.Context) string {
	if c, ok := w.store.Active(); ok {
		return c.ID
	}
	return w.store.StartNewConversation(ctx).ID
}

// deliver appends msg to the conversation that issued the request, dropping
// it when that conversation no longer exists.
func (w *Widget) deliver(ctx context.Context, id string, msg protocol.Message) {
	err := w.store.AppendMessageTo(ctx, id, msg)
	if errors.Is(err, conversation.ErrConversationNotFound) {
		w.emit(ctx, EventReplyDropped, observability.LevelInfo, "widget", map[string]any{
			"conversation": id,
			"role":         string(msg.Role),
		})
	}
}

// showTyping shows the typing cue and returns a function that hides it. The
// returned function is safe to call more than once; only the first call
// takes effect.
func (w *Widget) showTyping(ctx context.Context, id string) func() {
	if w.typing == nil {
		return func() {}
	}

	w.typing.ShowTyping(ctx, id)
	w.redraw(ctx)

	var once sync.Once
	return func() {
		once.Do(func() {
			w.typing.HideTyping(ctx, id)
			w.redraw(ctx)
		})
	}
}

func (w *Widget) redraw(ctx context.Context) {
	if w.renderer != nil {
		w.render(ctx, w.store.Snapshot())
	}
}

func (w *Widget) render(ctx context.Context, snap conversation.Snapshot) {
	if err := w.renderer.Render(ctx, snap); err != nil {
		w.emit(ctx, EventRenderFailed, observability.LevelWarning, "widget", map[string]any{
			"error": err.Error(),
		})
	}
}

func (w *Widget) emit(ctx context.Context, typ observability.EventType, level observability.Level, source string, data map[string]any) {
	w.observer.OnEvent(ctx, observability.NewEvent(typ, level, source, data))
}
