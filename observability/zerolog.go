package observability

import (
	"context"

	"github.com/rs/zerolog"
)

// ZerologLevel maps this level to the corresponding zerolog level.
func (l Level) ZerologLevel() zerolog.Level {
	switch {
	case l <= 4:
		return zerolog.TraceLevel
	case l <= 8:
		return zerolog.DebugLevel
	case l <= 12:
		return zerolog.InfoLevel
	case l <= 16:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// ZerologObserver emits events through a zerolog.Logger. The event type is
// the log message; the source and Data keys become fields.
type ZerologObserver struct {
	logger zerolog.Logger
}

// NewZerologObserver creates a ZerologObserver that emits to the given logger.
func NewZerologObserver(logger zerolog.Logger) *ZerologObserver {
	return &ZerologObserver{logger: logger}
}

func (o *ZerologObserver) OnEvent(ctx context.Context, event Event) {
	e := o.logger.WithLevel(event.Level.ZerologLevel())
	if e == nil {
		return
	}

	if event.Source != "" {
		e = e.Str("source", event.Source)
	}
	if len(event.Data) > 0 {
		e = e.Fields(event.Data)
	}
	e.Msg(string(event.Type))
}
