package widget

import "github.com/tailored-agentic-units/chatwidget/observability"

// Widget event types emitted by the send and upload flows.
const (
	EventSendStart      observability.EventType = "widget.send.start"
	EventSendComplete   observability.EventType = "widget.send.complete"
	EventSendFailed     observability.EventType = "widget.send.failed"
	EventUploadStart    observability.EventType = "widget.upload.start"
	EventUploadComplete observability.EventType = "widget.upload.complete"
	EventUploadFailed   observability.EventType = "widget.upload.failed"
	EventReplyDropped   observability.EventType = "widget.reply.dropped"
	EventBusy           observability.EventType = "widget.busy"
	EventRenderFailed   observability.EventType = "widget.render.failed"
)
