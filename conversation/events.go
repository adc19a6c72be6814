package conversation

import "github.com/tailored-agentic-units/chatwidget/observability"

// Conversation store event types.
const (
	EventCreated         observability.EventType = "conversation.created"
	EventMessageAppended observability.EventType = "conversation.message.appended"
	EventLoaded          observability.EventType = "conversation.loaded"
	EventCleared         observability.EventType = "conversation.cleared"
	EventDeleted         observability.EventType = "conversation.deleted"
	EventRenamed         observability.EventType = "conversation.renamed"
	EventTitleDerived    observability.EventType = "conversation.title.derived"
	EventPersisted       observability.EventType = "conversation.persisted"
	EventPersistFailed   observability.EventType = "conversation.persist.failed"
	EventRestored        observability.EventType = "conversation.restored"
	EventRestoreFailed   observability.EventType = "conversation.restore.failed"
)
