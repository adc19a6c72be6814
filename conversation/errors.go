package conversation

import "errors"

// Sentinel errors for store operations.
var (
	// ErrInvalidState reports an append with no active conversation. Callers
	// must start or load a conversation first.
	ErrInvalidState = errors.New("no active conversation")
	// ErrConversationNotFound reports that a conversation ID no longer exists,
	// typically because it was deleted while a request was in flight.
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInvalidRole          = errors.New("invalid message role")
	// ErrPersistence wraps storage read and write failures. The store keeps
	// working in memory when it occurs.
	ErrPersistence = errors.New("persistence failed")
)
