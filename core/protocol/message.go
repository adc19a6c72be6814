// Package protocol defines the message vocabulary shared by the conversation
// store, the transport and the renderers.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role identifies the sender of a conversation message. The set is closed:
// decoding any other value fails.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

var validRoles = []Role{RoleUser, RoleAssistant, RoleSystem}

// ValidRoles returns every accepted role in declaration order.
func ValidRoles() []Role {
	roles := make([]Role, len(validRoles))
	copy(roles, validRoles)
	return roles
}

// RoleStrings returns the accepted roles as a comma-separated list, for
// error messages and CLI help.
func RoleStrings() string {
	names := make([]string, len(validRoles))
	for i, r := range validRoles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

// IsValidRole reports whether s names one of the accepted roles. Matching is
// case-sensitive.
func IsValidRole(s string) bool {
	for _, r := range validRoles {
		if string(r) == s {
			return true
		}
	}
	return false
}

// ParseRole converts s to a Role, rejecting anything outside the closed set.
func ParseRole(s string) (Role, error) {
	if !IsValidRole(s) {
		return "", fmt.Errorf("invalid role %q (want one of: %s)", s, RoleStrings())
	}
	return Role(s), nil
}

// Valid reports whether r is one of the accepted roles.
func (r Role) Valid() bool {
	return IsValidRole(string(r))
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Message is a single chat turn. Content is plain text; escaping for any
// markup target is the renderer's job.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a Message with the given role and content.
//
// Example:
//
//	msg := protocol.NewMessage(protocol.RoleUser, "Hello")
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}
