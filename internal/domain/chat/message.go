// Package chat holds the request pipeline behind the chat endpoint:
// conversation validation, prompt assembly, failure classification and the
// orchestrating Service. Nothing in this package stores conversation content.
package chat

// Conventional message roles. Role is an open string on the wire; RoleError is
// only ever produced by the client for display and is never sent upstream.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleBot       = "bot"
	RoleError     = "error"
)

// Message is a single conversation turn as posted by the client.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Latest returns the last message of conv, or the zero Message when conv is empty.
func Latest(conv []Message) Message {
	if len(conv) == 0 {
		return Message{}
	}
	return conv[len(conv)-1]
}
