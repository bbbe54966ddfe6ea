// Package chat drives the tool-augmented conversation loop and its REPL.
package chat

import "github.com/paperchat-ai/paperchat/internal/model"

// Conversation is the append-only message sequence for one query-answer
// exchange. It has exactly one writer: the orchestrator run that owns it.
type Conversation struct {
	messages []model.Message
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds a message to the end of the conversation.
func (c *Conversation) Append(msg model.Message) {
	c.messages = append(c.messages, msg)
}

// Messages returns the messages in insertion order.
func (c *Conversation) Messages() []model.Message {
	return c.messages
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}
