package ai

import (
	"sync"

	"github.com/nhle/mailassist/internal/model"
)

const defaultMaxMessages = 50

// ConversationContext keeps the visible chat transcript, dropping the
// oldest entries once maxMessages is reached.
type ConversationContext struct {
	mu          sync.Mutex
	messages    []model.ChatMessage
	maxMessages int
}

// NewConversationContext creates a context bounded to maxMessages entries.
// A non-positive bound uses the default of 50.
func NewConversationContext(maxMessages int) *ConversationContext {
	if maxMessages <= 0 {
		maxMessages = defaultMaxMessages
	}
	return &ConversationContext{
		messages:    make([]model.ChatMessage, 0, maxMessages),
		maxMessages: maxMessages,
	}
}

// AddMessage appends msg, trimming the oldest entries over the bound.
func (c *ConversationContext) AddMessage(msg model.ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, msg)
	if excess := len(c.messages) - c.maxMessages; excess > 0 {
		c.messages = append(c.messages[:0:0], c.messages[excess:]...)
	}
}

// Replace swaps the whole history for msgs, keeping only the newest
// entries that fit.
func (c *ConversationContext) Replace(msgs []model.ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if excess := len(msgs) - c.maxMessages; excess > 0 {
		msgs = msgs[excess:]
	}
	c.messages = append(c.messages[:0:0], msgs...)
}

// GetMessages returns a copy of the current conversation messages.
func (c *ConversationContext) GetMessages() []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]model.ChatMessage, len(c.messages))
	copy(result, c.messages)
	return result
}

// Reset clears all messages from the conversation context.
func (c *ConversationContext) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = c.messages[:0]
}

// Len returns the number of messages in the conversation context.
func (c *ConversationContext) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.messages)
}

// Max returns the bound.
func (c *ConversationContext) Max() int {
	return c.maxMessages
}
