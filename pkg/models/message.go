package models

import "time"

// Message represents one unit of inter-agent communication.
type Message struct {
	// ID is the unique identifier for this message.
	ID string `json:"message_id"`
	// From is the sender agent name.
	From string `json:"from_agent"`
	// To is the recipient agent name.
	To string `json:"to_agent"`
	// Content is the message body.
	Content string `json:"content"`
	// Timestamp is when the message was sent (UTC).
	Timestamp time.Time `json:"timestamp"`
	// Read indicates whether the recipient has read the message.
	Read bool `json:"read"`
	// Metadata is optional serialized metadata.
	Metadata string `json:"metadata,omitempty"`
}

// InboxSummary summarizes an agent's inbox.
type InboxSummary struct {
	// AgentName is the inbox owner.
	AgentName string `json:"agent_name"`
	// Total is the total message count.
	Total int `json:"total_messages"`
	// Unread is the unread message count.
	Unread int `json:"unread_count"`
	// OldestUnread is the timestamp of the oldest unread message, if any.
	OldestUnread *time.Time `json:"oldest_unread,omitempty"`
}
