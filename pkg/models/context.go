package models

import (
	"encoding/json"
	"time"
)

// OrchestrationContext is ambient metadata threaded through a delegation
// chain: request identity, originating operation, and recursion depth.
// A context is immutable; each handoff hop derives a child with the
// depth incremented by one.
type OrchestrationContext struct {
	// RequestID uniquely identifies the originating request.
	RequestID string `json:"request_id"`
	// SessionID is the protocol session identifier, if known.
	SessionID string `json:"session_id,omitempty"`
	// CreatedAt is when this context was created (UTC).
	CreatedAt time.Time `json:"timestamp"`
	// SourceOp names the operation that originated the context.
	SourceOp string `json:"source_op,omitempty"`
	// CurrentDepth is the current handoff recursion depth.
	CurrentDepth int `json:"current_depth"`
}

// NewOrchestrationContext creates a fresh context for the given
// originating operation at depth zero.
func NewOrchestrationContext(sourceOp string) *OrchestrationContext {
	return &OrchestrationContext{
		RequestID: NewID(),
		CreatedAt: time.Now().UTC(),
		SourceOp:  sourceOp,
	}
}

// Child returns a copy of the context one hop deeper. The receiver is
// not mutated.
func (c *OrchestrationContext) Child() *OrchestrationContext {
	child := *c
	child.CurrentDepth++
	return &child
}

// Encode serializes the context for durable storage.
func (c *OrchestrationContext) Encode() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeOrchestrationContext deserializes a stored context. An empty
// input yields nil without error.
func DecodeOrchestrationContext(s string) (*OrchestrationContext, error) {
	if s == "" {
		return nil, nil
	}
	var c OrchestrationContext
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return nil, err
	}
	return &c, nil
}
