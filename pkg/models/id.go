package models

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a short unique identifier used for tasks, messages,
// and requests. IDs are 12 hex characters and never reused.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
