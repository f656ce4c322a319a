package domain

import "github.com/google/uuid"

// NewID generates a fresh random identifier for a Project, Task, AgentProcess, or
// AgentMessage.
func NewID() string {
	return uuid.New().String()
}
