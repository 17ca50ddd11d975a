package domain

import (
	"strings"
	"time"
)

// User is a tracking user in the multi-user deployment.
type User struct {
	ID          string    `json:"id" yaml:"id"`
	DisplayName string    `json:"display_name" yaml:"display_name"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// IsValid checks the user has an identifier.
func (u User) IsValid() bool {
	return strings.TrimSpace(u.ID) != ""
}

// Activity is one line of a task's history.
type Activity struct {
	ID        int64     `json:"id" yaml:"id"`
	TaskID    int64     `json:"task_id" yaml:"task_id"`
	Message   string    `json:"message" yaml:"message"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}
