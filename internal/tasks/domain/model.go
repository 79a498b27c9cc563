package domain

import (
	"errors"
	"time"

	"github.com/taskverse/taskverse-backend/internal/aggregate"
)

var (
	ErrNotFound = errors.New("task not found or does not belong to the project")
	ErrTxFailed = errors.New("transactional write failed")
)

// Task is one project task with its assignee junction rows flattened into
// ordered id/detail lists by the read queries.
type Task struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	DueDate     *string   `json:"due_date"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	AssigneeIDs []int64             `json:"assignee_ids"`
	Assignees   []aggregate.UserRef `json:"assignees"`
}
