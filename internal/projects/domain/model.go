package domain

import (
	"errors"
	"time"

	"github.com/taskverse/taskverse-backend/internal/aggregate"
)

var (
	ErrNotFound       = errors.New("project not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrMemberNotFound = errors.New("user is not a member of this project")
	ErrConflict       = errors.New("user is already a member of this project")
	ErrTxFailed       = errors.New("transactional write failed")
)

// Project is the aggregate root of the entity graph. TaskCount and
// ThreadCount are denormalized counters maintained incrementally by the
// write paths, never recomputed on read.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatorID   int64     `json:"creator_id"`
	TaskCount   int       `json:"task_count"`
	ThreadCount int       `json:"thread_count"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// CreatorName and CreatorEmail are populated on list reads; Creator on
	// single-project reads. Mirrors the shapes the API has always returned.
	CreatorName  string             `json:"creator_name,omitempty"`
	CreatorEmail string             `json:"creator_email,omitempty"`
	Creator      *aggregate.UserRef `json:"creator,omitempty"`

	Members []Member `json:"members"`
}

// Member is one project membership row with its user details embedded.
type Member struct {
	UserID   int64             `json:"user_id"`
	User     aggregate.UserRef `json:"user"`
	Role     string            `json:"role"`
	JoinedAt time.Time         `json:"joined_at"`
}
