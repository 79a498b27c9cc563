package domain

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("notification not found")

// Notification is a per-user thread event. This core only reads them and
// flips the is_read flag.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	SenderID  int64     `json:"sender_id"`
	ThreadID  int64     `json:"thread_id"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`

	ThreadName  string `json:"thread_name"`
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
}
