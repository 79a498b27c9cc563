package repository

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/taskverse/taskverse-backend/internal/notifications/domain"
)

type Repo struct {
	db  *sql.DB
	log *zap.Logger
}

func NewRepo(db *sql.DB, log *zap.Logger) *Repo {
	return &Repo{db: db, log: log}
}

// ListByUser returns a user's notifications, newest first, enriched with the
// thread name and sender details. unreadOnly narrows to is_read = false.
func (r *Repo) ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]domain.Notification, error) {
	q := `
SELECT n.id, n.user_id, n.sender_id, n.thread_id, n.is_read, n.created_at,
       t.name AS thread_name, u.name AS sender_name, u.email AS sender_email
FROM notifications n
JOIN threads t ON n.thread_id = t.id
JOIN users u ON n.sender_id = u.id
WHERE n.user_id = $1
`
	if unreadOnly {
		q += `AND n.is_read = false
`
	}
	q += `ORDER BY n.created_at DESC;`

	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Notification, 0, 16)
	for rows.Next() {
		var n domain.Notification
		err := rows.Scan(
			&n.ID, &n.UserID, &n.SenderID, &n.ThreadID, &n.IsRead, &n.CreatedAt,
			&n.ThreadName, &n.SenderName, &n.SenderEmail,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flips is_read on one notification.
func (r *Repo) MarkRead(ctx context.Context, id int64) error {
	const q = `UPDATE notifications SET is_read = true WHERE id = $1;`
	result, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
