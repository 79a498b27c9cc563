package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskverse/taskverse-backend/internal/notifications/domain"
)

func setupRepo(t *testing.T) (*Repo, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewRepo(db, zap.NewNop())
	return repo, mock, db
}

var notificationColumns = []string{
	"id", "user_id", "sender_id", "thread_id", "is_read", "created_at",
	"thread_name", "sender_name", "sender_email",
}

func TestRepo_ListByUser(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	t.Run("returns enriched rows", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`FROM notifications n`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(notificationColumns).
				AddRow(int64(1), int64(7), int64(8), int64(3), false, now, "Release planning", "Dana", "dana@example.com").
				AddRow(int64(2), int64(7), int64(9), int64(3), true, now, "Release planning", "Eli", "eli@example.com"))

		items, err := repo.ListByUser(context.Background(), 7, false)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "Release planning", items[0].ThreadName)
		assert.Equal(t, "Dana", items[0].SenderName)
		assert.True(t, items[1].IsRead)
	})

	t.Run("unread filter narrows the query", func(t *testing.T) {
		mock.ExpectQuery(`AND n.is_read = false`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(notificationColumns))

		items, err := repo.ListByUser(context.Background(), 7, true)
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_MarkRead(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	t.Run("marks an existing notification", func(t *testing.T) {
		mock.ExpectExec(`UPDATE notifications SET is_read = true`).
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.MarkRead(context.Background(), 1))
	})

	t.Run("missing notification", func(t *testing.T) {
		mock.ExpectExec(`UPDATE notifications SET is_read = true`).
			WithArgs(int64(999)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkRead(context.Background(), 999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
