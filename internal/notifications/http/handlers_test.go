package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskverse/taskverse-backend/internal/notifications/repository"
)

func setupHandler(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(repository.NewRepo(db, zap.NewNop()), zap.NewNop())
	h.Register(r.Group("/api/v1/notifications"))
	return r, mock
}

func doJSON(r *gin.Engine, method, path string, payload any) (*httptest.ResponseRecorder, map[string]any) {
	var buf bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&buf).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestListNotifications(t *testing.T) {
	r, mock := setupHandler(t)

	t.Run("requires a user id", func(t *testing.T) {
		w, body := doJSON(r, http.MethodGet, "/api/v1/notifications", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "User ID is required", body["message"])
	})

	t.Run("lists for a user", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`FROM notifications n`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "sender_id", "thread_id", "is_read", "created_at",
				"thread_name", "sender_name", "sender_email",
			}).AddRow(int64(1), int64(7), int64(8), int64(3), false, now, "Release planning", "Dana", "dana@example.com"))

		w, body := doJSON(r, http.MethodGet, "/api/v1/notifications?user_id=7", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		items := body["data"].([]any)
		require.Len(t, items, 1)
		first := items[0].(map[string]any)
		assert.Equal(t, "Release planning", first["thread_name"])
		assert.Equal(t, "Dana", first["sender_name"])
	})

	t.Run("unread filter flows through", func(t *testing.T) {
		mock.ExpectQuery(`AND n.is_read = false`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "sender_id", "thread_id", "is_read", "created_at",
				"thread_name", "sender_name", "sender_email",
			}))

		w, body := doJSON(r, http.MethodGet, "/api/v1/notifications?user_id=7&unread_only=1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, body["data"])
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRead(t *testing.T) {
	r, mock := setupHandler(t)

	t.Run("requires a notification id", func(t *testing.T) {
		w, body := doJSON(r, http.MethodPut, "/api/v1/notifications", gin.H{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Notification ID is required", body["message"])
	})

	t.Run("marks as read", func(t *testing.T) {
		mock.ExpectExec(`UPDATE notifications SET is_read = true`).
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		w, body := doJSON(r, http.MethodPut, "/api/v1/notifications", gin.H{"notification_id": 1})

		assert.Equal(t, http.StatusOK, w.Code)
		data := body["data"].(map[string]any)
		assert.Equal(t, "Notification marked as read", data["message"])
	})

	t.Run("missing notification", func(t *testing.T) {
		mock.ExpectExec(`UPDATE notifications SET is_read = true`).
			WithArgs(int64(999)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		w, body := doJSON(r, http.MethodPut, "/api/v1/notifications", gin.H{"notification_id": 999})

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Notification not found", body["message"])
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
