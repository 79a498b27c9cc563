package http

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskverse/taskverse-backend/internal/users/repository"
)

func setupHandler(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(repository.NewRepo(db, zap.NewNop()), zap.NewNop())
	h.Register(r.Group("/api/v1/users"))
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

func TestCreateUser(t *testing.T) {
	r, mock := setupHandler(t)

	t.Run("rejects a bad email", func(t *testing.T) {
		w, body := doJSON(r, http.MethodPost, "/api/v1/users", gin.H{
			"name":     "Dana",
			"email":    "not-an-email",
			"password": "s3cret",
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, body["message"], "email must be a valid email")
	})

	t.Run("creates a user without exposing the password", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "avatar"}).
				AddRow(int64(8), "Dana", "dana@example.com", nil))

		w, body := doJSON(r, http.MethodPost, "/api/v1/users", gin.H{
			"name":     "Dana",
			"email":    "dana@example.com",
			"password": "s3cret",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		data := body["data"].(map[string]any)
		assert.Equal(t, "Dana", data["name"])
		_, present := data["password"]
		assert.False(t, present)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser(t *testing.T) {
	r, mock := setupHandler(t)

	t.Run("requires a name", func(t *testing.T) {
		w, body := doJSON(r, http.MethodPut, "/api/v1/users/8", gin.H{"name": "  "})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "Validation failed: name is required", body["message"])
	})

	t.Run("missing user", func(t *testing.T) {
		mock.ExpectQuery(`UPDATE users SET name`).
			WithArgs("Dana", nil, int64(999)).
			WillReturnError(sql.ErrNoRows)

		w, body := doJSON(r, http.MethodPut, "/api/v1/users/999", gin.H{"name": "Dana"})

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "User not found", body["message"])
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsers_SingleMissingReadsAsNull(t *testing.T) {
	r, mock := setupHandler(t)

	mock.ExpectQuery(`SELECT id, name, email, avatar FROM users`).
		WithArgs(int64(999)).
		WillReturnError(sql.ErrNoRows)

	w, body := doJSON(r, http.MethodGet, "/api/v1/users?id=999", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data, present := body["data"]
	assert.True(t, present)
	assert.Nil(t, data)
	require.NoError(t, mock.ExpectationsWereMet())
}
