package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskverse/taskverse-backend/internal/api/http/respond"
	"github.com/taskverse/taskverse-backend/internal/notifications/domain"
	"github.com/taskverse/taskverse-backend/internal/notifications/repository"
	"github.com/taskverse/taskverse-backend/internal/validate"
)

// Handler bundles the dependencies for notification HTTP endpoints.
type Handler struct {
	repo *repository.Repo
	log  *zap.Logger
}

func New(repo *repository.Repo, log *zap.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

// Register attaches notification routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.PUT("", h.markRead)
}

func (h *Handler) list(c *gin.Context) {
	rawID, ok := c.GetQuery("user_id")
	if !ok {
		respond.Error(c, http.StatusBadRequest, "User ID is required")
		return
	}
	userID, ok := validate.Int(rawID)
	if !ok || userID <= 0 {
		respond.Error(c, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	_, unreadOnly := c.GetQuery("unread_only")

	items, err := h.repo.ListByUser(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		h.log.Error("list notifications", zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "Database operation failed. Please try again later.")
		return
	}
	respond.Success(c, items)
}

type markReadReq struct {
	NotificationID any `json:"notification_id"`
}

func (h *Handler) markRead(c *gin.Context) {
	var req markReadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if req.NotificationID == nil {
		respond.Error(c, http.StatusBadRequest, "Notification ID is required")
		return
	}

	id, ok := validate.Int(req.NotificationID)
	if !ok || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "Invalid notification ID format")
		return
	}

	if err := h.repo.MarkRead(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "Notification not found")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Database operation failed. Please try again later.")
		return
	}
	respond.Success(c, gin.H{"message": "Notification marked as read"})
}
