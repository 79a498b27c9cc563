package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskverse/taskverse-backend/internal/projects/repository"
)

// Handler bundles the dependencies for project HTTP endpoints.
type Handler struct {
	repo *repository.Repo
	log  *zap.Logger
}

func New(repo *repository.Repo, log *zap.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

// Register attaches project and membership routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.PUT("", h.update)
	rg.DELETE("", h.remove)

	rg.POST("/:id/members", h.addMember)
	rg.PUT("/:id/members", h.updateMemberRole)
	rg.DELETE("/:id/members", h.removeMember)
}
