package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskverse/taskverse-backend/internal/api/http/respond"
	"github.com/taskverse/taskverse-backend/internal/tasks/repository"
	"github.com/taskverse/taskverse-backend/internal/validate"
)

// ProjectChecker reports whether a project id exists; the projects
// repository satisfies it.
type ProjectChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Handler bundles the dependencies for task HTTP endpoints.
type Handler struct {
	repo     *repository.Repo
	projects ProjectChecker
	log      *zap.Logger
}

func New(repo *repository.Repo, projects ProjectChecker, log *zap.Logger) *Handler {
	return &Handler{repo: repo, projects: projects, log: log}
}

// Register attaches task routes under the projects group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/:id/tasks", h.list)
	rg.GET("/:id/tasks/detail/:taskId", h.get)
	rg.POST("/:id/tasks", h.create)
	rg.PUT("/:id/tasks/:taskId", h.update)
	rg.DELETE("/:id/tasks/:taskId", h.remove)
}

// projectFromPath resolves and existence-checks the :id path segment; a
// false return means the response has already been written.
func (h *Handler) projectFromPath(c *gin.Context) (int64, bool) {
	id, ok := validate.Int(c.Param("id"))
	if !ok || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "Project ID is required")
		return 0, false
	}

	exists, err := h.projects.Exists(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Database operation failed. Please try again later.")
		return 0, false
	}
	if !exists {
		respond.Error(c, http.StatusNotFound, "Project not found")
		return 0, false
	}
	return id, true
}

func (h *Handler) taskFromPath(c *gin.Context) (int64, bool) {
	id, ok := validate.Int(c.Param("taskId"))
	if !ok || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "Task ID is required")
		return 0, false
	}
	return id, true
}
