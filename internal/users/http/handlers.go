package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskverse/taskverse-backend/internal/api/http/respond"
	"github.com/taskverse/taskverse-backend/internal/users/domain"
	"github.com/taskverse/taskverse-backend/internal/users/repository"
	"github.com/taskverse/taskverse-backend/internal/validate"
)

// Handler bundles the dependencies for user HTTP endpoints.
type Handler struct {
	repo *repository.Repo
	log  *zap.Logger
}

func New(repo *repository.Repo, log *zap.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

// Register attaches user routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("", h.create)
	rg.PUT("/:id", h.update)
	rg.DELETE("", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	if rawID, ok := c.GetQuery("id"); ok {
		id, ok := validate.Int(rawID)
		if !ok || id <= 0 {
			respond.Error(c, http.StatusBadRequest, "Invalid user ID format")
			return
		}

		u, err := h.repo.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				respond.Success(c, nil)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "Database operation failed. Please try again later.")
			return
		}
		respond.Success(c, u)
		return
	}

	items, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.log.Error("list users", zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "Database operation failed. Please try again later.")
		return
	}
	respond.Success(c, items)
}

func (h *Handler) create(c *gin.Context) {
	var data map[string]any
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	coerced, errs := validate.Validate(data, validate.Rules{
		"name":     "required|string",
		"email":    "required|email",
		"password": "required",
		"avatar":   "string",
	})
	if len(errs) > 0 {
		respond.Error(c, http.StatusUnprocessableEntity, "Validation failed: "+strings.Join(errs, ", "))
		return
	}

	password, _ := data["password"].(string)
	if password == "" {
		respond.Error(c, http.StatusUnprocessableEntity, "Validation failed: password is required")
		return
	}

	var avatar *string
	if v, ok := coerced["avatar"].(string); ok && v != "" {
		avatar = &v
	}

	email, _ := data["email"].(string)
	u, err := h.repo.Create(c.Request.Context(), coerced["name"].(string), email, password, avatar)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Database error during user creation")
		return
	}
	respond.Success(c, u)
}

type updateUserReq struct {
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

func (h *Handler) update(c *gin.Context) {
	id, ok := validate.Int(c.Param("id"))
	if !ok || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	var req updateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respond.Error(c, http.StatusUnprocessableEntity, "Validation failed: name is required")
		return
	}

	u, err := h.repo.UpdateProfile(c.Request.Context(), id, validate.Sanitize(req.Name), req.Avatar)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "User not found")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Database error during user update")
		return
	}
	respond.Success(c, u)
}

func (h *Handler) remove(c *gin.Context) {
	var data map[string]any
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	id, ok := validate.Int(data["id"])
	if !ok || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "User not found")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Database error during user deletion")
		return
	}
	respond.Success(c, gin.H{"message": "User deleted successfully"})
}
