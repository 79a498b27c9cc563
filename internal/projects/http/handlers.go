package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskverse/taskverse-backend/internal/api/http/respond"
	"github.com/taskverse/taskverse-backend/internal/projects/domain"
	"github.com/taskverse/taskverse-backend/internal/projects/repository"
	"github.com/taskverse/taskverse-backend/internal/validate"
)

func (h *Handler) list(c *gin.Context) {
	// Single project when ?id= is supplied.
	if rawID, ok := c.GetQuery("id"); ok {
		id, ok := validate.Int(rawID)
		if !ok || id <= 0 {
			respond.Error(c, http.StatusBadRequest, "Invalid project ID format")
			return
		}

		p, err := h.repo.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Missing single project reads as a success with null data.
				respond.Success(c, nil)
				return
			}
			respond.Error(c, http.StatusInternalServerError, "Database operation failed. Please try again later.")
			return
		}
		respond.Success(c, p)
		return
	}

	var userID *int64
	if raw, ok := c.GetQuery("user_id"); ok {
		if id, ok := validate.Int(raw); ok && id > 0 {
			userID = &id
		}
	}

	items, err := h.repo.List(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("list projects", zap.Error(err))
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
		"name":        "required|string",
		"creator_id":  "required|int",
		"description": "string",
		"status":      "string",
		"created_at":  "required|string",
		"updated_at":  "required|string",
	})
	if len(errs) > 0 {
		respond.Error(c, http.StatusUnprocessableEntity, "Validation failed: "+strings.Join(errs, ", "))
		return
	}

	in := repository.CreateInput{
		Name:      coerced["name"].(string),
		CreatorID: coerced["creator_id"].(int64),
		CreatedAt: coerced["created_at"].(string),
		UpdatedAt: coerced["updated_at"].(string),
	}
	if desc, ok := coerced["description"].(string); ok {
		in.Description = &desc
	}
	if status, ok := coerced["status"].(string); ok {
		in.Status = status
	}

	// Extra member ids: invalid entries are skipped, roles default to
	// "member" unless the per-member role map says otherwise.
	if rawIDs, ok := data["member_ids"].([]any); ok {
		for _, raw := range rawIDs {
			id, ok := validate.Int(raw)
			if !ok {
				continue
			}
			in.MemberIDs = append(in.MemberIDs, id)
		}
	}
	if rawRoles, ok := data["member_roles"].(map[string]any); ok {
		in.MemberRoles = make(map[int64]string, len(rawRoles))
		for key, raw := range rawRoles {
			id, ok := validate.Int(key)
			if !ok {
				continue
			}
			if role, ok := raw.(string); ok {
				in.MemberRoles[id] = validate.Sanitize(role)
			}
		}
	}

	p, err := h.repo.Create(c.Request.Context(), in)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Database error during project creation")
		return
	}

	respond.Success(c, gin.H{
		"message":    "Project created successfully",
		"project_id": p.ID,
		"project":    p,
	})
}

func (h *Handler) update(c *gin.Context) {
	var data map[string]any
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if _, ok := data["id"]; !ok {
		respond.Error(c, http.StatusBadRequest, "Missing project ID")
		return
	}

	coerced, errs := validate.Validate(data, validate.Rules{
		"id":           "required|int",
		"name":         "string",
		"description":  "string",
		"status":       "string",
		"task_count":   "int",
		"thread_count": "int",
	})
	if len(errs) > 0 {
		respond.Error(c, http.StatusUnprocessableEntity, "Validation failed: "+strings.Join(errs, ", "))
		return
	}

	var in repository.UpdateInput
	if v, ok := coerced["name"].(string); ok {
		in.Name = &v
	}
	if v, ok := coerced["description"].(string); ok {
		in.Description = &v
	}
	if v, ok := coerced["status"].(string); ok {
		in.Status = &v
	}
	if v, ok := coerced["task_count"].(int64); ok {
		count := int(v)
		in.TaskCount = &count
	}
	if v, ok := coerced["thread_count"].(int64); ok {
		count := int(v)
		in.ThreadCount = &count
	}

	p, err := h.repo.Update(c.Request.Context(), coerced["id"].(int64), in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "Project not found")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Database error during project update")
		return
	}

	respond.Success(c, gin.H{
		"message": "Project updated successfully",
		"project": p,
	})
}

func (h *Handler) remove(c *gin.Context) {
	var data map[string]any
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	raw, ok := data["id"]
	if !ok {
		respond.Error(c, http.StatusBadRequest, "Missing project ID")
		return
	}
	id, ok := validate.Int(raw)
	if !ok || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "Project not found")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Error deleting project")
		return
	}

	respond.Success(c, gin.H{
		"message":    "Project and related data deleted successfully",
		"project_id": id,
	})
}
