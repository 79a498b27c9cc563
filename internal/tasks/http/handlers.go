package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskverse/taskverse-backend/internal/api/http/respond"
	"github.com/taskverse/taskverse-backend/internal/tasks/domain"
	"github.com/taskverse/taskverse-backend/internal/tasks/repository"
	"github.com/taskverse/taskverse-backend/internal/validate"
)

const dueDateLayout = "2006-01-02"

func (h *Handler) list(c *gin.Context) {
	projectID, ok := h.projectFromPath(c)
	if !ok {
		return
	}

	items, err := h.repo.List(c.Request.Context(), projectID)
	if err != nil {
		h.log.Error("list tasks", zap.Error(err))
		respond.Error(c, http.StatusInternalServerError, "Database operation failed. Please try again later.")
		return
	}
	respond.Success(c, items)
}

func (h *Handler) get(c *gin.Context) {
	projectID, ok := h.projectFromPath(c)
	if !ok {
		return
	}
	taskID, ok := h.taskFromPath(c)
	if !ok {
		return
	}

	t, err := h.repo.GetByID(c.Request.Context(), projectID, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "Task not found")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Database operation failed. Please try again later.")
		return
	}
	respond.Success(c, t)
}

func (h *Handler) create(c *gin.Context) {
	projectID, ok := h.projectFromPath(c)
	if !ok {
		return
	}

	var data map[string]any
	if err := c.ShouldBindJSON(&data); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	coerced, errs := validate.Validate(data, validate.Rules{
		"title":        "required|string",
		"description":  "string",
		"due_date":     "string",
		"is_completed": "boolean",
		"assignee_ids": "array",
	})
	if len(errs) > 0 {
		respond.Error(c, http.StatusBadRequest, "Validation failed: "+strings.Join(errs, ", "))
		return
	}

	in := repository.CreateInput{Title: coerced["title"].(string)}
	if desc, ok := coerced["description"].(string); ok {
		in.Description = &desc
	}
	if due, ok := coerced["due_date"].(string); ok && due != "" {
		if _, err := time.Parse(dueDateLayout, due); err != nil {
			respond.Error(c, http.StatusBadRequest, "Invalid due date format. Use YYYY-MM-DD")
			return
		}
		in.DueDate = &due
	}
	if completed, ok := data["is_completed"].(bool); ok {
		in.IsCompleted = completed
	}

	ids, ok := assigneeIDs(data["assignee_ids"])
	if !ok {
		respond.Error(c, http.StatusBadRequest, "assignee_ids must be an array of integers")
		return
	}
	in.AssigneeIDs = ids

	t, err := h.repo.Create(c.Request.Context(), projectID, in)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Database error during task creation")
		return
	}
	respond.Success(c, t)
}

type updateTaskReq struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	DueDate     *string  `json:"due_date"`
	IsCompleted *bool    `json:"is_completed"`
	AssigneeIDs *[]int64 `json:"assignee_ids"`
}

func (h *Handler) update(c *gin.Context) {
	projectID, ok := h.projectFromPath(c)
	if !ok {
		return
	}
	taskID, ok := h.taskFromPath(c)
	if !ok {
		return
	}

	var req updateTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	in := repository.UpdateInput{
		IsCompleted: req.IsCompleted,
		AssigneeIDs: req.AssigneeIDs,
	}
	if req.Title != nil {
		title := validate.Sanitize(*req.Title)
		in.Title = &title
	}
	if req.Description != nil {
		desc := validate.Sanitize(*req.Description)
		in.Description = &desc
	}
	if req.DueDate != nil {
		if *req.DueDate != "" {
			if _, err := time.Parse(dueDateLayout, *req.DueDate); err != nil {
				respond.Error(c, http.StatusBadRequest, "Invalid due date format. Use YYYY-MM-DD")
				return
			}
		}
		in.DueDate = req.DueDate
	}

	t, err := h.repo.Update(c.Request.Context(), projectID, taskID, in)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "Task not found or does not belong to the project")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Database error during task update")
		return
	}
	respond.Success(c, t)
}

func (h *Handler) remove(c *gin.Context) {
	projectID, ok := h.projectFromPath(c)
	if !ok {
		return
	}
	taskID, ok := h.taskFromPath(c)
	if !ok {
		return
	}

	if err := h.repo.Delete(c.Request.Context(), projectID, taskID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "Task not found or does not belong to the project")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Error deleting task")
		return
	}
	respond.Success(c, gin.H{"message": "Task deleted successfully"})
}

// assigneeIDs range-checks a decoded assignee_ids value: absent is fine,
// anything present must be an array of integers.
func assigneeIDs(raw any) ([]int64, bool) {
	if raw == nil {
		return nil, true
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, false
	}

	ids := make([]int64, 0, len(list))
	for _, v := range list {
		id, ok := validate.Int(v)
		if !ok {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}
