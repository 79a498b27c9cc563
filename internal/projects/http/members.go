package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskverse/taskverse-backend/internal/api/http/respond"
	"github.com/taskverse/taskverse-backend/internal/projects/domain"
	"github.com/taskverse/taskverse-backend/internal/validate"
)

// projectFromPath resolves and existence-checks the :id path segment; a nil
// return means the response has already been written.
func (h *Handler) projectFromPath(c *gin.Context) (int64, bool) {
	id, ok := validate.Int(c.Param("id"))
	if !ok || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "Invalid project ID format")
		return 0, false
	}

	exists, err := h.repo.Exists(c.Request.Context(), id)
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

type memberReq struct {
	UserID   any     `json:"user_id"`
	Role     string  `json:"role"`
	JoinedAt *string `json:"joined_at"`
}

func (req *memberReq) userID() (int64, bool) {
	id, ok := validate.Int(req.UserID)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Handler) addMember(c *gin.Context) {
	projectID, ok := h.projectFromPath(c)
	if !ok {
		return
	}

	var req memberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if req.UserID == nil || req.Role == "" {
		respond.Error(c, http.StatusBadRequest, "Missing required fields: user_id and role")
		return
	}
	userID, ok := req.userID()
	if !ok {
		respond.Error(c, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	m, err := h.repo.AddMember(c.Request.Context(), projectID, userID, validate.Sanitize(req.Role), req.JoinedAt)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			respond.Error(c, http.StatusNotFound, "User not found")
		case errors.Is(err, domain.ErrConflict):
			respond.Error(c, http.StatusConflict, "User is already a member of this project")
		default:
			respond.Error(c, http.StatusInternalServerError, "Database operation failed. Please try again later.")
		}
		return
	}

	respond.Success(c, gin.H{
		"message": "Member added successfully",
		"member":  m,
	})
}

func (h *Handler) removeMember(c *gin.Context) {
	projectID, ok := h.projectFromPath(c)
	if !ok {
		return
	}

	var req memberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if req.UserID == nil {
		respond.Error(c, http.StatusBadRequest, "Missing user_id")
		return
	}
	userID, ok := req.userID()
	if !ok {
		respond.Error(c, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	if err := h.repo.RemoveMember(c.Request.Context(), projectID, userID); err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			respond.Error(c, http.StatusNotFound, "User is not a member of this project")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Database operation failed. Please try again later.")
		return
	}

	respond.Success(c, gin.H{
		"message":    "Member removed successfully",
		"project_id": projectID,
		"user_id":    userID,
	})
}

func (h *Handler) updateMemberRole(c *gin.Context) {
	projectID, ok := h.projectFromPath(c)
	if !ok {
		return
	}

	var req memberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if req.UserID == nil || req.Role == "" {
		respond.Error(c, http.StatusBadRequest, "Missing required fields: user_id and role")
		return
	}
	userID, ok := req.userID()
	if !ok {
		respond.Error(c, http.StatusBadRequest, "Invalid user ID format")
		return
	}

	role := validate.Sanitize(req.Role)
	if err := h.repo.UpdateMemberRole(c.Request.Context(), projectID, userID, role); err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			respond.Error(c, http.StatusNotFound, "User is not a member of this project")
			return
		}
		respond.Error(c, http.StatusInternalServerError, "Database operation failed. Please try again later.")
		return
	}

	respond.Success(c, gin.H{
		"message":    "Member role updated successfully",
		"project_id": projectID,
		"user_id":    userID,
		"role":       role,
	})
}
