package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workforce/internal/auth"
	"workforce/internal/task"
	"workforce/internal/user"
)

var taskErrorCases = []errorCase{
	{task.ErrNotFound, http.StatusNotFound, "TaskNotFound"},
	{task.ErrEmptyText, http.StatusBadRequest, "MissingText"},
	{task.ErrInvalidStatus, http.StatusBadRequest, "InvalidStatus"},
	{task.ErrInvalidPriority, http.StatusBadRequest, "InvalidPriority"},
}

// ListTodos returns the caller's board, newest first.
func (h *Handler) ListTodos(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	tasks, err := h.tasks.List(c.Request.Context(), claims.UserID())
	if err != nil {
		h.respond(c, err, nil)
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// CreateTodo adds a task to the caller's board.
func (h *Handler) CreateTodo(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	var req struct {
		Text     string        `json:"text"`
		Priority task.Priority `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.tasks.Create(c.Request.Context(), claims.UserID(), req.Text, req.Priority)
	if err != nil {
		h.respond(c, err, taskErrorCases)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// UpdateTodo edits a task on the caller's board. Admins may edit any board.
func (h *Handler) UpdateTodo(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	id := c.Param("id")

	existing, err := h.tasks.Get(c.Request.Context(), id)
	if err != nil {
		h.respond(c, err, taskErrorCases)
		return
	}
	if existing.UserID != claims.UserID() && claims.Role != user.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	var req struct {
		Text     *string        `json:"text"`
		Status   *task.Status   `json:"status"`
		Priority *task.Priority `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.tasks.Update(c.Request.Context(), id, task.UpdateInput{
		Text:     req.Text,
		Status:   req.Status,
		Priority: req.Priority,
	})
	if err != nil {
		h.respond(c, err, taskErrorCases)
		return
	}
	c.JSON(http.StatusOK, t)
}

// DeleteTodo removes a task from the caller's board. Admins may delete any.
func (h *Handler) DeleteTodo(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	id := c.Param("id")

	existing, err := h.tasks.Get(c.Request.Context(), id)
	if err != nil {
		h.respond(c, err, taskErrorCases)
		return
	}
	if existing.UserID != claims.UserID() && claims.Role != user.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), id); err != nil {
		h.respond(c, err, taskErrorCases)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}
