package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workforce/internal/daykey"
	"workforce/internal/report"
	"workforce/internal/task"
	"workforce/internal/user"
)

var userErrorCases = []errorCase{
	{user.ErrNotFound, http.StatusNotFound, "UserNotFound"},
	{user.ErrMissingFields, http.StatusBadRequest, "MissingFields"},
	{user.ErrInvalidEmail, http.StatusBadRequest, "InvalidEmail"},
	{user.ErrEmailTaken, http.StatusConflict, "EmailTaken"},
	{user.ErrNameTaken, http.StatusConflict, "NameTaken"},
}

// Overview serves the admin dashboard payload. Range defaults to the last
// seven days; dailyDate defaults to today.
func (h *Handler) Overview(c *gin.Context) {
	today := h.attendance.Today()

	from := daykey.Of(today.Start().AddDate(0, 0, -6))
	if raw := c.Query("from"); raw != "" {
		parsed, err := daykey.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "InvalidDate"})
			return
		}
		from = parsed
	}
	to := today
	if raw := c.Query("to"); raw != "" {
		parsed, err := daykey.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "InvalidDate"})
			return
		}
		to = parsed
	}
	daily := today
	if raw := c.Query("dailyDate"); raw != "" {
		parsed, err := daykey.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "InvalidDate"})
			return
		}
		daily = parsed
	}
	userID := c.Query("userId")
	if userID == "all" {
		userID = ""
	}

	ov, err := h.reports.Overview(c.Request.Context(), report.Query{
		From:      from,
		To:        to,
		UserID:    userID,
		DailyDate: daily,
	})
	if err != nil {
		h.respond(c, err, []errorCase{
			{report.ErrInvalidRange, http.StatusBadRequest, "InvalidRange"},
		})
		return
	}

	// Live gauge only makes sense for today; historical days come straight
	// from the ledger.
	if daily == today {
		ov.DailyOps.LiveActive = h.redis.ActiveCount(c.Request.Context(), daily)
	}

	c.JSON(http.StatusOK, ov)
}

// ListUsers returns every account.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.respond(c, err, nil)
		return
	}
	if users == nil {
		users = []user.User{}
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser provisions an account.
func (h *Handler) CreateUser(c *gin.Context) {
	var req struct {
		Name     string    `json:"name"`
		Email    string    `json:"email"`
		Password string    `json:"password"`
		Role     user.Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.users.Create(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		h.respond(c, err, userErrorCases)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// UpdateUser edits an account.
func (h *Handler) UpdateUser(c *gin.Context) {
	var req struct {
		Name     *string    `json:"name"`
		Email    *string    `json:"email"`
		Password *string    `json:"password"`
		Role     *user.Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.users.Update(c.Request.Context(), c.Param("id"), user.UpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.respond(c, err, userErrorCases)
		return
	}
	c.JSON(http.StatusOK, u)
}

// DeleteUser removes an account and everything cascading from it.
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respond(c, err, userErrorCases)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

// ListAllTasks returns every board, optionally scoped with ?userId=.
func (h *Handler) ListAllTasks(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "all" {
		userID = ""
	}
	tasks, err := h.tasks.List(c.Request.Context(), userID)
	if err != nil {
		h.respond(c, err, nil)
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// CreateTaskFor assigns a new task to the named user.
func (h *Handler) CreateTaskFor(c *gin.Context) {
	var req struct {
		UserID   string        `json:"userId"`
		Text     string        `json:"text"`
		Priority task.Priority `json:"priority"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "MissingUserID"})
		return
	}
	if _, err := h.users.Get(c.Request.Context(), req.UserID); err != nil {
		h.respond(c, err, userErrorCases)
		return
	}

	t, err := h.tasks.Create(c.Request.Context(), req.UserID, req.Text, req.Priority)
	if err != nil {
		h.respond(c, err, taskErrorCases)
		return
	}
	c.JSON(http.StatusCreated, t)
}
