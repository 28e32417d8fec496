package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"workforce/internal/attendance"
	"workforce/internal/auth"
	"workforce/internal/difficulty"
	"workforce/internal/queue"
)

// CheckIn opens today's attendance record for the caller.
func (h *Handler) CheckIn(c *gin.Context) {
	claims, _ := auth.FromContext(c)

	rec, err := h.attendance.CheckIn(c.Request.Context(), claims.UserID())
	if err != nil {
		h.respond(c, err, []errorCase{
			{attendance.ErrAlreadyCheckedIn, http.StatusBadRequest, "AlreadyCheckedInToday"},
		})
		return
	}

	h.publishEvent(c.Request.Context(), "checkin", rec)
	c.JSON(http.StatusOK, gin.H{"message": "Checked in", "record": rec})
}

// CheckOut closes today's open attendance record for the caller.
func (h *Handler) CheckOut(c *gin.Context) {
	claims, _ := auth.FromContext(c)

	rec, err := h.attendance.CheckOut(c.Request.Context(), claims.UserID())
	if err != nil {
		h.respond(c, err, []errorCase{
			{attendance.ErrNotCheckedIn, http.StatusBadRequest, "NotCheckedInToday"},
			{attendance.ErrAlreadyCheckedOut, http.StatusBadRequest, "AlreadyCheckedOutToday"},
		})
		return
	}

	h.publishEvent(c.Request.Context(), "checkout", rec)
	c.JSON(http.StatusOK, gin.H{"message": "Checked out", "record": rec})
}

// CheckStatus reports today's state, derived from the ledger. An anonymous
// caller gets both flags false instead of a 401.
func (h *Handler) CheckStatus(c *gin.Context) {
	claims, ok := auth.FromContext(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"checkedIn": false, "checkedOut": false})
		return
	}

	status, _, err := h.attendance.CurrentStatus(c.Request.Context(), claims.UserID())
	if err != nil {
		h.respond(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"checkedIn":  status != attendance.StatusAbsent,
		"checkedOut": status == attendance.StatusCheckedOut,
	})
}

// AddDifficulty appends a free-text note for today.
func (h *Handler) AddDifficulty(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.difficulties.Add(c.Request.Context(), claims.UserID(), h.attendance.Today(), req.Text)
	if err != nil {
		h.respond(c, err, []errorCase{
			{difficulty.ErrEmptyText, http.StatusBadRequest, "EmptyText"},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Saved", "entry": entry})
}

// publishEvent hands the transition to the queue; a publish failure is
// logged and never fails the request that already committed.
func (h *Handler) publishEvent(ctx context.Context, kind string, rec attendance.Record) {
	if h.queue == nil {
		return
	}
	at := rec.CheckInTime
	if kind == "checkout" && rec.CheckOutTime != nil {
		at = *rec.CheckOutTime
	}
	body, err := json.Marshal(attendance.Event{Kind: kind, UserID: rec.UserID, Day: rec.Day, At: at})
	if err != nil {
		return
	}
	if err := h.queue.Publish(ctx, queue.Message{Kind: kind, Body: body}); err != nil {
		h.log.Warn("queue publish failed", zap.String("kind", kind), zap.Error(err))
	}
}
