package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errorCase maps a sentinel error to an HTTP status and the error code the
// client sees.
type errorCase struct {
	err    error
	status int
	code   string
}

// respond resolves err against the known cases; anything unmatched is an
// infrastructure failure, logged and answered with a 500.
func (h *Handler) respond(c *gin.Context, err error, cases []errorCase) {
	for _, cs := range cases {
		if errors.Is(err, cs.err) {
			c.JSON(cs.status, gin.H{"error": cs.code})
			return
		}
	}
	h.log.Error("request failed",
		zap.String("route", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
}
