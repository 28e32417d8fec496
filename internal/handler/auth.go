package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workforce/internal/auth"
	"workforce/internal/user"
)

// Login verifies credentials and starts a cookie session.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	u, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respond(c, err, []errorCase{
			{user.ErrInvalidCredentials, http.StatusUnauthorized, "InvalidCredentials"},
		})
		return
	}

	token, exp, err := auth.Issue(u, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.TokenTTL)
	if err != nil {
		h.respond(c, err, nil)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(h.cfg.TokenTTL.Seconds()), "/", "", h.cfg.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Login successful",
		"token":     token,
		"expiresAt": exp.Unix(),
		"user":      u,
	})
}

// Logout clears the session cookie.
func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, "/", "", h.cfg.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated user, projection fields included.
func (h *Handler) Me(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	u, err := h.users.Get(c.Request.Context(), claims.UserID())
	if err != nil {
		h.respond(c, err, []errorCase{
			{user.ErrNotFound, http.StatusNotFound, "UserNotFound"},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}
