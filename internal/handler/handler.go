// Package handler exposes the HTTP surface over gin.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"workforce/internal/attendance"
	"workforce/internal/auth"
	"workforce/internal/config"
	"workforce/internal/difficulty"
	"workforce/internal/httpmiddleware"
	"workforce/internal/queue"
	"workforce/internal/report"
	"workforce/internal/store"
	"workforce/internal/task"
	"workforce/internal/user"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	cfg          config.App
	log          *zap.Logger
	users        *user.Service
	attendance   *attendance.Service
	tasks        *task.Service
	difficulties *difficulty.Repository
	reports      *report.Aggregator
	queue        queue.Queue
	db           *store.DB
	redis        *store.Redis
}

// New creates the handler set.
func New(cfg config.App, log *zap.Logger, users *user.Service, att *attendance.Service,
	tasks *task.Service, difficulties *difficulty.Repository, reports *report.Aggregator,
	q queue.Queue, db *store.DB, rds *store.Redis) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		cfg:          cfg,
		log:          log,
		users:        users,
		attendance:   att,
		tasks:        tasks,
		difficulties: difficulties,
		reports:      reports,
		queue:        q,
		db:           db,
		redis:        rds,
	}
}

// Register mounts every route on the engine.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)

	api.GET("/check-status", auth.Optional(h.cfg.JWTSigningKey, h.cfg.JWTIssuer), h.CheckStatus)

	authed := api.Group("", auth.Required(h.cfg.JWTSigningKey, h.cfg.JWTIssuer))
	authed.GET("/auth/me", h.Me)
	authed.POST("/checkin", h.CheckIn)
	authed.POST("/checkout", h.CheckOut)
	authed.POST("/difficulties", h.AddDifficulty)
	authed.GET("/todos", h.ListTodos)
	authed.POST("/todos", h.CreateTodo)
	authed.PATCH("/todos/:id", h.UpdateTodo)
	authed.DELETE("/todos/:id", h.DeleteTodo)

	admin := authed.Group("/admin", auth.AdminOnly())
	admin.GET("/overview", h.Overview)
	admin.GET("/users", h.ListUsers)
	admin.POST("/users", h.CreateUser)
	admin.PUT("/users/:id", h.UpdateUser)
	admin.DELETE("/users/:id", h.DeleteUser)
	admin.GET("/tasks", h.ListAllTasks)
	admin.POST("/tasks", h.CreateTaskFor)
}

// Healthz reports db and redis connectivity.
func (h *Handler) Healthz(c *gin.Context) {
	redisHealthy := h.redis.Healthy(c.Request.Context())
	dbHealthy := h.db != nil && h.db.Client != nil && h.db.Client.PingContext(c.Request.Context()) == nil
	status := http.StatusOK
	if !redisHealthy || !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
}

// Middleware assembles the shared chain in the order the server mounts it.
func Middleware(log *zap.Logger, limiter httpmiddleware.Limiter) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		gin.Recovery(),
		httpmiddleware.RequestLogger(log, "/healthz", "/metrics"),
		httpmiddleware.Metrics(),
		httpmiddleware.CORS(),
		httpmiddleware.SecurityHeaders(),
		limiter.GinMiddleware(),
	}
}
