package handler

import (
	"context"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"wedding-site/internal/domain"
	"wedding-site/internal/middleware"
	"wedding-site/internal/service"
)

const healthTimeout = 2 * time.Second

// HealthChecker is anything the health endpoint can ping
type HealthChecker interface {
	Health(ctx context.Context) error
}

type statsProvider interface {
	GetStats() map[string]interface{}
}

// Services groups the application services the API exposes
type Services struct {
	RateLimiter *service.RateLimiterService
	EditTokens  *service.EditTokenService
	RSVPs       *service.RSVPService
	Guestbook   *service.GuestbookService
	FAQs        *service.FAQService
	Settings    *service.SettingsService
	Auth        *service.AuthService
	Dashboard   *service.DashboardService
}

// Handlers holds the HTTP handlers of the API
type Handlers struct {
	services     Services
	database     HealthChecker
	storage      domain.RateLimiterStorage
	logger       domain.Logger
	startTime    time.Time
	secureCookie bool
}

// NewHandlers creates the handlers. secureCookie marks the session cookie
// as HTTPS only.
func NewHandlers(services Services, database HealthChecker, storage domain.RateLimiterStorage, logger domain.Logger, secureCookie bool) *Handlers {
	return &Handlers{
		services:     services,
		database:     database,
		storage:      storage,
		logger:       logger,
		startTime:    time.Now(),
		secureCookie: secureCookie,
	}
}

// SetupRoutes registers every route of the API on router
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.Use(middleware.RequestID())

	router.GET("/health", h.HealthHandler)
	router.GET("/metrics", h.MetricsHandler)

	api := router.Group("/api")
	{
		api.GET("/settings", h.PublicSettings)
		api.GET("/faqs", h.ListFAQs)

		api.POST("/rsvp", middleware.NewRateLimiterMiddleware(h.services.RateLimiter, domain.RSVPScope, h.logger), h.SubmitRSVP)
		api.GET("/rsvp/:token", h.GetRSVPByToken)
		api.PUT("/rsvp/:token", h.UpdateRSVPByToken)

		api.GET("/guestbook", h.ListGuestbook)
		api.POST("/guestbook", middleware.NewRateLimiterMiddleware(h.services.RateLimiter, domain.GuestbookScope, h.logger), h.SubmitGuestbook)

		api.POST("/auth/login", h.Login)
		api.POST("/auth/logout", h.Logout)
	}

	requireAdmin := middleware.RequireAdmin(h.services.Auth, service.SessionCookieName, h.logger)
	api.GET("/auth/me", requireAdmin, h.Me)

	admin := api.Group("/admin", requireAdmin)
	{
		admin.GET("/rsvps", h.AdminListRSVPs)
		admin.GET("/rsvps/:id", h.AdminGetRSVP)
		admin.DELETE("/rsvps/:id", h.AdminDeleteRSVP)
		admin.GET("/export-rsvps", h.AdminExportRSVPs)
		admin.GET("/stats", h.AdminStats)

		admin.GET("/guestbook", h.AdminListGuestbook)
		admin.PATCH("/guestbook/:id", h.AdminModerateGuestbook)
		admin.DELETE("/guestbook/:id", h.AdminDeleteGuestbook)

		admin.POST("/faqs", h.AdminCreateFAQ)
		admin.PATCH("/faqs/:id", h.AdminUpdateFAQ)
		admin.DELETE("/faqs/:id", h.AdminDeleteFAQ)

		admin.GET("/settings", h.AdminListSettings)
		admin.POST("/settings", h.AdminSaveSettings)

		admin.GET("/rate-limits/status", h.AdminRateLimitStatus)
		admin.POST("/rate-limits/reset", h.AdminRateLimitReset)
	}
}

// HealthHandler reports liveness and the state of the database and limiter store
func (h *Handlers) HealthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if err := h.database.Health(ctx); err != nil {
		healthy = false
		checks["database"] = err.Error()
		h.logger.WithContext(ctx).Error("Database health check failed", err, nil)
	} else {
		checks["database"] = "ok"
	}

	if err := h.storage.Health(ctx); err != nil {
		healthy = false
		checks["rate_limit_storage"] = err.Error()
		h.logger.WithContext(ctx).Error("Rate limit storage health check failed", err, nil)
	} else {
		checks["rate_limit_storage"] = "ok"
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"service":   "wedding-site",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// MetricsHandler exposes runtime figures and the limiter configuration
func (h *Handlers) MetricsHandler(c *gin.Context) {
	uptime := time.Since(h.startTime)

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := gin.H{
		"service":        "wedding-site",
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"uptime":         uptime.String(),
		"uptime_seconds": int64(uptime.Seconds()),
		"system": gin.H{
			"go_version":   runtime.Version(),
			"goroutines":   runtime.NumGoroutine(),
			"memory_alloc": formatBytes(m.Alloc),
			"memory_total": formatBytes(m.TotalAlloc),
			"memory_sys":   formatBytes(m.Sys),
			"gc_runs":      m.NumGC,
		},
		"rate_limits": h.services.RateLimiter.Rules(),
	}

	if stats, ok := h.storage.(statsProvider); ok {
		response["storage"] = stats.GetStats()
	}

	c.JSON(http.StatusOK, response)
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return strconv.FormatUint(bytes, 10) + " B"
	}

	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return strconv.FormatFloat(float64(bytes)/float64(div), 'f', 1, 64) + " " + "KMGTPE"[exp:exp+1] + "B"
}
