package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"wedding-site/internal/domain"
)

// TooManyRequestsMessage is returned with every 429
const TooManyRequestsMessage = "Demasiadas solicitudes. Por favor, intenta más tarde."

const checkTimeout = 5 * time.Second

// RateLimiterMiddleware guards one scope of public endpoints
type RateLimiterMiddleware struct {
	service domain.RateLimiterService
	scope   domain.RateLimitScope
	logger  domain.Logger
	now     func() time.Time
}

// NewRateLimiterMiddleware returns a handler limiting requests of scope per client IP
func NewRateLimiterMiddleware(service domain.RateLimiterService, scope domain.RateLimitScope, logger domain.Logger) gin.HandlerFunc {
	m := &RateLimiterMiddleware{
		service: service,
		scope:   scope,
		logger:  logger,
		now:     time.Now,
	}
	return m.Handle
}

func (m *RateLimiterMiddleware) Handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	log := m.logger.WithContext(ctx)
	clientIP := ClientIP(c)

	result, err := m.service.Check(ctx, m.scope, clientIP)
	if err != nil {
		log.Error("Rate limiter service error", err, map[string]interface{}{
			"client_ip": clientIP,
			"scope":     m.scope,
			"path":      c.Request.URL.Path,
		})
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "Error al procesar la solicitud",
		})
		return
	}

	m.setRateLimitHeaders(c, result)

	logDecision(log, m.scope, clientIP, result, c.Request.URL.Path)

	if !result.Allowed {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":   "rate_limit_exceeded",
			"message": TooManyRequestsMessage,
			"details": gin.H{
				"limit":      result.Limit,
				"remaining":  result.Remaining,
				"reset_time": result.ResetAt.Unix(),
				"scope":      m.scope,
			},
		})
		return
	}

	c.Next()
}

type rateLimitEventLogger interface {
	LogRateLimitEvent(scope domain.RateLimitScope, identifier string, result *domain.RateLimitResult, fields map[string]interface{})
}

func logDecision(log domain.Logger, scope domain.RateLimitScope, clientIP string, result *domain.RateLimitResult, path string) {
	if events, ok := log.(rateLimitEventLogger); ok {
		events.LogRateLimitEvent(scope, clientIP, result, map[string]interface{}{"path": path})
		return
	}
	if !result.Allowed {
		log.Info("Request rate limited", map[string]interface{}{
			"client_ip": clientIP,
			"scope":     scope,
			"limit":     result.Limit,
			"reset_at":  result.ResetAt,
			"path":      path,
		})
	}
}

func (m *RateLimiterMiddleware) setRateLimitHeaders(c *gin.Context, result *domain.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	c.Header("X-RateLimit-Scope", string(m.scope))

	if !result.Allowed {
		retryAfter := int(result.ResetAt.Sub(m.now()).Seconds())
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
	}
}
