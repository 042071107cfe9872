package api

import (
	"alcyxob/fitcoach/internal/access"
	"alcyxob/fitcoach/internal/domain"
	"alcyxob/fitcoach/internal/metrics"
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Constants for context keys
const (
	ContextCallerKey    = "caller"
	ContextRequestIDKey = "requestID"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDMaxLen = 64
)

// TokenParser resolves a bearer token to the caller it identifies.
type TokenParser interface {
	Authenticate(ctx context.Context, tokenString string) (*access.Caller, error)
}

// AuthMiddleware attaches the caller for a valid bearer token. Requests
// without an Authorization header continue anonymously and are rejected by
// RequireRoles; a malformed or invalid token is rejected here.
func AuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		caller, err := parser.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(ContextCallerKey, caller)
		c.Next()
	}
}

// RequireRoles rejects anonymous callers with 401 and callers outside
// allowedRoles with 403. Must run AFTER AuthMiddleware.
func RequireRoles(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := access.Authorize(callerFrom(c), allowedRoles...); err != nil {
			respondError(c, err)
			return
		}
		c.Next()
	}
}

// callerFrom returns the authenticated caller, or nil.
func callerFrom(c *gin.Context) *access.Caller {
	raw, exists := c.Get(ContextCallerKey)
	if !exists {
		return nil
	}
	caller, _ := raw.(*access.Caller)
	return caller
}

// RequestID reuses the client's X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		c.Set(ContextRequestIDKey, rid)
		c.Header(requestIDHeader, rid)
		c.Next()
	}
}

// Logger writes one structured access log line per request.
func Logger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("requestId", c.GetString(ContextRequestIDKey)),
		}
		if caller := callerFrom(c); caller != nil {
			fields = append(fields, zap.String("userId", caller.UserID.Hex()))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.ByType(gin.ErrorTypePrivate).String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("client error", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}

// Metrics counts requests and observes their duration per route template.
func Metrics(m *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		begin := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HistRequestDuration.WithLabelValues(route).Observe(time.Since(begin).Seconds())
		m.CounterRequests.With(prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}).Inc()
	}
}
