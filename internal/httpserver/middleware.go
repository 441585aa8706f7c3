package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/SUHAIBCHEMBAN/autozen/internal/domain"
	"github.com/SUHAIBCHEMBAN/autozen/internal/metrics"
)

type contextKey string

const userCtxKey contextKey = "authenticatedUser"

// bearerToken extracts the credential from an "Authorization: Bearer <token>"
// header. Empty when the header is missing or has the wrong scheme.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// authMiddleware resolves the bearer token to a user and stores it on the
// request context. Requests without a valid token are rejected with 401.
func authMiddleware(auth AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		user, err := auth.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		ctx := context.WithValue(c.Request.Context(), userCtxKey, user)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// currentUser returns the user placed on the context by authMiddleware,
// or nil on unauthenticated routes.
func currentUser(c *gin.Context) *domain.User {
	user, _ := c.Request.Context().Value(userCtxKey).(*domain.User)
	return user
}

// staffOnly rejects authenticated requests from non-staff accounts.
// It must run after authMiddleware.
func staffOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff access required"})
			return
		}
		c.Next()
	}
}

// clientLimiter hands out one token bucket per client address. Entries live
// for the life of the process.
type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*rate.Limiter
	rps     rate.Limit
	burst   int
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	if rps <= 0 {
		rps = 1
	}
	if burst < 1 {
		burst = 5
	}
	return &clientLimiter{
		clients: make(map[string]*rate.Limiter),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

func (l *clientLimiter) allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.clients[addr]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.clients[addr] = lim
	}
	return lim.Allow()
}

// rateLimit rejects requests over the per-client budget with 429.
func rateLimit(l *clientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

// metricsMiddleware records a request count and latency observation per
// route template, so path parameters do not explode the label space.
func metricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.Requests.WithLabelValues(handler, status).Inc()
		m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	}
}
