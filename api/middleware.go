package api

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/Domenick1991/airtech/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	headerRequestID = "X-Request-ID"

	ctxRequestID = "request_id"
	ctxUser      = "user"

	msgNoCredentials = "Authentication credentials were not provided."
)

// Authenticator resolves a token key to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, key string) (*domain.User, error)
}

// RequestLogger tags the request with an id and logs it once it completes.
func RequestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ctxRequestID, requestID)
		c.Header(headerRequestID, requestID)

		c.Next()

		entry := log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start),
			"client_ip":  c.ClientIP(),
		})
		if user := currentUser(c); user != nil {
			entry = entry.WithField("user_id", user.ID)
		}

		switch {
		case c.Writer.Status() >= 500:
			entry.WithField("errors", c.Errors.String()).Error("request failed")
		case c.Writer.Status() >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request processed")
		}
	}
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Authenticate accepts "Authorization: Bearer <key>" and the "Token <key>"
// form, and stores the resolved user on the context.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := tokenKey(c.GetHeader("Authorization"))
		if !ok {
			writeError(c, domain.AuthenticationFailed(msgNoCredentials))
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), key)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(ctxUser, user)
		c.Next()
	}
}

func RequireStaff() gin.HandlerFunc {
	return allow(func(u *domain.User) bool { return u.IsStaff })
}

// RequireSuperuser admits staff members who are also superusers.
func RequireSuperuser() gin.HandlerFunc {
	return allow(func(u *domain.User) bool { return u.IsStaff && u.IsSuperuser })
}

func allow(allowed func(*domain.User) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			writeError(c, domain.AuthenticationFailed(msgNoCredentials))
			return
		}
		if !allowed(user) {
			writeError(c, domain.PermissionDenied())
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	if v, ok := c.Get(ctxUser); ok {
		if user, ok := v.(*domain.User); ok {
			return user
		}
	}
	return nil
}

func tokenKey(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") && !strings.EqualFold(parts[0], "Token") {
		return "", false
	}
	return parts[1], true
}
