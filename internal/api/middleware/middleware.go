package middleware

import (
	"io"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nexconsult/docsync/internal/config"
	"github.com/nexconsult/docsync/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	// RequestIDHeader carries the correlation id in both directions
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the gin context key holding the correlation id
	RequestIDKey = "request_id"

	maxRequestIDLength = 128
)

// RequestID tags each request with a correlation id. A client supplied id is
// kept when it is short and printable, otherwise a UUID is generated.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}

// Recovery turns a panic in a handler into a 500 ErrorResponse and logs the
// stack. Broken client connections are left to gin.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		requestID := c.GetString(RequestIDKey)
		logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"panic":      recovered,
			"stack":      string(debug.Stack()),
		}).Error("Handler panicked")

		c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:     "Internal Server Error",
			Message:   "An unexpected error occurred",
			Code:      models.ErrorCodeInternalError,
			Details:   gin.H{"request_id": requestID},
			Timestamp: time.Now(),
			Path:      c.Request.URL.Path,
		})
	})
}

// CORS answers preflight requests and reflects allowed origins. The header
// values are computed once from cfg.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	anyOrigin := false
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			anyOrigin = true
		}
		origins[o] = struct{}{}
	}

	static := map[string]string{
		"Access-Control-Allow-Methods":  strings.Join(cfg.AllowedMethods, ", "),
		"Access-Control-Allow-Headers":  strings.Join(cfg.AllowedHeaders, ", "),
		"Access-Control-Expose-Headers": RequestIDHeader + ", Content-Disposition",
		"Access-Control-Max-Age":        strconv.Itoa(int((24 * time.Hour).Seconds())),
	}
	if cfg.AllowCredentials {
		static["Access-Control-Allow-Credentials"] = "true"
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		if origin := c.GetHeader("Origin"); origin != "" {
			if _, ok := origins[origin]; ok || anyOrigin {
				h.Set("Access-Control-Allow-Origin", origin)
			}
		}
		for k, v := range static {
			h.Set(k, v)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

const (
	apiCSP     = "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; connect-src 'self'"
	swaggerCSP = "default-src 'self' 'unsafe-inline' 'unsafe-eval'; connect-src 'self'; img-src 'self' data:; font-src 'self' data:"
)

var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"X-XSS-Protection", "1; mode=block"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
}

// Security sets the hardening headers. The Swagger UI gets a looser CSP
// because it runs inline scripts.
func Security() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		csp := apiCSP
		if strings.HasPrefix(c.Request.URL.Path, "/swagger/") {
			csp = swaggerCSP
		}
		h.Set("Content-Security-Policy", csp)
		c.Next()
	}
}
