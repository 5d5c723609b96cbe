package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quickDeliver/internal/auth"
	"quickDeliver/internal/logging"
)

const (
	maxBodyBytes = 1 << 20
	logBodyLimit = 8 * 1024
)

type bodyLogWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *bodyLogWriter) Write(b []byte) (int, error) {
	if w.buf.Len() < logBodyLimit {
		remain := logBodyLimit - w.buf.Len()
		if len(b) > remain {
			w.buf.Write(b[:remain])
		} else {
			w.buf.Write(b)
		}
	}
	return w.ResponseWriter.Write(b)
}

var redactedKeys = map[string]bool{
	"password":      true,
	"authorization": true,
	"token":         true,
	"access_token":  true,
	"secret":        true,
}

func redactJSON(raw []byte) []byte {
	if len(raw) == 0 {
		return raw
	}
	var m any
	if err := json.Unmarshal(raw, &m); err != nil {
		return raw
	}
	var scrub func(any) any
	scrub = func(x any) any {
		switch v := x.(type) {
		case map[string]any:
			for k, val := range v {
				if redactedKeys[strings.ToLower(k)] {
					v[k] = "***redacted***"
					continue
				}
				v[k] = scrub(val)
			}
			return v
		case []any:
			for i := range v {
				v[i] = scrub(v[i])
			}
			return v
		default:
			return v
		}
	}
	b, err := json.Marshal(scrub(m))
	if err != nil {
		return raw
	}
	return b
}

func capped(b []byte) string {
	if len(b) > logBodyLimit {
		return string(b[:logBodyLimit]) + "...truncated..."
	}
	return string(b)
}

// Logging logs one line per request with redacted JSON bodies and stores a
// request-scoped logger in both the gin and the request context.
func Logging(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
			c.Request.Header.Set("X-Request-Id", reqID)
		}
		c.Header("X-Request-Id", reqID)

		l := base.With(
			"req_id", reqID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"remote", c.ClientIP(),
		)
		logging.With(c, l)
		c.Request = c.Request.WithContext(logging.WithCtx(c.Request.Context(), l))

		var reqBody string
		if strings.Contains(c.GetHeader("Content-Type"), "application/json") && c.Request.Body != nil {
			body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
			_ = c.Request.Body.Close()
			if err == nil {
				reqBody = capped(redactJSON(body))
			}
			// handlers get the untouched body
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		blw := &bodyLogWriter{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = blw

		c.Next()

		status := c.Writer.Status()
		attrs := []any{"status", status, "dur_ms", time.Since(start).Milliseconds()}
		if reqBody != "" {
			attrs = append(attrs, "req_body", reqBody)
		}
		if strings.Contains(c.Writer.Header().Get("Content-Type"), "application/json") {
			attrs = append(attrs, "resp_body", capped(redactJSON(blw.buf.Bytes())))
		}
		if len(c.Params) > 0 {
			attrs = append(attrs, "params", c.Params)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}
		attrs = append(attrs, "resp_bytes", c.Writer.Size())

		if status >= http.StatusInternalServerError {
			l.Error("http_request", attrs...)
			return
		}
		l.Info("http_request", attrs...)
	}
}

// RequireAuth validates the bearer token and attaches the principal to the
// request context. EventSource cannot set headers, so SSE routes may pass the
// token as the access_token query parameter instead.
func RequireAuth(secret string, allowQueryToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" && allowQueryToken {
			if tok := c.Query("access_token"); tok != "" {
				header = "Bearer " + tok
			}
		}
		if header == "" {
			unauthorized(c, "invalid_request", "missing bearer token")
			return
		}
		p, err := auth.ParseBearer(header, secret)
		if err != nil {
			unauthorized(c, "invalid_token", err.Error())
			return
		}
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

func unauthorized(c *gin.Context, code, desc string) {
	c.Header("WWW-Authenticate", `Bearer error="`+code+`"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code, "error_description": desc})
}

func principal(c *gin.Context) *auth.Principal {
	p, _ := auth.FromContext(c.Request.Context())
	return p
}
