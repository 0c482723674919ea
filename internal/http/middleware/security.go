package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const defaultHSTSMaxAge = 180 * 24 * time.Hour

// SecurityOptions configures SecurityHeaders.
//
// EnableHSTS emits Strict-Transport-Security, and only on requests that
// arrived over HTTPS; turn it on only when the whole path, proxy to app
// included, is TLS. A zero HSTSMaxAge falls back to 180 days. NoStore
// marks responses uncacheable. EnablePolicy adds the browser
// feature-policy headers, which non-browser clients simply ignore.
type SecurityOptions struct {
	EnableHSTS   bool
	HSTSMaxAge   time.Duration
	NoStore      bool
	EnablePolicy bool
}

// SecurityHeaders applies a conservative header set for a JSON API behind
// a reverse proxy. X-Content-Type-Options, X-Frame-Options and
// Referrer-Policy are unconditional; the rest follows opt. No CSP is
// emitted since the API never serves HTML. An existing X-Request-ID is
// added to Access-Control-Expose-Headers so browser clients can read it.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	hsts := hstsValue(opt.HSTSMaxAge)
	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}
		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}

		exposeRequestID(h)
		c.Next()
	}
}

func hstsValue(maxAge time.Duration) string {
	if maxAge <= 0 {
		maxAge = defaultHSTSMaxAge
	}
	return fmt.Sprintf("max-age=%d; includeSubDomains; preload", int(maxAge.Seconds()))
}

// exposeRequestID appends X-Request-ID to Access-Control-Expose-Headers
// when the response already carries one.
func exposeRequestID(h http.Header) {
	if h.Get("X-Request-ID") == "" {
		return
	}
	const expose = "Access-Control-Expose-Headers"
	switch cur := h.Get(expose); {
	case cur == "":
		h.Set(expose, "X-Request-ID")
	case !strings.Contains(cur, "X-Request-ID"):
		h.Set(expose, cur+", X-Request-ID")
	}
}

// isHTTPS is true for direct TLS connections and for proxied requests
// carrying X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
