package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func serveWithSecurity(t *testing.T, opt SecurityOptions, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeaders(opt))
	r.GET("/pets", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/pets", nil)
	if mutate != nil {
		mutate(req)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	w := serveWithSecurity(t, SecurityOptions{}, nil)

	for hdr, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
	} {
		if got := w.Header().Get(hdr); got != want {
			t.Fatalf("%s = %q; want %q", hdr, got, want)
		}
	}
	// Opt-in headers stay off by default.
	if w.Header().Get("Permissions-Policy") != "" {
		t.Fatalf("Permissions-Policy set without EnablePolicy")
	}
	if w.Header().Get("Cache-Control") != "" {
		t.Fatalf("Cache-Control set without NoStore")
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS set without EnableHSTS")
	}
}

func TestSecurityHeaders_PolicyAndNoStore(t *testing.T) {
	w := serveWithSecurity(t, SecurityOptions{NoStore: true, EnablePolicy: true}, nil)

	if !strings.Contains(w.Header().Get("Permissions-Policy"), "geolocation=()") {
		t.Fatalf("Permissions-Policy missing: %q", w.Header().Get("Permissions-Policy"))
	}
	if w.Header().Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatalf("cross-domain policy header missing")
	}
	if w.Header().Get("Cache-Control") != "no-store" || w.Header().Get("Expires") != "0" {
		t.Fatalf("no-store headers incomplete: %v", w.Header())
	}
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	hsts := SecurityOptions{EnableHSTS: true, HSTSMaxAge: time.Hour}

	// Plain HTTP never gets HSTS.
	w := serveWithSecurity(t, hsts, nil)
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS emitted over plain HTTP")
	}

	// Terminated TLS (r.TLS set) does.
	w = serveWithSecurity(t, hsts, func(req *http.Request) {
		req.TLS = &tls.ConnectionState{}
	})
	got := w.Header().Get("Strict-Transport-Security")
	if !strings.Contains(got, "max-age=3600") || !strings.Contains(got, "includeSubDomains") {
		t.Fatalf("HSTS header = %q", got)
	}

	// A proxy-forwarded HTTPS request counts too.
	w = serveWithSecurity(t, hsts, func(req *http.Request) {
		req.Header.Set("X-Forwarded-Proto", "HTTPS")
	})
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Fatalf("HSTS missing for X-Forwarded-Proto request")
	}

	// Zero max-age falls back to the 180-day default.
	w = serveWithSecurity(t, SecurityOptions{EnableHSTS: true}, func(req *http.Request) {
		req.TLS = &tls.ConnectionState{}
	})
	if got := w.Header().Get("Strict-Transport-Security"); !strings.Contains(got, "max-age=15552000") {
		t.Fatalf("default HSTS max-age wrong: %q", got)
	}
}

func TestSecurityHeaders_ExposesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// RequestID runs first so the response header is present when
	// SecurityHeaders inspects it.
	r := gin.New()
	r.Use(RequestID(), SecurityHeaders(SecurityOptions{}))
	r.GET("/pets", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pets", nil))
	if got := w.Header().Get("Access-Control-Expose-Headers"); !strings.Contains(got, "X-Request-ID") {
		t.Fatalf("Access-Control-Expose-Headers = %q", got)
	}

	// An existing expose list is appended to, not clobbered.
	r2 := gin.New()
	r2.Use(RequestID(), func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Expose-Headers", "ETag")
		c.Next()
	}, SecurityHeaders(SecurityOptions{}))
	r2.GET("/pets", func(c *gin.Context) { c.Status(http.StatusOK) })

	w = httptest.NewRecorder()
	r2.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pets", nil))
	got := w.Header().Get("Access-Control-Expose-Headers")
	if !strings.Contains(got, "ETag") || !strings.Contains(got, "X-Request-ID") {
		t.Fatalf("Access-Control-Expose-Headers = %q", got)
	}
}

func Test_isHTTPS(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if isHTTPS(req) {
		t.Fatalf("plain request reported as HTTPS")
	}
	req.TLS = &tls.ConnectionState{}
	if !isHTTPS(req) {
		t.Fatalf("TLS request not detected")
	}
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	if !isHTTPS(req) {
		t.Fatalf("forwarded proto not detected")
	}
}
