package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// swapLogger redirects the global zerolog logger into a buffer for the
// duration of one test.
func swapLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func newLoggedRouter(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	return r
}

func TestRequestID(t *testing.T) {
	r := newLoggedRouter(RequestID())
	r.GET("/pets/:slug", func(c *gin.Context) {
		if v, found := c.Get(requestIDKey); !found || v == "" {
			t.Fatalf("request id missing from context")
		}
		c.Status(http.StatusOK)
	})

	t.Run("generated when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pets/rex", nil))
		if w.Header().Get(requestIDHeader) == "" {
			t.Fatalf("expected a generated %s header", requestIDHeader)
		}
	})

	t.Run("inbound id is propagated", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/pets/rex", nil)
		req.Header.Set(requestIDHeader, "rid-rex-1")
		r.ServeHTTP(w, req)
		if got := w.Header().Get(requestIDHeader); got != "rid-rex-1" {
			t.Fatalf("request id = %q; want rid-rex-1", got)
		}
	})

	t.Run("header lookup is case-insensitive", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/pets/rex", nil)
		req.Header.Set(strings.ToLower(requestIDHeader), "rid-rex-2")
		r.ServeHTTP(w, req)
		if got := w.Header().Get(requestIDHeader); got != "rid-rex-2" {
			t.Fatalf("request id = %q; want rid-rex-2", got)
		}
	})
}

func TestLogger_LevelsAndPathFallback(t *testing.T) {
	buf := swapLogger(t)

	r := newLoggedRouter(RequestID(), Logger())
	r.GET("/pets/:slug", func(c *gin.Context) { c.String(http.StatusOK, "rex") })
	r.GET("/broken", func(c *gin.Context) {
		_ = c.Error(errBoom{})
		c.Status(http.StatusBadRequest)
	})

	// 200 logs at info with the route pattern, not the raw URL
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pets/rex", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /pets/rex -> %d", w.Code)
	}

	// unknown route logs at warn with the raw path (no pattern to use)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nowhere -> %d", w.Code)
	}

	// gin errors on the context push the line to error level
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/broken", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("GET /broken -> %d", w.Code)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"level":"info"`) || !strings.Contains(logs, `"path":"/pets/:slug"`) {
		t.Fatalf("missing info line with route pattern:\n%s", logs)
	}
	if !strings.Contains(logs, `"level":"warn"`) || !strings.Contains(logs, `"path":"/nowhere"`) {
		t.Fatalf("missing warn line with raw path:\n%s", logs)
	}
	if !strings.Contains(logs, `"level":"error"`) {
		t.Fatalf("missing error line:\n%s", logs)
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func TestRecovery_JSONEnvelopeAndLog(t *testing.T) {
	buf := swapLogger(t)

	r := newLoggedRouter(RequestID(), Logger(), Recovery())
	r.GET("/panic", func(*gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("recovered panic -> %d; want 500", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("body not json: %v", err)
	}
	if body["code"] != "internal_error" || body["message"] != "internal server error" {
		t.Fatalf("unexpected envelope: %v", body)
	}
	if out := buf.String(); !strings.Contains(out, "panic recovered") && !strings.Contains(out, `"panic"`) {
		t.Fatalf("panic not logged:\n%s", out)
	}
}

func TestRecovery_PanicAfterWrite_SkipsJSONBody(t *testing.T) {
	buf := swapLogger(t)

	r := newLoggedRouter(RequestID(), Logger(), Recovery())
	// With the response already written, Recovery must not append the
	// JSON envelope to a half-sent body.
	r.GET("/late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/late", nil))

	if strings.Contains(w.Body.String(), "internal server error") ||
		strings.Contains(strings.ToLower(w.Header().Get("Content-Type")), "application/json") {
		t.Fatalf("JSON envelope written after partial body: CT=%q body=%q",
			w.Header().Get("Content-Type"), w.Body.String())
	}
	if out := buf.String(); !strings.Contains(out, "panic recovered") && !strings.Contains(out, `"panic"`) {
		t.Fatalf("panic not logged:\n%s", out)
	}
}

func TestLoggerFrom(t *testing.T) {
	// Without Logger() the fallback global logger has no request fields.
	buf := swapLogger(t)
	r := newLoggedRouter(RequestID())
	r.GET("/owners/:id", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("owner lookup")
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/owners/o1", nil))
	if !strings.Contains(buf.String(), `"message":"owner lookup"`) {
		t.Fatalf("fallback logger dropped the line:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), `"request_id"`) {
		t.Fatalf("fallback logger should not carry request_id:\n%s", buf.String())
	}

	// With Logger() installed the context logger carries request_id.
	buf2 := swapLogger(t)
	r2 := newLoggedRouter(RequestID(), Logger())
	r2.GET("/owners/:id", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("owner lookup")
		c.Status(http.StatusOK)
	})
	w = httptest.NewRecorder()
	r2.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/owners/o1", nil))
	out := buf2.String()
	if !strings.Contains(out, `"message":"owner lookup"`) || !strings.Contains(out, `"request_id"`) {
		t.Fatalf("request-scoped logger missing fields:\n%s", out)
	}
}

func Test_asString_truncate(t *testing.T) {
	if asString("x") != "x" {
		t.Fatalf("asString(string) mangled the value")
	}
	if asString(123) != "" {
		t.Fatalf("asString(non-string) should be empty")
	}

	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"abcdefgh", 5, "abcde…"},
		{"abc", 0, "abc"}, // non-positive max disables truncation
		{"abc", -1, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.max); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q; want %q", tc.in, tc.max, got, tc.want)
		}
	}
}
