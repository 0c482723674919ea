package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func scrapeMetrics(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /metrics -> %d", w.Code)
	}
	return w.Body.String()
}

func TestMetrics_CountsRequestsByRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/pets/:slug", func(c *gin.Context) { c.String(http.StatusOK, "rex") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	for _, slug := range []string{"rex", "luna"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pets/"+slug, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("GET /pets/%s -> %d", slug, w.Code)
		}
	}

	body := scrapeMetrics(t, r)
	// Both requests land on one series labeled with the route pattern,
	// not two series for the two raw URLs.
	if !strings.Contains(body, `http_requests_total{method="GET",path="/pets/:slug",status="200"} 2`) {
		t.Fatalf("expected pattern-labeled counter at 2, scrape:\n%s", body)
	}
	if strings.Contains(body, `path="/pets/rex"`) {
		t.Fatalf("raw URL leaked into metric labels:\n%s", body)
	}
	if !strings.Contains(body, "http_request_duration_seconds") {
		t.Fatalf("latency histogram missing from scrape")
	}
	if !strings.Contains(body, "http_response_size_bytes") {
		t.Fatalf("response size histogram missing from scrape")
	}
}

func TestMetrics_UnmatchedRouteUsesRawPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/no-such-route", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /no-such-route -> %d", w.Code)
	}

	body := scrapeMetrics(t, r)
	if !strings.Contains(body, `path="/no-such-route",status="404"`) {
		t.Fatalf("expected raw-path fallback for unmatched route, scrape:\n%s", body)
	}
}
