package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vitrine/internal/logger"
	"vitrine/internal/metrics"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

func TestHealthAndReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name string
		db   Pinger
		want int
	}{
		{"no db", nil, http.StatusOK},
		{"db up", stubPinger{}, http.StatusOK},
		{"db down", stubPinger{err: errors.New("conn refused")}, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, err := buildRouter(logger.Nop(), tc.db, minimalDeps(newFakeBackend()), context.Background())
			if err != nil {
				t.Fatalf("build router: %v", err)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
			expectStatus(t, rec, tc.want)

			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			expectStatus(t, rec, http.StatusOK)
		})
	}
}

func TestBuildRouterRequiresDeps(t *testing.T) {
	deps := minimalDeps(newFakeBackend())
	deps.Sessions = nil
	if _, err := buildRouter(logger.Nop(), nil, deps, context.Background()); err == nil {
		t.Fatalf("expected error for missing session registry")
	}
}

func TestRequestIDPropagation(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logger.Nop(), nil, minimalDeps(newFakeBackend()), context.Background())
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if got := rec.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	deps := minimalDeps(newFakeBackend())
	deps.Metrics = metrics.New(reg)
	deps.Options.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	router, err := buildRouter(logger.Nop(), nil, deps, context.Background())
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	for _, body := range []string{`{"productId":"soda","quantity":1000}`, `{"productId":"soda"}`} {
		req := httptest.NewRequest(http.MethodPost, "/s/shop/cart/lines", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(httptest.NewRecorder(), req)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `http_requests_total{route="/healthz",status="200"} 1`) {
		t.Fatalf("expected request counter in metrics output:\n%s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `cart_mutations_total{op="add"} 1`) {
		t.Fatalf("expected one counted add:\n%s", rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps := minimalDeps(newFakeBackend())
	deps.Options.CORSOrigins = []string{"https://shop.example.com"}
	router, err := buildRouter(logger.Nop(), nil, deps, context.Background())
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	req := httptest.NewRequest(http.MethodOptions, "/s/shop/cart", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example.com" {
		t.Fatalf("unexpected allow origin %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("expected credentials to be allowed")
	}
}
