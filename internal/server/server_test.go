package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
)

func TestRouter(t *testing.T) {
	t.Run("Method Filtering", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			io.WriteString(w, "pong")
		}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Body.String() != "pong" {
			t.Errorf("expected pong, got %q", rec.Body.String())
		}
	})

	t.Run("Middleware Order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mark("a"), mark("b"))
		r.Handle(http.MethodGet, "/", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if strings.Join(order, ",") != "a,b" {
			t.Errorf("expected a,b got %v", order)
		}
	})

	t.Run("Logging and Recover", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf)

		r := NewBasicRouter()
		r.Use(Logging(logger), Recover(logger))
		r.Handle(http.MethodGet, "/panic", http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("oops") }))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}

		out := buf.String()
		if !strings.Contains(out, "handler panic") || !strings.Contains(out, "status=500") {
			t.Errorf("expected panic and request lines, got %q", out)
		}
	})

	t.Run("Metrics", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		c := prometheus.NewCounter(prometheus.CounterOpts{Name: "spotx_test_total", Help: "test"})
		reg.MustRegister(c)
		c.Inc()

		r := NewBasicRouter()
		r.Handler(NewMetricsHandler(reg))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		if !strings.Contains(rec.Body.String(), "spotx_test_total 1") {
			t.Errorf("expected counter in output, got %q", rec.Body.String())
		}
	})
}

func TestListener(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "spotx_listener_total", Help: "test"})
	reg.MustRegister(c)

	r := NewBasicRouter()
	r.Handler(NewMetricsHandler(reg))

	l, err := Listen(ctx, "127.0.0.1:0", r, nil)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}

	resp, err := http.Get("http://" + l.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if !strings.Contains(string(body), "spotx_listener_total 0") {
		t.Errorf("expected metrics body, got %q", body)
	}

	if err := l.Close(); err != nil {
		t.Errorf("expected clean shutdown, got %v", err)
	}

	if _, err := http.Get("http://" + l.Addr() + "/metrics"); err == nil {
		t.Error("expected listener to be closed")
	}
}
