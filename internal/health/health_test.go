package health_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vladislavdragonenkov/northwind/internal/health"
)

func TestHandler_NoCheckers(t *testing.T) {
	handler := health.NewHandler("test")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp health.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != health.StatusHealthy {
		t.Fatalf("expected healthy, got %s", resp.Status)
	}
	if resp.Version != "test" {
		t.Fatalf("expected version test, got %q", resp.Version)
	}
}

func TestHandler_UnhealthyChecker(t *testing.T) {
	handler := health.NewHandler("test")
	handler.RegisterChecker("ok", health.NewSimpleChecker("ok", func() error { return nil }))
	handler.RegisterChecker("broken", health.NewSimpleChecker("broken", func() error {
		return errors.New("connection refused")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	var resp health.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != health.StatusUnhealthy {
		t.Fatalf("expected unhealthy, got %s", resp.Status)
	}
	if resp.Checks["broken"].Message != "connection refused" {
		t.Fatalf("unexpected message: %q", resp.Checks["broken"].Message)
	}
	if resp.Checks["ok"].Status != health.StatusHealthy {
		t.Fatalf("expected ok checker healthy, got %s", resp.Checks["ok"].Status)
	}
}

func TestSimpleChecker(t *testing.T) {
	checker := health.NewSimpleChecker("db", func() error { return nil })

	check := checker.Check()
	if check.Name != "db" {
		t.Fatalf("expected name db, got %q", check.Name)
	}
	if check.Status != health.StatusHealthy {
		t.Fatalf("expected healthy, got %s", check.Status)
	}
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	health.LivenessHandler(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Fatalf("unexpected body: %q", rec.Body.String())
	}
}
