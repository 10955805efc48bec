package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestHealthCheckHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthCheckHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	var status HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if status.Service != "echolisten" {
		t.Errorf("Expected service 'echolisten', got '%s'", status.Service)
	}
}

func TestReadinessHandler(t *testing.T) {
	ok := func(ctx context.Context) (bool, error) { return true, nil }
	failing := func(ctx context.Context) (bool, error) { return false, errors.New("database is locked") }

	tests := []struct {
		name   string
		checks map[string]HealthCheckFunc
		code   int
		status string
	}{
		{"all healthy", map[string]HealthCheckFunc{"store": ok, "redis": ok}, http.StatusOK, "ready"},
		{"one failing", map[string]HealthCheckFunc{"store": failing, "redis": ok}, http.StatusServiceUnavailable, "not_ready"},
		{"no checks", nil, http.StatusOK, "ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ReadinessHandler(tt.checks)(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if rec.Code != tt.code {
				t.Errorf("Expected status %d, got %d", tt.code, rec.Code)
			}
			var status HealthStatus
			if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
				t.Fatalf("Failed to decode body: %v", err)
			}
			if status.Status != tt.status {
				t.Errorf("Expected status '%s', got '%s'", tt.status, status.Status)
			}
			if dep, found := status.Dependencies["store"]; found && tt.code != http.StatusOK && dep.Message != "database is locked" {
				t.Errorf("Expected failure message, got '%s'", dep.Message)
			}
		})
	}
}

func TestGRPCHealthServer_Refresh(t *testing.T) {
	healthy := true
	checks := map[string]HealthCheckFunc{
		"store": func(ctx context.Context) (bool, error) { return healthy, nil },
	}
	g := NewGRPCHealthServer(checks, 0)

	g.refresh(context.Background())
	resp, err := g.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "echolisten"})
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		t.Errorf("Expected SERVING, got %v", resp.Status)
	}

	healthy = false
	g.refresh(context.Background())
	resp, _ = g.health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "echolisten"})
	if resp.Status != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Errorf("Expected NOT_SERVING, got %v", resp.Status)
	}
}
