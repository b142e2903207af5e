package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestNewServesDemoModelsAndRecordsHistory(t *testing.T) {
	dir := chdirTemp(t)
	for _, k := range []string{"AM_CONFIG_PATH", "AM_MODELS_SOURCE", "AM_JWT_SECRET", "REDIS_ADDR", "CLICKHOUSE_ADDR", "OTEL_ENABLED"} {
		t.Setenv(k, "")
	}
	t.Setenv("AM_HISTORY_DRIVER", "sqlite")
	t.Setenv("AM_HISTORY_DSN", filepath.Join(dir, "history.db"))
	t.Setenv("AM_HISTORY_RETENTION", "0s")

	a, err := New(context.Background())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { a.Close(context.Background()) })

	if a.Registry.Len() != 5 {
		t.Fatalf("registry len=%d want 5 demo models", a.Registry.Len())
	}
	if a.cron != nil {
		t.Fatalf("retention scheduled with zero retention")
	}

	h := a.Handler()
	body, _ := json.Marshal(map[string]any{
		"environmental_data": map[string]any{"pm10": 15.0, "pm2_5": 8.0, "ozone": 70.0},
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/predict/ensemble", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("ensemble=%d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing X-Request-Id")
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/history", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("history=%d %s", w.Code, w.Body.String())
	}
	var out struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if out.Count != 1 {
		t.Fatalf("history count=%d want 1", out.Count)
	}
}
