package main

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"

	"raidboss/internal/config"
)

func TestServer_ShippedConfigServesDemoAccount(t *testing.T) {
	var logs bytes.Buffer
	app, err := buildApp(config.ServerEnv{ConfigPath: filepath.Join(projectRoot(t), "raidboss_config.yml"), Seed: 7}, log.New(&logs, "", 0))
	if err != nil {
		t.Fatalf("build app: %v", err)
	}

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("state expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	var state struct {
		Tickets int   `json:"tickets_remaining"`
		Total   int64 `json:"personal_best_total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Tickets != 3 || state.Total != 12_450_999 {
		t.Fatalf("unexpected demo state: %+v", state)
	}

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("config expected 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"seed":7`)) {
		t.Fatalf("seed override not applied: %s", rec.Body.String())
	}
}

func TestServer_EnvOverridesBalance(t *testing.T) {
	t.Setenv("RAIDBOSS_PRESET", "hard")
	app, err := buildApp(config.ServerEnv{ConfigPath: filepath.Join(projectRoot(t), "raidboss_config.yml")}, log.New(&bytes.Buffer{}, "", 0))
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"max_tickets":2`)) {
		t.Fatalf("hard preset not applied: %s", rec.Body.String())
	}
}

func TestServer_MissingConfigFails(t *testing.T) {
	_, err := buildApp(config.ServerEnv{ConfigPath: filepath.Join(t.TempDir(), "missing.yml")}, log.Default())
	if err == nil {
		t.Fatal("expected error for missing config")
	}
}

func projectRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime.Caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
