package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/retailsight/retailsight/internal/config"
	"github.com/retailsight/retailsight/internal/insight"
)

func TestHealthEndpointIsStatic(t *testing.T) {
	service := NewHandler(testConfig(t, nil), Dependencies{})

	rr := httptest.NewRecorder()
	service.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if body["status"] != "ok" || body["database"] != "connected" || body["ai"] != "ready" {
		t.Fatalf("body = %v", body)
	}
}

func TestReadyEndpointReportsFailure(t *testing.T) {
	service := NewHandler(testConfig(t, nil), Dependencies{
		Readiness: func(context.Context) error { return errors.New("store unreachable") },
	})

	rr := httptest.NewRecorder()
	service.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/ready", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestRecoverMiddlewareHidesStackOutsideDev(t *testing.T) {
	cfg := testConfig(t, map[string]string{"RETAILSIGHT_PROFILE": "test"})
	service := NewHandler(cfg, Dependencies{Analyzer: &fakeAnalyzer{panicValue: "boom"}})

	rr := httptest.NewRecorder()
	service.ServeHTTP(rr, analyzePost(`{"question":"total sales?"}`))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if body["error"] != "boom" {
		t.Fatalf("error = %v", body["error"])
	}
	if _, ok := body["details"]; ok {
		t.Fatal("details should be absent outside dev")
	}
}

func TestRecoverMiddlewareIncludesStackInDev(t *testing.T) {
	cfg := testConfig(t, nil) // dev is the default profile
	service := NewHandler(cfg, Dependencies{Analyzer: &fakeAnalyzer{panicValue: "boom"}})

	rr := httptest.NewRecorder()
	service.ServeHTTP(rr, analyzePost(`{"question":"total sales?"}`))

	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if details, ok := body["details"].(string); !ok || details == "" {
		t.Fatalf("details = %v, want stack trace", body["details"])
	}
}

func testConfig(t *testing.T, env map[string]string) config.Config {
	t.Helper()
	if env == nil {
		env = map[string]string{}
	}
	cfg, err := config.Load("retailsight-api", func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	})
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	return cfg
}

func analyzePost(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", newReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type fakeAnalyzer struct {
	report     insight.Report
	err        error
	panicValue any
	calls      int
	questions  []string
}

func (f *fakeAnalyzer) Analyze(_ context.Context, question string) (insight.Report, error) {
	f.calls++
	f.questions = append(f.questions, question)
	if f.panicValue != nil {
		panic(f.panicValue)
	}
	if f.err != nil {
		return insight.Report{}, f.err
	}
	return f.report, nil
}
