package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/retailsight/retailsight/internal/insight"
)

func newReader(body string) *strings.Reader {
	return strings.NewReader(body)
}

func TestAnalyzeRejectsMissingQuestion(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	service := NewHandler(testConfig(t, nil), Dependencies{Analyzer: analyzer})

	for _, body := range []string{`{}`, `{"question":""}`, `{"question":"  hi "}`, `not json`} {
		rr := httptest.NewRecorder()
		service.ServeHTTP(rr, analyzePost(body))

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d", body, rr.Code)
		}
		var parsed map[string]any
		if err := json.Unmarshal(rr.Body.Bytes(), &parsed); err != nil {
			t.Fatalf("json decode failed: %v", err)
		}
		if parsed["error"] != "Please ask a complete business question" {
			t.Fatalf("error = %v", parsed["error"])
		}
	}
	if analyzer.calls != 0 {
		t.Fatalf("analyzer called %d times on rejected input", analyzer.calls)
	}
}

func TestAnalyzeSuccessResponseShape(t *testing.T) {
	sql := "SELECT c.region, SUM(o.total_amount) AS total FROM customers c JOIN orders o ON o.customer_id = c.id GROUP BY c.region"
	chart := insight.ChartBar
	analyzer := &fakeAnalyzer{report: insight.Report{
		SQL:       &sql,
		Data:      []map[string]any{{"region": "North", "total": 196.47}, {"region": "South", "total": 89.99}},
		Insights:  "North outsells South; compare the two regions.",
		ChartType: &chart,
	}}
	service := NewHandler(testConfig(t, nil), Dependencies{Analyzer: analyzer})

	rr := httptest.NewRecorder()
	service.ServeHTTP(rr, analyzePost(`{"question":"What are total sales by region?"}`))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var parsed struct {
		SQL       *string          `json:"sql"`
		Data      []map[string]any `json:"data"`
		Insights  string           `json:"insights"`
		ChartType *string          `json:"chartType"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if parsed.SQL == nil || *parsed.SQL != sql {
		t.Fatalf("sql = %v", parsed.SQL)
	}
	if len(parsed.Data) != 2 {
		t.Fatalf("data rows = %d", len(parsed.Data))
	}
	if parsed.ChartType == nil || *parsed.ChartType != "bar" {
		t.Fatalf("chartType = %v", parsed.ChartType)
	}
	if analyzer.questions[0] != "What are total sales by region?" {
		t.Fatalf("question = %q", analyzer.questions[0])
	}
}

func TestAnalyzeRefusalResponse(t *testing.T) {
	analyzer := &fakeAnalyzer{report: insight.Report{
		Insights: "Please ask about sales, customers, or products.",
		Data:     []map[string]any{},
	}}
	service := NewHandler(testConfig(t, nil), Dependencies{Analyzer: analyzer})

	rr := httptest.NewRecorder()
	service.ServeHTTP(rr, analyzePost(`{"question":"write me a poem"}`))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var parsed map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if parsed["sql"] != nil {
		t.Fatalf("sql = %v, want null", parsed["sql"])
	}
	if parsed["chartType"] != nil {
		t.Fatalf("chartType = %v, want null", parsed["chartType"])
	}
	if data, ok := parsed["data"].([]any); !ok || len(data) != 0 {
		t.Fatalf("data = %v, want []", parsed["data"])
	}
	if parsed["insights"] != "Please ask about sales, customers, or products." {
		t.Fatalf("insights = %v", parsed["insights"])
	}
}

func TestAnalyzeQueryFailureReturnsGenericMessage(t *testing.T) {
	analyzer := &fakeAnalyzer{err: &insight.QueryExecutionError{Cause: errors.New("syntax error near FORM")}}
	service := NewHandler(testConfig(t, map[string]string{"RETAILSIGHT_PROFILE": "test"}), Dependencies{Analyzer: analyzer})

	rr := httptest.NewRecorder()
	service.ServeHTTP(rr, analyzePost(`{"question":"total sales?"}`))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	var parsed map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if parsed["error"] != "error executing query" {
		t.Fatalf("error = %v", parsed["error"])
	}
	if strings.Contains(rr.Body.String(), "FORM") {
		t.Fatal("store error leaked into the response")
	}
}

func TestAnalyzeUpstreamFailureKeepsItsMessage(t *testing.T) {
	analyzer := &fakeAnalyzer{err: errors.New("sql_generation: chat completion failed status=429")}
	service := NewHandler(testConfig(t, map[string]string{"RETAILSIGHT_PROFILE": "test"}), Dependencies{Analyzer: analyzer})

	rr := httptest.NewRecorder()
	service.ServeHTTP(rr, analyzePost(`{"question":"total sales?"}`))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	var parsed map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("json decode failed: %v", err)
	}
	if parsed["error"] != "sql_generation: chat completion failed status=429" {
		t.Fatalf("error = %v", parsed["error"])
	}
	if _, ok := parsed["details"]; ok {
		t.Fatal("details should be absent outside dev")
	}
}
