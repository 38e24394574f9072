package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/retailsight/retailsight/internal/config"
	"github.com/retailsight/retailsight/internal/observability"
)

const validationMessage = "Please ask a complete business question"

type analyzeRequest struct {
	Question string `json:"question"`
}

type analyzeResponse struct {
	SQL       *string          `json:"sql"`
	Data      []map[string]any `json:"data"`
	Insights  string           `json:"insights"`
	ChartType *string          `json:"chartType"`
}

func handleAnalyze(cfg config.Config, deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Analyzer == nil {
		writeFault(cfg, w, "analyzer is not configured", "")
		return
	}

	var request analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		// An unreadable body carries no question; same rejection.
		observability.IncrementAnalyzeRejected()
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": validationMessage})
		return
	}
	if len(strings.TrimSpace(request.Question)) < 3 {
		observability.IncrementAnalyzeRejected()
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": validationMessage})
		return
	}

	report, err := deps.Analyzer.Analyze(r.Context(), request.Question)
	if err != nil {
		if deps.Logger != nil {
			deps.Logger.ErrorContext(r.Context(), "analyze pipeline failed", slog.Any("error", err))
		}
		// The error message is safe by construction: query execution
		// failures already carry the generic message, upstream failures
		// carry their own.
		writeFault(cfg, w, err.Error(), string(debug.Stack()))
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		SQL:       report.SQL,
		Data:      report.Data,
		Insights:  report.Insights,
		ChartType: report.ChartType,
	})
}
