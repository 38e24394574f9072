package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/retailsight/retailsight/internal/config"
	"github.com/retailsight/retailsight/internal/insight"
	"github.com/retailsight/retailsight/internal/observability"
)

type ReadinessCheck func(ctx context.Context) error

// Analyzer runs the question pipeline. Satisfied by *insight.Service.
type Analyzer interface {
	Analyze(ctx context.Context, question string) (insight.Report, error)
}

type Dependencies struct {
	Logger            *slog.Logger
	Analyzer          Analyzer
	Readiness         ReadinessCheck
	DependencyTimeout time.Duration
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	// Static by contract: reports connected/ready without probing either
	// dependency. GET /api/ready is the honest probe.
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"database": "connected",
			"ai":       "ready",
		})
	})

	mux.HandleFunc("GET /api/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not ready", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("GET /api/metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/analyze", func(w http.ResponseWriter, r *http.Request) {
		handleAnalyze(cfg, deps, w, r)
	})

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if deps.Logger != nil {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	middlewares = append(middlewares, recoverMiddleware(cfg, deps.Logger))
	return chain(mux, middlewares...)
}

// recoverMiddleware is the outermost fault boundary: any panic becomes a
// 500 with the panic message, and a stack trace only under the dev profile.
func recoverMiddleware(cfg config.Config, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				stack := string(debug.Stack())
				if logger != nil {
					logger.ErrorContext(r.Context(), "panic in request handler",
						slog.Any("panic", recovered),
						slog.String("stack", stack),
					)
				}
				writeFault(cfg, w, fmt.Sprint(recovered), stack)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeFault maps an unhandled failure to 500. details carries the stack
// trace and is present only under the dev profile.
func writeFault(cfg config.Config, w http.ResponseWriter, message, stack string) {
	body := map[string]any{"error": message}
	if cfg.Profile == config.ProfileDev && stack != "" {
		body["details"] = stack
	}
	writeJSON(w, http.StatusInternalServerError, body)
}
