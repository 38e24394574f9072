// Package insight runs the question-to-SQL-to-insight pipeline: schema
// introspection, two completion calls, heuristic SQL extraction, guarded
// query execution, and chart-type suggestion.
package insight

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/retailsight/retailsight/internal/llm"
	"github.com/retailsight/retailsight/internal/observability"
	"github.com/retailsight/retailsight/internal/store"
)

// Report is the outcome of one analyze run. SQL is nil when no statement
// was extracted; ChartType is nil on the refusal path.
type Report struct {
	SQL       *string
	Data      []map[string]any
	Insights  string
	ChartType *string
}

type Service struct {
	Store       store.Store
	LLM         llm.Client
	Logger      *slog.Logger
	Temperature float64
}

// Analyze runs the pipeline end to end for one question. The steps are
// strictly sequential: the insight call depends on the query result,
// which depends on the SQL-generation call.
func (s *Service) Analyze(ctx context.Context, question string) (Report, error) {
	observability.IncrementAnalyzeRequest()

	tables, err := s.Store.Schema(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("introspect schema: %w", err)
	}

	generation, err := s.complete(ctx, "sql_generation", SQLGenerationMessages(tables, question))
	if err != nil {
		return Report{}, err
	}

	if IsRefusal(generation) {
		observability.IncrementAnalyzeRefusal()
		s.log().InfoContext(ctx, "question refused as out of scope")
		return Report{Insights: generation, Data: make([]map[string]any, 0)}, nil
	}

	sqlText, extracted := ExtractSQL(generation)
	var sqlOut *string
	if extracted {
		sqlOut = &sqlText
	}

	data := make([]map[string]any, 0)
	if extracted && ShouldExecute(sqlText) {
		start := time.Now()
		rowSet, err := s.Store.Query(ctx, sqlText)
		if err != nil {
			s.log().ErrorContext(ctx, "query execution failed",
				slog.String("sql", sqlText),
				slog.Any("error", err),
			)
			return Report{}, &QueryExecutionError{Cause: err}
		}
		observability.ObserveQueryDuration(time.Since(start))
		data = rowObjects(rowSet)
	}

	messages, err := InsightMessages(question, data)
	if err != nil {
		return Report{}, err
	}
	insights, err := s.complete(ctx, "insight_generation", messages)
	if err != nil {
		return Report{}, err
	}

	chart := SuggestChart(insights)
	observability.IncrementChartType(chart)

	return Report{
		SQL:       sqlOut,
		Data:      data,
		Insights:  insights,
		ChartType: &chart,
	}, nil
}

func (s *Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (s *Service) complete(ctx context.Context, phase string, messages []llm.Message) (string, error) {
	start := time.Now()
	completion, err := s.LLM.Complete(ctx, llm.ChatRequest{Messages: messages, Temperature: s.Temperature})
	if err != nil {
		return "", fmt.Errorf("%s: %w", phase, err)
	}
	observability.ObserveCompletion(phase, time.Since(start))
	return completion, nil
}

// rowObjects zips a row set into column-keyed objects for the response
// body and the insight prompt.
func rowObjects(rowSet store.RowSet) []map[string]any {
	objects := make([]map[string]any, 0, len(rowSet.Rows))
	for _, row := range rowSet.Rows {
		object := make(map[string]any, len(rowSet.Columns))
		for i, column := range rowSet.Columns {
			if i < len(row) {
				object[column] = row[i]
			}
		}
		objects = append(objects, object)
	}
	return objects
}
