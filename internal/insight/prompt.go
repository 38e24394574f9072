package insight

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/retailsight/retailsight/internal/llm"
	"github.com/retailsight/retailsight/internal/store"
)

// RefusalSentinel is the fixed substring the model is instructed to emit
// for out-of-scope questions. The pipeline short-circuits on it.
const RefusalSentinel = "Please ask about"

const refusalInstruction = "Please ask about sales, customers, or products."

// SQLGenerationMessages builds the transcript for the SQL-generation call:
// a system instruction scoped to retail business questions with the full
// schema embedded, plus the user's question.
func SQLGenerationMessages(tables []store.TableSchema, question string) []llm.Message {
	system := fmt.Sprintf(`You are a SQL analyst for a small retail business. You only answer business questions about sales, customers, and products.

The database schema is:

%s
Write a single SQL query that answers the user's question. Return the query in a fenced code block labeled sql. Do not modify any data.

If the question is not a business question about sales, customers, or products, reply with exactly: %q`,
		FormatSchemaContext(tables), refusalInstruction)

	return []llm.Message{llm.System(system), llm.User(question)}
}

// InsightMessages builds the transcript for the insight-generation call
// over the executed query's rows (possibly empty).
func InsightMessages(question string, rows []map[string]any) ([]llm.Message, error) {
	encoded, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode result rows: %w", err)
	}

	system := fmt.Sprintf(`You are a retail business analyst. A question was answered by running a SQL query; the result rows are below as JSON.

Result rows:
%s

Give two or three concise business insights about these results. Mention which visualization fits best: bar, line, or pie.`,
		string(encoded))

	return []llm.Message{llm.System(system), llm.User(question)}, nil
}

// IsRefusal reports whether a SQL-generation completion is the model
// declining an out-of-scope question.
func IsRefusal(completion string) bool {
	return strings.Contains(completion, RefusalSentinel)
}

// FormatSchemaContext renders table metadata as a text block for prompt
// embedding, one table per section with columns in declaration order.
func FormatSchemaContext(tables []store.TableSchema) string {
	var sb strings.Builder
	for _, table := range tables {
		sb.WriteString(fmt.Sprintf("### %s\n", table.Name))
		for _, column := range table.Columns {
			sb.WriteString(fmt.Sprintf("- %s %s\n", column.Name, column.Type))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
