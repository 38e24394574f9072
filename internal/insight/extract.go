package insight

import (
	"regexp"
	"strings"
)

// Heuristic recovery of a SQL statement from free-form completion text.
// Not a parser: nested fences, multi-statement text, and SQL woven into
// prose outside these two shapes are not recognized.
var (
	fencedSQLPattern    = regexp.MustCompile("(?is)```sql\\s*(.*?)\\s*```")
	inlineSelectPattern = regexp.MustCompile(`(?is)select\s+.*?\s+from\s+.*`)
)

// ExtractSQL recovers a candidate SQL statement from completion text.
// Priority: a fenced block labeled sql wins and yields its interior;
// otherwise the first case-insensitive SELECT ... FROM fragment yields
// the whole matched substring; otherwise nothing.
func ExtractSQL(text string) (string, bool) {
	if matches := fencedSQLPattern.FindStringSubmatch(text); matches != nil {
		return matches[1], true
	}
	if match := inlineSelectPattern.FindString(text); match != "" {
		return match, true
	}
	return "", false
}

// ShouldExecute applies the execution allow-list: a candidate runs only
// when it contains "select" in any case. This is a substring check, not
// a parser guard; a statement with destructive clauses after a SELECT,
// or a UNION read into unintended tables, still passes.
func ShouldExecute(sqlText string) bool {
	return strings.Contains(strings.ToLower(sqlText), "select")
}
