package insight

// QueryExecutionError reports that the store rejected the generated SQL.
// Its message is deliberately generic: the underlying cause is logged by
// the pipeline and never returned to the caller.
type QueryExecutionError struct {
	Cause error
}

func (e *QueryExecutionError) Error() string {
	return "error executing query"
}

func (e *QueryExecutionError) Unwrap() error {
	return e.Cause
}
