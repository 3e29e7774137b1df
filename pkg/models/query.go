package models

// QueryResult is the outcome of one query execution against the data store.
// Success implies Error is empty and Columns/Rows are present (possibly empty);
// a failed result carries only the error and its kind. RowCount always equals
// len(Rows) on success.
type QueryResult struct {
	Success   bool             `json:"success"`
	Columns   []string         `json:"columns,omitempty"`
	Rows      []map[string]any `json:"rows,omitempty"`
	RowCount  int              `json:"row_count"`
	Error     string           `json:"error,omitempty"`
	ErrorKind string           `json:"error_kind,omitempty"`
}

// SQLAttempt records one iteration of the self-correction loop.
type SQLAttempt struct {
	Number          int    `json:"number"`
	Query           string `json:"query"`
	ValidationError string `json:"validation_error,omitempty"`
	ExecutionError  string `json:"execution_error,omitempty"`
}

// SQLResult is a QueryResult annotated with the query that produced it and the
// full attempt history of the self-correction loop. Only the last attempt's
// outcome is authoritative.
type SQLResult struct {
	QueryResult
	Query    string       `json:"query,omitempty"`
	Attempts []SQLAttempt `json:"attempts,omitempty"`
}
