package domain

import "fmt"

// SchemaError reports a column or group the parsed dataset no longer
// carries. It signals upstream format drift and is never retried.
type SchemaError struct {
	Dataset string
	Column  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: column %q missing from source data", e.Dataset, e.Column)
}

// ParseError reports a row that cannot be typed against the declared
// schema. Loads fail fast on it instead of coercing values.
type ParseError struct {
	Dataset string
	Line    int
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: line %d: %v", e.Dataset, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
