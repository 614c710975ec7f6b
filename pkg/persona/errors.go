package persona

import "fmt"

// ParseError is model output that is not a JSON object.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid JSON response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// BatchError reports which persona of a batch failed. Index is 1-based.
type BatchError struct {
	Index int
	Total int
	Err   error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("persona %d of %d: %v", e.Index, e.Total, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }
