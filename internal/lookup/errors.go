package lookup

import (
	"errors"
	"fmt"
)

// NotFoundMessage is returned to clients when a company name has no
// directory entry.
const NotFoundMessage = "Ticker not found. Update the mapping table."

// ErrMissingQuery is returned when a request names neither a company nor
// a ticker.
var ErrMissingQuery = errors.New("company or ticker is required")

// NotFoundError reports a company name missing from the directory.
type NotFoundError struct {
	Company string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("company %q: %s", e.Company, NotFoundMessage)
}

// ProviderError reports a failed upstream fetch for Ticker.
type ProviderError struct {
	Ticker string
	Err    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Ticker, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// RequestError reports an invalid request parameter.
type RequestError struct {
	Param  string
	Reason string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}
