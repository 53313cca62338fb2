package transport

import (
	"errors"
	"fmt"
)

// FetchError reports that a resource could not be retrieved: either the
// server was unreachable (StatusCode == 0) or it answered with a non-2xx status.
type FetchError struct {
	URL        string // credentials redacted
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Unreachable reports whether the request never produced an HTTP response.
func (e *FetchError) Unreachable() bool { return e.StatusCode == 0 }

// IsFetchError reports whether err is or wraps a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
