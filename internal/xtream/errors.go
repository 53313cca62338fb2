package xtream

import "fmt"

// AuthError means the panel answered but rejected the credentials.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return "authentication failed: " + e.Message
	}
	return "authentication failed"
}

// DecodeError means the panel answered 2xx with a body that is not the
// expected JSON.
type DecodeError struct {
	Action string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Action, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
