package agi

import "fmt"

// RequestError is a non-2xx response from the AGI API itself (transport
// level). It carries the status code and raw body for diagnostics.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("AGI API error %d: %s", e.Status, e.Body)
}

// SessionError means the remote session itself failed: an explicit ERROR
// message or an error/failed status. Terminal and non-retriable.
type SessionError struct {
	Detail string
}

func (e *SessionError) Error() string {
	return e.Detail
}

// TimeoutError is raised when the polling deadline elapses without any
// terminal signal. LastStatus holds the last status payload observed, which
// is usually the only clue to what the session was doing.
type TimeoutError struct {
	LastStatus map[string]interface{}
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for AGI session to finish; last status payload: %v", e.LastStatus)
}
