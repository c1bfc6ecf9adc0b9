package agent

import (
	"fmt"
	"time"
)

// ErrorKind classifies a non-2xx submission response so the caller can decide
// whether to retry, alert, or surface the failure to an end user.
type ErrorKind string

const (
	KindAuth      ErrorKind = "auth"
	KindNotFound  ErrorKind = "not-found"
	KindTransient ErrorKind = "transient-upstream"
	KindGeneric   ErrorKind = "generic"
)

// ClassifyStatus maps an HTTP status to an error kind. Transient-upstream
// kinds are candidates for caller-level retry; the client never auto-retries
// a submission.
func ClassifyStatus(status int) ErrorKind {
	switch status {
	case 401, 403:
		return KindAuth
	case 404:
		return KindNotFound
	case 500, 502, 503:
		return KindTransient
	default:
		return KindGeneric
	}
}

// APIError is a non-2xx response from the extraction agent. The message never
// contains the API key, only whether one was configured.
type APIError struct {
	Status   int
	Kind     ErrorKind
	Endpoint string
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("agent API error (%d, %s) from %s: %s", e.Status, e.Kind, e.Endpoint, e.Message)
}

// WorkflowError means the agent accepted the request but reported that the
// workflow itself failed, either synchronously on submit or via a terminal
// failed/error status during polling.
type WorkflowError struct {
	Reason string
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("agent workflow failed: %s", e.Reason)
}

// PollTimeoutError means the attempt budget was exhausted without the run
// reaching a terminal state.
type PollTimeoutError struct {
	Attempts     int
	Elapsed      time.Duration
	DashboardURL string
}

func (e *PollTimeoutError) Error() string {
	msg := fmt.Sprintf("polling timeout: maximum attempts (%d) reached after %s", e.Attempts, e.Elapsed.Round(time.Second))
	if e.DashboardURL != "" {
		msg += fmt.Sprintf(". Check dashboard: %s", e.DashboardURL)
	}
	return msg
}
