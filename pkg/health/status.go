package health

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the severity of a single check or of the whole service.
type Status string

const (
	// StatusOK means the check ran and passed.
	StatusOK Status = "ok"
	// StatusWarning means the check ran and found a degraded but
	// serviceable condition (e.g. disk above threshold).
	StatusWarning Status = "warning"
	// StatusError means the check ran and failed.
	StatusError Status = "error"
	// StatusUnknown means the check could not run because the underlying
	// capability is absent. Unknown is excluded from aggregation: it never
	// raises or lowers the overall severity.
	StatusUnknown Status = "unknown"
)

// maxDiagnosticLen caps diagnostic messages in responses. Long driver
// errors get cut; stack traces and credentials must never reach clients.
const maxDiagnosticLen = 200

// Check is the outcome of one named probe. Immutable once produced,
// scoped to a single request.
type Check struct {
	Status  Status
	Message string
}

// String renders the wire encoding: "ok", "warning", "error: <msg>",
// "unknown (<msg>)".
func (c Check) String() string {
	switch {
	case c.Message == "":
		return string(c.Status)
	case c.Status == StatusUnknown:
		return fmt.Sprintf("%s (%s)", c.Status, c.Message)
	default:
		return fmt.Sprintf("%s: %s", c.Status, c.Message)
	}
}

// MarshalJSON encodes the check as its string form for compatibility with
// monitoring consumers that expect plain string check values.
func (c Check) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// Aggregate folds check severities into one overall status with fixed
// precedence: any error wins, else any warning, else ok. Unknown checks
// are skipped entirely.
func Aggregate(checks ...Check) Status {
	overall := StatusOK
	for _, c := range checks {
		switch c.Status {
		case StatusError:
			return StatusError
		case StatusWarning:
			overall = StatusWarning
		}
	}
	return overall
}

// failure converts a probe error into an error-status check with a
// sanitized diagnostic.
func failure(err error) Check {
	msg := "check failed"
	if err != nil {
		if s := sanitize(err.Error()); s != "" {
			msg = s
		}
	}
	return Check{Status: StatusError, Message: msg}
}

// sanitize collapses an error message to one line capped at
// maxDiagnosticLen runes. Joined errors stringify with newlines; the cap
// also keeps panics and driver dumps from leaking whole stack traces.
func sanitize(msg string) string {
	lines := strings.Split(msg, "\n")
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	msg = strings.Join(parts, "; ")
	if runes := []rune(msg); len(runes) > maxDiagnosticLen {
		msg = string(runes[:maxDiagnosticLen]) + "..."
	}
	return msg
}
