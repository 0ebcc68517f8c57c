package service

import (
	"strconv"
	"strings"
	"time"
)

type Service struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Status is the outcome of the most recent probe of a service URL.
// Besides the constants below it takes the form "Error <code>".
type Status string

const (
	StatusUnknown Status = "Unknown"
	StatusRunning Status = "Running"
	StatusDown    Status = "Down"

	errorPrefix = "Error "
)

// FromHTTPCode classifies a received response code: exactly 200 is Running,
// anything else is "Error <code>".
func FromHTTPCode(code int) Status {
	if code == 200 {
		return StatusRunning
	}
	return Status(errorPrefix + strconv.Itoa(code))
}

func (s Status) String() string { return string(s) }

func (s Status) IsError() bool { return strings.HasPrefix(string(s), errorPrefix) }

// Code returns the HTTP code of an "Error <code>" status.
func (s Status) Code() (int, bool) {
	if !s.IsError() {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(string(s), errorPrefix))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Class groups statuses for metrics and presentation: running, error, down or unknown.
func (s Status) Class() string {
	switch {
	case s == StatusRunning:
		return "running"
	case s.IsError():
		return "error"
	case s == StatusDown:
		return "down"
	default:
		return "unknown"
	}
}
