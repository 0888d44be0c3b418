package api

import (
	"errors"
	"fmt"
	"strings"
)

// Error is a typed remote API failure carrying the HTTP status
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("remote API error: HTTP %d: %s", e.StatusCode, e.Message)
}

// ErrStorageQuota signals that the local store rejected a write
// because storage is exhausted. Repair cannot fix a full disk; the
// user has to free space.
var ErrStorageQuota = errors.New("local storage quota exceeded")

// IsNotFound reports whether err is a 404-class remote failure
func IsNotFound(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 404
	}
	return false
}

// IsServerError reports whether err is a 5xx remote failure
func IsServerError(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}

// quotaMarkers are substrings that identify storage-exhaustion
// failures across storage engines.
var quotaMarkers = []string{
	"quota",
	"quotaexceeded",
	"no space left",
	"disk full",
	"could not extend file",
	"out of disk",
}

// IsQuotaError inspects an error's message for quota-related markers
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrStorageQuota) {
		return true
	}
	message := strings.ToLower(err.Error())
	for _, marker := range quotaMarkers {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}
