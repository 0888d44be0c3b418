package api

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(&Error{StatusCode: 404}) {
		t.Error("404 should be not-found")
	}
	if IsNotFound(&Error{StatusCode: 500}) {
		t.Error("500 is not not-found")
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("plain errors are not not-found")
	}
	wrapped := fmt.Errorf("context: %w", &Error{StatusCode: 404})
	if !IsNotFound(wrapped) {
		t.Error("wrapped 404 should be not-found")
	}
}

func TestIsServerError(t *testing.T) {
	if !IsServerError(&Error{StatusCode: 503}) {
		t.Error("503 should be a server error")
	}
	if IsServerError(&Error{StatusCode: 404}) {
		t.Error("404 is not a server error")
	}
}

func TestIsQuotaError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{ErrStorageQuota, true},
		{fmt.Errorf("write failed: %w", ErrStorageQuota), true},
		{errors.New("QuotaExceededError: storage full"), true},
		{errors.New("pq: could not extend file \"base/16384/2601\""), true},
		{errors.New("write /db: no space left on device"), true},
		{errors.New("disk full"), true},
		{errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		if got := IsQuotaError(tt.err); got != tt.want {
			t.Errorf("IsQuotaError(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
