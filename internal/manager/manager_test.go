package manager

import (
	"errors"
	"testing"
)

func TestResetNeedsWipe(t *testing.T) {
	cases := []struct {
		name string
		path string
		err  error
		want bool
	}{
		{"embedded directory removed", "/var/lib/livrex/pg", nil, false},
		{"external store has no directory", "", nil, true},
		{"removal blocked", "/var/lib/livrex/pg", errors.New("device or resource busy"), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resetNeedsWipe(tc.path, tc.err); got != tc.want {
				t.Errorf("resetNeedsWipe(%q, %v) = %v, want %v", tc.path, tc.err, got, tc.want)
			}
		})
	}
}
