package store

import (
	"testing"
	"time"

	"github.com/livrex-com/livrexgo/internal/config"
)

func TestResetWhitelistKeepsSessionAndTheme(t *testing.T) {
	keep := map[string]bool{}
	for _, key := range ResetWhitelist() {
		keep[key] = true
	}

	if !keep[KeySession] || !keep[KeyTheme] {
		t.Errorf("session and theme must survive a reset, whitelist: %v", ResetWhitelist())
	}
	if keep[KeyForcedOffline] {
		t.Error("forced-offline must not survive a reset")
	}
}

func TestClearExceptClosedStoreIsSafe(t *testing.T) {
	runner := NewSafeRunner(nil, 0, time.Millisecond)
	runner.SetSleep(func(time.Duration) {})
	kv := NewKV(New(config.DatabaseConfig{}, runner))

	if cleared := kv.ClearExcept(ResetWhitelist()); cleared != 0 {
		t.Errorf("a closed store has nothing to clear, got %d", cleared)
	}
}
