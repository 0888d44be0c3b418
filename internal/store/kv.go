package store

import (
	"strings"
	"time"

	"github.com/livrex-com/livrexgo/internal/models"
)

// Persisted flag keys living outside the table model
const (
	KeySession                = "session"
	KeyTheme                  = "theme"
	KeyForcedOffline          = "forced_offline"
	KeyLastImageSweep         = "last_image_sweep"
	KeyDismissedAnnouncements = "dismissed_announcements"

	// DraftKeyPrefix marks cached form drafts subject to the 14-day
	// cleanup window.
	DraftKeyPrefix = "draft:"
)

// ResetWhitelist lists the keys that must survive a destructive
// reset: the user session and the theme preference.
func ResetWhitelist() []string {
	return []string{KeySession, KeyTheme}
}

// KV is the persisted key/value flag store (forced-offline toggle,
// session, theme, drafts). Reads and writes go through the safe
// runner like every other table.
type KV struct {
	store *Store
}

// NewKV creates the flag store over the given local store
func NewKV(s *Store) *KV {
	return &KV{store: s}
}

// Get returns the value for a key and whether it was present
func (kv *KV) Get(key string) (string, bool) {
	entry := GetByID[models.KVEntry](kv.store, TableKV, key)
	if entry == nil {
		return "", false
	}
	return entry.Value, true
}

// Set writes a key, reporting success
func (kv *KV) Set(key, value string) bool {
	entry := &models.KVEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	return Put(kv.store, TableKV, entry) != SentinelKey
}

// Delete removes a key
func (kv *KV) Delete(key string) {
	Delete(kv.store, TableKV, key)
}

// GetBool interprets a flag value as a boolean
func (kv *KV) GetBool(key string) bool {
	value, ok := kv.Get(key)
	return ok && (value == "true" || value == "1")
}

// SetBool writes a boolean flag
func (kv *KV) SetBool(key string, value bool) bool {
	if value {
		return kv.Set(key, "true")
	}
	return kv.Set(key, "false")
}

// Entries returns every persisted flag
func (kv *KV) Entries() []models.KVEntry {
	return GetAll[models.KVEntry](kv.store, TableKV)
}

// Snapshot captures the current value of the given keys. Missing
// keys are omitted.
func (kv *KV) Snapshot(keys []string) map[string]string {
	snap := make(map[string]string, len(keys))
	for _, key := range keys {
		if value, ok := kv.Get(key); ok {
			snap[key] = value
		}
	}
	return snap
}

// Restore writes back a snapshot
func (kv *KV) Restore(snap map[string]string) {
	for key, value := range snap {
		kv.Set(key, value)
	}
}

// ClearExcept removes every key not on the whitelist
func (kv *KV) ClearExcept(whitelist []string) int {
	keep := make(map[string]bool, len(whitelist))
	for _, key := range whitelist {
		keep[key] = true
	}

	removed := 0
	for _, entry := range kv.Entries() {
		if keep[entry.Key] {
			continue
		}
		kv.Delete(entry.Key)
		removed++
	}
	return removed
}

// DraftKeysOlderThan returns draft keys last touched before cutoff
func (kv *KV) DraftKeysOlderThan(cutoff time.Time) []string {
	var stale []string
	for _, entry := range kv.Entries() {
		if strings.HasPrefix(entry.Key, DraftKeyPrefix) && entry.UpdatedAt.Before(cutoff) {
			stale = append(stale, entry.Key)
		}
	}
	return stale
}
