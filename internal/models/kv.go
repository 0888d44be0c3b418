package models

import "time"

// KVEntry is a persisted key/value flag outside the table model:
// forced-offline toggle, session token, theme preference, dismissed
// announcements, draft payloads, maintenance timestamps.
type KVEntry struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (KVEntry) TableName() string {
	return "kv_entries"
}
