package models

import "time"

// CachedImage caches a remote image reference for offline viewing.
// The blob is populated lazily and purged after the retention window.
type CachedImage struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	OriginalURL string    `gorm:"uniqueIndex;not null" json:"originalUrl"`
	ManagedURL  string    `json:"managedUrl"`
	Blob        []byte    `json:"-"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	LastUpdated time.Time `gorm:"index" json:"lastUpdated"`
}

// TableName specifies the table name
func (CachedImage) TableName() string {
	return "cached_images"
}
