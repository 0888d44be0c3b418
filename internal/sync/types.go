package sync

import (
	"net/url"
	"time"

	"github.com/livrex-com/livrexgo/internal/models"
)

// EntityType names a synchronized resource of the remote API. Values
// double as REST collection paths and as PendingChange.EntityType.
type EntityType string

const (
	EntityTypeCommandes EntityType = "commandes"
	EntityTypeLivreurs  EntityType = "livreurs"
	EntityTypeMagasins  EntityType = "magasins"
	EntityTypeUsers     EntityType = "users"
	EntityTypeCessions  EntityType = "cessions"
)

// MirroredEntityTypes lists the primary tables refreshed from the
// remote system on every full sync cycle.
func MirroredEntityTypes() []EntityType {
	return []EntityType{EntityTypeCommandes, EntityTypeLivreurs, EntityTypeMagasins}
}

// State is the logical connectivity state of the engine
type State string

const (
	StateOnlineSynced  State = "online_synced"
	StateOnlineSyncing State = "online_syncing"
	StateOffline       State = "offline"
)

// RemoteGateway is the slice of the remote API the sync engine needs
type RemoteGateway interface {
	Health() error
	List(entityType string, query url.Values) ([]map[string]interface{}, error)
	Create(entityType string, payload interface{}) (map[string]interface{}, error)
	Update(entityType, id string, payload interface{}) (map[string]interface{}, error)
	Delete(entityType, id string) error
}

// Mirror is the slice of the local store the sync engine needs.
// Backed by the real store in production, by in-memory fakes in
// tests.
type Mirror interface {
	// Pending-change queue
	ListPending() []models.PendingChange
	SavePending(pc *models.PendingChange) bool
	DeletePending(id string)

	// Commande-specific access (authoritative-field preservation)
	GetCommande(id string) *models.Commande

	// Generic mirroring
	PutEntity(entityType EntityType, row map[string]interface{}) bool
	DeleteEntity(entityType EntityType, id string)
	// ReplaceEntity atomically swaps a temporary row for the
	// server-returned one.
	ReplaceEntity(entityType EntityType, tempID string, row map[string]interface{}) error
	// MirrorAll refreshes a whole table from remote rows
	MirrorAll(entityType EntityType, rows []map[string]interface{}) int
}

// ImageCacher caches remote image references best-effort
type ImageCacher interface {
	CacheURL(originalURL string)
}

// Result summarizes one pending-change replay pass
type Result struct {
	Processed int           `json:"processed"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"` // blocked behind a failed entry for the same entity
	Mirrored  int           `json:"mirrored"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
	Errors    []string      `json:"errors,omitempty"`
}
