package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/google/uuid"
)

// PendingAction defines the kind of queued mutation
type PendingAction string

const (
	PendingActionCreate PendingAction = "create"
	PendingActionUpdate PendingAction = "update"
	PendingActionDelete PendingAction = "delete"
)

// PendingChange is a mutation queued while the remote API was
// unreachable, awaiting replay in enqueue-timestamp order.
type PendingChange struct {
	ID         string         `gorm:"primaryKey" json:"id"`
	EntityType string         `gorm:"type:varchar(50);not null;index:idx_pending_entity" json:"entityType"`
	EntityID   string         `gorm:"type:varchar(255);not null;index:idx_pending_entity" json:"entityId"`
	Action     PendingAction  `gorm:"type:varchar(20);not null" json:"action"`
	Data       datatypes.JSON `json:"data"`
	Timestamp  int64          `gorm:"not null;index" json:"timestamp"` // epoch ms
	Error      *string        `gorm:"type:text" json:"error,omitempty"`
	RetryCount int            `gorm:"default:0" json:"retryCount"`

	CreatedAt time.Time `json:"createdAt"`
}

// TableName specifies the table name
func (PendingChange) TableName() string {
	return "pending_changes"
}

// BeforeCreate assigns id and timestamp when absent
func (pc *PendingChange) BeforeCreate(tx *gorm.DB) error {
	if pc.ID == "" {
		pc.ID = uuid.NewString()
	}
	if pc.Timestamp == 0 {
		pc.Timestamp = time.Now().UnixMilli()
	}
	return nil
}
