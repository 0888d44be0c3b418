package models

import (
	"time"

	"gorm.io/datatypes"
)

// CessionStatut defines inter-store transfer statuses
type CessionStatut string

const (
	CessionStatutProposee CessionStatut = "proposee"
	CessionStatutAcceptee CessionStatut = "acceptee"
	CessionStatutRefusee  CessionStatut = "refusee"
	CessionStatutTerminee CessionStatut = "terminee"
)

// Cession mirrors a remote inter-store transfer resource
type Cession struct {
	ID             string         `gorm:"primaryKey" json:"id"`
	MagasinSource  string         `gorm:"index" json:"magasin_source"`
	MagasinCible   string         `gorm:"index" json:"magasin_cible"`
	Produits       datatypes.JSON `json:"produits"`
	Statut         CessionStatut  `gorm:"default:proposee;index" json:"statut"`
	DateCession    string         `json:"date_cession"` // YYYY-MM-DD
	Notes          string         `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Cession model
func (Cession) TableName() string {
	return "cessions"
}
