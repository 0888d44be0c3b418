package models

import "time"

// LivreurStatut defines driver availability states
type LivreurStatut string

const (
	LivreurStatutActif      LivreurStatut = "actif"
	LivreurStatutEnTournee  LivreurStatut = "en_tournee"
	LivreurStatutIndisponible LivreurStatut = "indisponible"
)

// Livreur represents a delivery driver mirrored from the remote system
type Livreur struct {
	ID        string        `gorm:"primaryKey" json:"id"`
	Nom       string        `gorm:"index" json:"nom"`
	Prenom    string        `json:"prenom"`
	Telephone string        `json:"telephone"`
	Email     string        `json:"email"`
	MagasinID string        `gorm:"index" json:"magasin_id"`
	Statut    LivreurStatut `gorm:"default:actif" json:"statut"`
	PhotoURL  string        `json:"photo_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Livreur model
func (Livreur) TableName() string {
	return "livreurs"
}
