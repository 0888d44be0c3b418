package models

import "time"

// Magasin represents a partner store mirrored from the remote system
type Magasin struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Nom       string `gorm:"index" json:"nom"`
	Adresse   string `json:"adresse"`
	Telephone string `json:"telephone"`
	Email     string `json:"email"`
	LogoURL   string `json:"logo_url"`
	Actif     bool   `gorm:"default:true" json:"actif"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Magasin model
func (Magasin) TableName() string {
	return "magasins"
}
