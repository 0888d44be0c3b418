package models

import "time"

// UserRole defines portal user roles
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleMagasin UserRole = "magasin"
	RoleLivreur UserRole = "livreur"
)

// UserAccount represents a portal user.
//
// Store-affiliated users carry denormalized magasin fields so the UI
// can render without a join; the repair engine reconciles them against
// the authoritative Magasin row when they drift.
type UserAccount struct {
	ID           string   `gorm:"primaryKey" json:"id"`
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	Nom          string   `json:"nom"`
	Role         UserRole `gorm:"index" json:"role"`
	PasswordHash string   `json:"-"`

	// Denormalized store affiliation (magasin role only)
	MagasinID        string `gorm:"index" json:"magasin_id"`
	MagasinNom       string `json:"magasin_nom"`
	MagasinAdresse   string `json:"magasin_adresse"`
	MagasinTelephone string `json:"magasin_telephone"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for UserAccount model
func (UserAccount) TableName() string {
	return "users"
}

// HasMagasinAffiliation reports whether this role should carry
// denormalized store fields.
func (u *UserAccount) HasMagasinAffiliation() bool {
	return u.Role == RoleMagasin
}
