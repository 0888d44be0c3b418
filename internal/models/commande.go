package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TempIDPrefix marks entities created offline that have not yet
// received a server-assigned identifier.
const TempIDPrefix = "temp_"

// CommandeStatut defines possible delivery order statuses
type CommandeStatut string

const (
	CommandeStatutEnAttente CommandeStatut = "en_attente" // Awaiting assignment
	CommandeStatutEnCours   CommandeStatut = "en_cours"   // Out for delivery
	CommandeStatutLivree    CommandeStatut = "livree"     // Delivered
	CommandeStatutAnnulee   CommandeStatut = "annulee"    // Cancelled
)

// Commande represents a delivery order mirrored from the remote system
type Commande struct {
	ID             string `gorm:"primaryKey" json:"id"`
	NumeroCommande string `gorm:"uniqueIndex;not null" json:"numero_commande"`

	// Customer information
	ClientNom       string `gorm:"index" json:"client_nom"`
	ClientTelephone string `gorm:"index" json:"client_telephone"`
	ClientAdresse   string `json:"client_adresse"`

	// Delivery scheduling
	DateLivraison    string `gorm:"index" json:"date_livraison"` // YYYY-MM-DD
	CreneauLivraison string `json:"creneau_livraison"`           // delivery slot label

	// Assignment
	MagasinID string `gorm:"index" json:"magasin_id"`
	LivreurID string `gorm:"index" json:"livreur_id"`

	Statut  CommandeStatut `gorm:"default:en_attente;index" json:"statut"`
	Montant float64        `json:"montant"`
	Notes   string         `gorm:"type:text" json:"notes"`

	PhotoURL string         `json:"photo_url"`
	Metadata datatypes.JSON `json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Commande model
func (Commande) TableName() string {
	return "commandes"
}

// BeforeCreate generates an order number before creating
func (c *Commande) BeforeCreate(tx *gorm.DB) error {
	if c.NumeroCommande == "" {
		c.NumeroCommande = GenerateNumeroCommande()
	}
	return nil
}

// IsTemporary reports whether this commande was created offline and
// still awaits a server-assigned identifier.
func (c *Commande) IsTemporary() bool {
	return IsTempID(c.ID)
}

// IsTempID reports whether an identifier carries the temporary prefix
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// GenerateNumeroCommande creates a unique order number
func GenerateNumeroCommande() string {
	return "CMD" + time.Now().Format("20060102") + "-" + randomString(4)
}

// randomString generates a random string of given length
func randomString(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	now := time.Now().UnixNano()
	for i := 0; i < length; i++ {
		result[i] = charset[(now+int64(i))%int64(len(charset))]
	}
	return string(result)
}
