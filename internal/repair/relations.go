package repair

import (
	"log"

	"github.com/livrex-com/livrexgo/internal/models"
	"github.com/livrex-com/livrexgo/internal/store"
)

// RelationStore is the user/magasin access the relation repair needs
type RelationStore interface {
	Users() []models.UserAccount
	Magasin(id string) *models.Magasin
	UpdateUser(id string, fields map[string]interface{}) bool
}

// RelationReport counts the outcome of a relation repair pass
type RelationReport struct {
	Fixed  int `json:"fixed"`
	Errors int `json:"errors"`
}

// RepairRelations reconciles the denormalized magasin fields cached
// on user accounts against the authoritative magasin rows. Users
// whose role carries no store affiliation get stray fields cleared.
func (e *Engine) RepairRelations(rs RelationStore) RelationReport {
	report := RelationReport{}

	for _, user := range rs.Users() {
		if !user.HasMagasinAffiliation() {
			if user.MagasinNom == "" && user.MagasinAdresse == "" && user.MagasinTelephone == "" {
				continue
			}
			if rs.UpdateUser(user.ID, map[string]interface{}{
				"magasin_nom":       "",
				"magasin_adresse":   "",
				"magasin_telephone": "",
			}) {
				report.Fixed++
			} else {
				report.Errors++
			}
			continue
		}

		if user.MagasinID == "" {
			continue
		}

		magasin := rs.Magasin(user.MagasinID)
		if magasin == nil {
			log.Printf("⚠️ User %s references missing magasin %s", user.ID, user.MagasinID)
			report.Errors++
			continue
		}

		if user.MagasinNom == magasin.Nom &&
			user.MagasinAdresse == magasin.Adresse &&
			user.MagasinTelephone == magasin.Telephone {
			continue
		}

		if rs.UpdateUser(user.ID, map[string]interface{}{
			"magasin_nom":       magasin.Nom,
			"magasin_adresse":   magasin.Adresse,
			"magasin_telephone": magasin.Telephone,
		}) {
			report.Fixed++
		} else {
			report.Errors++
		}
	}

	log.Printf("🔧 Relation repair: %d fixed, %d errors", report.Fixed, report.Errors)
	return report
}

// storeRelations adapts the real local store to RelationStore
type storeRelations struct {
	store *store.Store
}

// NewStoreRelations binds relation repair to the local store
func NewStoreRelations(s *store.Store) RelationStore {
	return &storeRelations{store: s}
}

func (r *storeRelations) Users() []models.UserAccount {
	return store.GetAll[models.UserAccount](r.store, store.TableUsers)
}

func (r *storeRelations) Magasin(id string) *models.Magasin {
	return store.GetByID[models.Magasin](r.store, store.TableMagasins, id)
}

func (r *storeRelations) UpdateUser(id string, fields map[string]interface{}) bool {
	return store.Update(r.store, store.TableUsers, id, fields) > 0
}
