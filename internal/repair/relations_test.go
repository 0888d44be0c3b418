package repair

import (
	"testing"

	"github.com/livrex-com/livrexgo/internal/models"
)

type fakeRelationStore struct {
	users    []models.UserAccount
	magasins map[string]*models.Magasin
	updates  map[string]map[string]interface{}
}

func (r *fakeRelationStore) Users() []models.UserAccount {
	return r.users
}

func (r *fakeRelationStore) Magasin(id string) *models.Magasin {
	return r.magasins[id]
}

func (r *fakeRelationStore) UpdateUser(id string, fields map[string]interface{}) bool {
	if r.updates == nil {
		r.updates = map[string]map[string]interface{}{}
	}
	r.updates[id] = fields
	return true
}

func TestRepairRelationsSyncsDriftedFields(t *testing.T) {
	rs := &fakeRelationStore{
		users: []models.UserAccount{
			{
				ID: "usr-1", Role: models.RoleMagasin, MagasinID: "mag-1",
				MagasinNom: "Ancien Nom", MagasinAdresse: "Ancienne adresse",
			},
		},
		magasins: map[string]*models.Magasin{
			"mag-1": {ID: "mag-1", Nom: "Primeurs de la Halle", Adresse: "12 rue des Halles", Telephone: "0142367001"},
		},
	}

	report := (&Engine{}).RepairRelations(rs)

	if report.Fixed != 1 || report.Errors != 0 {
		t.Fatalf("expected one fix, got %+v", report)
	}
	fields := rs.updates["usr-1"]
	if fields["magasin_nom"] != "Primeurs de la Halle" {
		t.Errorf("nom should be resynced, got %v", fields["magasin_nom"])
	}
	if fields["magasin_telephone"] != "0142367001" {
		t.Errorf("telephone should be resynced, got %v", fields["magasin_telephone"])
	}
}

func TestRepairRelationsClearsStrayFields(t *testing.T) {
	rs := &fakeRelationStore{
		users: []models.UserAccount{
			{ID: "usr-2", Role: models.RoleLivreur, MagasinNom: "Ne devrait pas être là"},
		},
	}

	report := (&Engine{}).RepairRelations(rs)

	if report.Fixed != 1 {
		t.Fatalf("expected stray fields cleared, got %+v", report)
	}
	if rs.updates["usr-2"]["magasin_nom"] != "" {
		t.Error("stray magasin fields should be blanked")
	}
}

func TestRepairRelationsLeavesConsistentUsersAlone(t *testing.T) {
	rs := &fakeRelationStore{
		users: []models.UserAccount{
			{
				ID: "usr-3", Role: models.RoleMagasin, MagasinID: "mag-1",
				MagasinNom: "Primeurs de la Halle", MagasinAdresse: "12 rue des Halles", MagasinTelephone: "0142367001",
			},
			{ID: "usr-4", Role: models.RoleAdmin},
		},
		magasins: map[string]*models.Magasin{
			"mag-1": {ID: "mag-1", Nom: "Primeurs de la Halle", Adresse: "12 rue des Halles", Telephone: "0142367001"},
		},
	}

	report := (&Engine{}).RepairRelations(rs)

	if report.Fixed != 0 || report.Errors != 0 {
		t.Errorf("nothing to fix, got %+v", report)
	}
	if len(rs.updates) != 0 {
		t.Errorf("no updates expected, got %v", rs.updates)
	}
}

func TestRepairRelationsCountsMissingMagasin(t *testing.T) {
	rs := &fakeRelationStore{
		users: []models.UserAccount{
			{ID: "usr-5", Role: models.RoleMagasin, MagasinID: "mag-gone", MagasinNom: "Orphelin"},
		},
		magasins: map[string]*models.Magasin{},
	}

	report := (&Engine{}).RepairRelations(rs)

	if report.Errors != 1 {
		t.Errorf("dangling magasin reference should count as an error, got %+v", report)
	}
}
