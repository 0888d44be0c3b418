package data

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/livrex-com/livrexgo/internal/api"
	"github.com/livrex-com/livrexgo/internal/models"
	"github.com/livrex-com/livrexgo/internal/store"
	syncpkg "github.com/livrex-com/livrexgo/internal/sync"
)

// Remote is the slice of the remote API the façade needs
type Remote interface {
	List(entityType string, query url.Values) ([]map[string]interface{}, error)
	Get(entityType, id string) (map[string]interface{}, error)
	Create(entityType string, payload interface{}) (map[string]interface{}, error)
	Update(entityType, id string, payload interface{}) (map[string]interface{}, error)
	Delete(entityType, id string) error
}

// Gate decides whether a network call is allowed right now
type Gate interface {
	ShouldMakeAPICall() bool
}

// queue is the atomic local-write path used while offline: the
// entity mutation and its pending-change entry commit together or
// not at all.
type queue interface {
	Create(model interface{}, pc *models.PendingChange) error
	Update(table store.Table, id string, partial map[string]interface{}, pc *models.PendingChange) error
	Delete(model interface{}, id string, pc *models.PendingChange) error
}

// storeQueue backs the queue with a real store transaction
type storeQueue struct {
	s *store.Store
}

func (q *storeQueue) Create(model interface{}, pc *models.PendingChange) error {
	return q.s.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		return tx.Create(pc).Error
	})
}

func (q *storeQueue) Update(table store.Table, id string, partial map[string]interface{}, pc *models.PendingChange) error {
	return q.s.Transaction(func(tx *gorm.DB) error {
		res := tx.Table(string(table)).Where("id = ?", id).Updates(partial)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%s %s has no local copy to update offline", pc.EntityType, id)
		}
		return tx.Create(pc).Error
	})
}

func (q *storeQueue) Delete(model interface{}, id string, pc *models.PendingChange) error {
	return q.s.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Delete(model).Error; err != nil {
			return err
		}
		return tx.Create(pc).Error
	})
}

// Service is the single data façade callers go through. Every method
// transparently branches on connectivity: online it is remote-first
// with a best-effort local mirror, offline it serves the mirror and
// queues writes for later replay.
type Service struct {
	store  *store.Store
	remote Remote
	gate   Gate
	mirror syncpkg.Mirror
	local  queue
}

// New creates the data façade
func New(s *store.Store, remote Remote, gate Gate, mirror syncpkg.Mirror) *Service {
	return &Service{
		store:  s,
		remote: remote,
		gate:   gate,
		mirror: mirror,
		local:  &storeQueue{s: s},
	}
}

// List returns every entity of a type. Online failures fall back to
// the local mirror instead of surfacing, so reads never break the UI.
func (s *Service) List(entityType syncpkg.EntityType, query url.Values) ([]map[string]interface{}, error) {
	table, err := entityTable(entityType)
	if err != nil {
		return nil, err
	}

	if s.gate.ShouldMakeAPICall() {
		rows, err := s.remote.List(string(entityType), query)
		if err == nil {
			s.mirror.MirrorAll(entityType, rows)
			return rows, nil
		}
		log.Printf("⚠️ Remote list for %s failed, serving local mirror: %v", entityType, err)
	}

	return s.localRows(table, query), nil
}

// Get returns one entity by id. A temporary id is always served
// locally since the remote system has never heard of it.
func (s *Service) Get(entityType syncpkg.EntityType, id string) (map[string]interface{}, error) {
	table, err := entityTable(entityType)
	if err != nil {
		return nil, err
	}

	if !models.IsTempID(id) && s.gate.ShouldMakeAPICall() {
		row, err := s.remote.Get(string(entityType), id)
		if err == nil {
			if row != nil {
				s.mirror.PutEntity(entityType, row)
			}
			return row, nil
		}
		if api.IsNotFound(err) {
			return nil, err
		}
		log.Printf("⚠️ Remote get for %s %s failed, serving local mirror: %v", entityType, id, err)
	}

	return s.localRow(table, id)
}

// Create creates an entity. Offline, the row receives a temporary id
// and the create is queued; the queue entry and the local row are
// written atomically so neither can exist without the other.
func (s *Service) Create(entityType syncpkg.EntityType, payload map[string]interface{}) (map[string]interface{}, error) {
	table, err := entityTable(entityType)
	if err != nil {
		return nil, err
	}

	if s.gate.ShouldMakeAPICall() {
		delete(payload, "id")
		created, err := s.remote.Create(string(entityType), payload)
		if err != nil {
			return nil, err
		}
		s.mirror.PutEntity(entityType, created)
		return created, nil
	}

	// Offline: mint a temporary identity
	tempID := models.TempIDPrefix + uuid.NewString()
	payload["id"] = tempID
	if entityType == syncpkg.EntityTypeCommandes {
		if numero, _ := payload["numero_commande"].(string); numero == "" {
			// Temporary number; the replay mints the real one
			payload["numero_commande"] = models.TempIDPrefix + uuid.NewString()[:8]
		}
		if statut, _ := payload["statut"].(string); statut == "" {
			payload["statut"] = string(models.CommandeStatutEnAttente)
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	model, err := table.Model()
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, model); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", entityType, err)
	}

	pc := &models.PendingChange{
		EntityType: string(entityType),
		EntityID:   tempID,
		Action:     models.PendingActionCreate,
		Data:       data,
	}

	if err := s.local.Create(model, pc); err != nil {
		return nil, classifyWriteError(err)
	}

	log.Printf("📴 Queued offline create for %s %s", entityType, tempID)
	return rowOf(model)
}

// Update applies a partial update. Offline it requires a local copy
// of the entity; updating something never seen locally has no safe
// offline semantics.
func (s *Service) Update(entityType syncpkg.EntityType, id string, partial map[string]interface{}) (map[string]interface{}, error) {
	table, err := entityTable(entityType)
	if err != nil {
		return nil, err
	}

	if !models.IsTempID(id) && s.gate.ShouldMakeAPICall() {
		delete(partial, "id")
		updated, err := s.remote.Update(string(entityType), id, partial)
		if err != nil {
			return nil, err
		}
		if updated != nil {
			s.mirror.PutEntity(entityType, updated)
		}
		return updated, nil
	}

	delete(partial, "id")
	partial["updated_at"] = time.Now()

	data, err := json.Marshal(partial)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	pc := &models.PendingChange{
		EntityType: string(entityType),
		EntityID:   id,
		Action:     models.PendingActionUpdate,
		Data:       data,
	}

	if err := s.local.Update(table, id, partial, pc); err != nil {
		return nil, classifyWriteError(err)
	}

	log.Printf("📴 Queued offline update for %s %s", entityType, id)
	return s.localRow(table, id)
}

// Delete removes an entity. Online a remote 404 is tolerated; the
// intent was deletion and the entity is gone either way.
func (s *Service) Delete(entityType syncpkg.EntityType, id string) error {
	table, err := entityTable(entityType)
	if err != nil {
		return err
	}

	if !models.IsTempID(id) && s.gate.ShouldMakeAPICall() {
		if err := s.remote.Delete(string(entityType), id); err != nil && !api.IsNotFound(err) {
			return err
		}
		store.Delete(s.store, table, id)
		return nil
	}

	pc := &models.PendingChange{
		EntityType: string(entityType),
		EntityID:   id,
		Action:     models.PendingActionDelete,
	}

	model, err := table.Model()
	if err != nil {
		return err
	}

	if err := s.local.Delete(model, id, pc); err != nil {
		return classifyWriteError(err)
	}

	log.Printf("📴 Queued offline delete for %s %s", entityType, id)
	return nil
}

// PendingCount returns the queued-change backlog size
func (s *Service) PendingCount() int64 {
	return store.Count(s.store, store.TablePendingChanges)
}

func (s *Service) localRows(table store.Table, query url.Values) []map[string]interface{} {
	rows := []map[string]interface{}{}

	switch table {
	case store.TableCommandes:
		items := store.GetAll[models.Commande](s.store, table)
		if date := query.Get("date_livraison"); date != "" {
			items = filterCommandes(items, func(c models.Commande) bool { return c.DateLivraison == date })
		}
		if magasin := query.Get("magasin_id"); magasin != "" {
			items = filterCommandes(items, func(c models.Commande) bool { return c.MagasinID == magasin })
		}
		for i := range items {
			if row, err := rowOf(&items[i]); err == nil {
				rows = append(rows, row)
			}
		}
	case store.TableLivreurs:
		for _, item := range store.GetAll[models.Livreur](s.store, table) {
			if row, err := rowOf(&item); err == nil {
				rows = append(rows, row)
			}
		}
	case store.TableMagasins:
		for _, item := range store.GetAll[models.Magasin](s.store, table) {
			if row, err := rowOf(&item); err == nil {
				rows = append(rows, row)
			}
		}
	case store.TableUsers:
		for _, item := range store.GetAll[models.UserAccount](s.store, table) {
			if row, err := rowOf(&item); err == nil {
				rows = append(rows, row)
			}
		}
	case store.TableCessions:
		for _, item := range store.GetAll[models.Cession](s.store, table) {
			if row, err := rowOf(&item); err == nil {
				rows = append(rows, row)
			}
		}
	}

	return rows
}

func (s *Service) localRow(table store.Table, id string) (map[string]interface{}, error) {
	switch table {
	case store.TableCommandes:
		if item := store.GetByID[models.Commande](s.store, table, id); item != nil {
			return rowOf(item)
		}
	case store.TableLivreurs:
		if item := store.GetByID[models.Livreur](s.store, table, id); item != nil {
			return rowOf(item)
		}
	case store.TableMagasins:
		if item := store.GetByID[models.Magasin](s.store, table, id); item != nil {
			return rowOf(item)
		}
	case store.TableUsers:
		if item := store.GetByID[models.UserAccount](s.store, table, id); item != nil {
			return rowOf(item)
		}
	case store.TableCessions:
		if item := store.GetByID[models.Cession](s.store, table, id); item != nil {
			return rowOf(item)
		}
	}
	return nil, nil
}

func entityTable(entityType syncpkg.EntityType) (store.Table, error) {
	switch entityType {
	case syncpkg.EntityTypeCommandes:
		return store.TableCommandes, nil
	case syncpkg.EntityTypeLivreurs:
		return store.TableLivreurs, nil
	case syncpkg.EntityTypeMagasins:
		return store.TableMagasins, nil
	case syncpkg.EntityTypeUsers:
		return store.TableUsers, nil
	case syncpkg.EntityTypeCessions:
		return store.TableCessions, nil
	default:
		return "", fmt.Errorf("unknown entity type: %s", entityType)
	}
}

func filterCommandes(items []models.Commande, keep func(models.Commande) bool) []models.Commande {
	out := items[:0:0]
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// rowOf converts a typed model into the map form handlers return
func rowOf(model interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(model)
	if err != nil {
		return nil, err
	}
	var row map[string]interface{}
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, err
	}
	return row, nil
}

// classifyWriteError maps a failed local write to the sentinel the
// callers branch on when storage is full.
func classifyWriteError(err error) error {
	if api.IsQuotaError(err) {
		return fmt.Errorf("%w: %v", api.ErrStorageQuota, err)
	}
	return err
}
