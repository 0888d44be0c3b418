package sync

import (
	"encoding/json"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/livrex-com/livrexgo/internal/models"
	"github.com/livrex-com/livrexgo/internal/store"
)

// StoreMirror implements Mirror over the real local store
type StoreMirror struct {
	store *store.Store
}

// NewStoreMirror binds a Mirror to the local store
func NewStoreMirror(s *store.Store) *StoreMirror {
	return &StoreMirror{store: s}
}

func entityTable(entityType EntityType) (store.Table, error) {
	switch entityType {
	case EntityTypeCommandes:
		return store.TableCommandes, nil
	case EntityTypeLivreurs:
		return store.TableLivreurs, nil
	case EntityTypeMagasins:
		return store.TableMagasins, nil
	case EntityTypeUsers:
		return store.TableUsers, nil
	case EntityTypeCessions:
		return store.TableCessions, nil
	default:
		return "", fmt.Errorf("unknown entity type: %s", entityType)
	}
}

// ListPending returns the queue ordered by enqueue timestamp
func (m *StoreMirror) ListPending() []models.PendingChange {
	pending := store.GetAll[models.PendingChange](m.store, store.TablePendingChanges)
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Timestamp < pending[j].Timestamp
	})
	return pending
}

// SavePending upserts a pending change
func (m *StoreMirror) SavePending(pc *models.PendingChange) bool {
	return store.Put(m.store, store.TablePendingChanges, pc) != store.SentinelKey
}

// DeletePending removes a replayed entry
func (m *StoreMirror) DeletePending(id string) {
	store.Delete(m.store, store.TablePendingChanges, id)
}

// GetCommande fetches the last known local copy of a commande
func (m *StoreMirror) GetCommande(id string) *models.Commande {
	return store.GetByID[models.Commande](m.store, store.TableCommandes, id)
}

// PutEntity mirrors one remote row into its local table
func (m *StoreMirror) PutEntity(entityType EntityType, row map[string]interface{}) bool {
	switch entityType {
	case EntityTypeCommandes:
		return putDecoded[models.Commande](m.store, store.TableCommandes, row)
	case EntityTypeLivreurs:
		return putDecoded[models.Livreur](m.store, store.TableLivreurs, row)
	case EntityTypeMagasins:
		return putDecoded[models.Magasin](m.store, store.TableMagasins, row)
	case EntityTypeUsers:
		return putDecoded[models.UserAccount](m.store, store.TableUsers, row)
	case EntityTypeCessions:
		return putDecoded[models.Cession](m.store, store.TableCessions, row)
	default:
		return false
	}
}

// DeleteEntity removes one row from its local table
func (m *StoreMirror) DeleteEntity(entityType EntityType, id string) {
	table, err := entityTable(entityType)
	if err != nil {
		return
	}
	store.Delete(m.store, table, id)
}

// ReplaceEntity atomically deletes the temporary row and writes the
// server-returned one, so no reader ever observes both.
func (m *StoreMirror) ReplaceEntity(entityType EntityType, tempID string, row map[string]interface{}) error {
	switch entityType {
	case EntityTypeCommandes:
		return replaceDecoded[models.Commande](m.store, tempID, row)
	case EntityTypeLivreurs:
		return replaceDecoded[models.Livreur](m.store, tempID, row)
	case EntityTypeMagasins:
		return replaceDecoded[models.Magasin](m.store, tempID, row)
	case EntityTypeUsers:
		return replaceDecoded[models.UserAccount](m.store, tempID, row)
	case EntityTypeCessions:
		return replaceDecoded[models.Cession](m.store, tempID, row)
	default:
		return fmt.Errorf("unknown entity type: %s", entityType)
	}
}

// MirrorAll upserts every remote row into the local table and
// returns how many landed.
func (m *StoreMirror) MirrorAll(entityType EntityType, rows []map[string]interface{}) int {
	count := 0
	for _, row := range rows {
		if m.PutEntity(entityType, row) {
			count++
		}
	}
	return count
}

func decodeRow[T any](row map[string]interface{}) (*T, error) {
	data, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("failed to encode remote row: %w", err)
	}
	var model T
	if err := json.Unmarshal(data, &model); err != nil {
		return nil, fmt.Errorf("failed to decode remote row: %w", err)
	}
	return &model, nil
}

func putDecoded[T any](s *store.Store, table store.Table, row map[string]interface{}) bool {
	model, err := decodeRow[T](row)
	if err != nil {
		return false
	}
	return store.Put(s, table, model) != store.SentinelKey
}

func replaceDecoded[T any](s *store.Store, tempID string, row map[string]interface{}) error {
	model, err := decodeRow[T](row)
	if err != nil {
		return err
	}
	return s.Transaction(func(tx *gorm.DB) error {
		var zero T
		if err := tx.Where("id = ?", tempID).Delete(&zero).Error; err != nil {
			return err
		}
		return tx.Save(model).Error
	})
}
