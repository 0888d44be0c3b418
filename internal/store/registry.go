package store

import (
	"fmt"

	"github.com/livrex-com/livrexgo/internal/models"
)

// Table identifies a logical table of the local mirror database.
// Using a closed set instead of free-form strings keeps every access
// bound to a known schema.
type Table string

const (
	TableCommandes      Table = "commandes"
	TableLivreurs       Table = "livreurs"
	TableMagasins       Table = "magasins"
	TableUsers          Table = "users"
	TablePendingChanges Table = "pending_changes"
	TableCessions       Table = "cessions"
	TableCachedImages   Table = "cached_images"
	TableKV             Table = "kv_entries"
)

// Model returns a fresh pointer to the row type backing the table
func (t Table) Model() (interface{}, error) {
	switch t {
	case TableCommandes:
		return &models.Commande{}, nil
	case TableLivreurs:
		return &models.Livreur{}, nil
	case TableMagasins:
		return &models.Magasin{}, nil
	case TableUsers:
		return &models.UserAccount{}, nil
	case TablePendingChanges:
		return &models.PendingChange{}, nil
	case TableCessions:
		return &models.Cession{}, nil
	case TableCachedImages:
		return &models.CachedImage{}, nil
	case TableKV:
		return &models.KVEntry{}, nil
	default:
		return nil, fmt.Errorf("unknown table: %s", t)
	}
}

// AllTables lists every table of the local mirror database, used for
// migration and the destructive reset path.
func AllTables() []Table {
	return []Table{
		TableCommandes,
		TableLivreurs,
		TableMagasins,
		TableUsers,
		TablePendingChanges,
		TableCessions,
		TableCachedImages,
		TableKV,
	}
}

// ProbeTables is the fixed set checked by health analysis and repair.
// The kv and image tables are deliberately excluded: the kv store is
// the snapshot mechanism itself, and the image cache is rebuilt from
// remote URLs rather than repaired.
func ProbeTables() []Table {
	return []Table{
		TableCommandes,
		TableLivreurs,
		TableMagasins,
		TableUsers,
		TablePendingChanges,
		TableCessions,
	}
}

// AllModels returns one prototype per table for AutoMigrate
func AllModels() []interface{} {
	ms := make([]interface{}, 0, len(AllTables()))
	for _, t := range AllTables() {
		m, err := t.Model()
		if err != nil {
			continue
		}
		ms = append(ms, m)
	}
	return ms
}
