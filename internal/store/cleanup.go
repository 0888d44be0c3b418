package store

import (
	"fmt"
	"time"
)

// TempEntityTables lists the tables that can hold temporary entities
// created offline.
func TempEntityTables() []Table {
	return []Table{TableCommandes, TableLivreurs, TableMagasins, TableCessions}
}

// DeleteTempOlderThan removes temporary-prefixed rows created before
// cutoff and returns the number deleted. Bounds storage growth for
// offline creates that never synced.
func DeleteTempOlderThan(s *Store, table Table, prefix string, cutoff time.Time) int64 {
	return RunSafe(s.runner, "deleteTemp:"+string(table), 0, func() (int64, error) {
		db := s.DB()
		if db == nil {
			return 0, fmt.Errorf("local store is not open")
		}
		model, err := table.Model()
		if err != nil {
			return 0, err
		}
		res := db.Where("id LIKE ? AND created_at < ?", prefix+"%", cutoff).Delete(model)
		if res.Error != nil {
			return 0, res.Error
		}
		return res.RowsAffected, nil
	})
}

// CleanupPendingChanges removes pending changes enqueued before
// cutoff (epoch ms) or retried past maxRetries, and returns the
// number deleted.
func CleanupPendingChanges(s *Store, cutoffMillis int64, maxRetries int) int64 {
	return RunSafe(s.runner, "cleanupPending", 0, func() (int64, error) {
		db := s.DB()
		if db == nil {
			return 0, fmt.Errorf("local store is not open")
		}
		model, err := TablePendingChanges.Model()
		if err != nil {
			return 0, err
		}
		res := db.Where("timestamp < ? OR retry_count > ?", cutoffMillis, maxRetries).Delete(model)
		if res.Error != nil {
			return 0, res.Error
		}
		return res.RowsAffected, nil
	})
}
