package store

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/livrex-com/livrexgo/internal/config"
	"github.com/livrex-com/livrexgo/internal/database"
)

// SentinelKey is returned by Add/Put when the write could not be
// performed even after retries.
const SentinelKey = "-1"

// Store is the typed CRUD façade over the local mirror database.
// Every operation runs through the SafeRunner, so callers always get
// a value back; failures are visible only through the health monitor
// and the fallback values themselves.
type Store struct {
	mu     sync.RWMutex
	cfg    config.DatabaseConfig
	db     *database.DB
	runner *SafeRunner
}

// New creates a store. The connection is opened lazily via
// OpenConnection.
func New(cfg config.DatabaseConfig, runner *SafeRunner) *Store {
	return &Store{
		cfg:    cfg,
		runner: runner,
	}
}

// Runner exposes the safe runner for collaborators that wrap their
// own operations (image cache, kv store).
func (s *Store) Runner() *SafeRunner {
	return s.runner
}

// OpenConnection opens the local database connection. No-op when
// already open.
func (s *Store) OpenConnection() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	db, err := database.Connect(s.cfg)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	s.db = db
	return nil
}

// CloseConnection closes the local database connection. No-op when
// already closed.
func (s *Store) CloseConnection() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}

// IsOpen reports whether the connection is currently open
func (s *Store) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db != nil
}

// DB returns the underlying connection, or nil when closed
func (s *Store) DB() *database.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// Migrate synchronizes the schema for every registered table
func (s *Store) Migrate() error {
	db := s.DB()
	if db == nil {
		return fmt.Errorf("local store is not open")
	}
	return db.AutoMigrate(AllModels()...)
}

// Probe attempts a trivial one-row read on a table, bypassing the
// safe runner so corruption is observable. Used by health analysis
// and the repair engine.
func (s *Store) Probe(table Table) error {
	db := s.DB()
	if db == nil {
		return fmt.Errorf("local store is not open")
	}

	var rows []map[string]interface{}
	if err := db.Table(string(table)).Limit(1).Find(&rows).Error; err != nil {
		return fmt.Errorf("table %s is inaccessible: %w", table, err)
	}
	return nil
}

// Transaction runs fn inside an atomic transaction spanning every
// table it touches. Unlike the fallback-returning operations the
// error is surfaced, because a half-applied multi-table write has no
// safe fallback value; the outcome is still recorded for the monitor.
func (s *Store) Transaction(fn func(tx *gorm.DB) error) error {
	db := s.DB()
	if db == nil {
		err := fmt.Errorf("local store is not open")
		s.runner.record("transaction", false, err)
		return err
	}

	err := db.DB.Transaction(fn)
	s.runner.record("transaction", err == nil, err)
	return err
}

// SanitizeKey converts any value into a storage-legal string key.
// Strings and numbers map directly, nil maps to the literal "null",
// anything else becomes its JSON serialization. A value that cannot
// be serialized falls back to a random collision-resistant string.
func SanitizeKey(v interface{}) string {
	switch k := v.(type) {
	case nil:
		return "null"
	case string:
		return k
	case int:
		return strconv.Itoa(k)
	case int64:
		return strconv.FormatInt(k, 10)
	case uint:
		return strconv.FormatUint(uint64(k), 10)
	case float64:
		return strconv.FormatFloat(k, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(k)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			fallback := "key_" + uuid.NewString()
			log.Printf("⚠️ Unserializable key %T, substituting %s", v, fallback)
			return fallback
		}
		return string(data)
	}
}

// GetByID fetches a single row by primary key. Absence is a valid
// nil result, not a failure.
func GetByID[T any](s *Store, table Table, id interface{}) *T {
	return RunSafe(s.runner, "getById:"+string(table), nil, func() (*T, error) {
		db := s.DB()
		if db == nil {
			return nil, fmt.Errorf("local store is not open")
		}

		var rows []T
		err := db.Table(string(table)).Where("id = ?", SanitizeKey(id)).Limit(1).Find(&rows).Error
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, nil
		}
		return &rows[0], nil
	})
}

// Add inserts a row and returns its key, or SentinelKey on failure
func Add[T any](s *Store, table Table, item *T) string {
	return RunSafe(s.runner, "add:"+string(table), SentinelKey, func() (string, error) {
		db := s.DB()
		if db == nil {
			return SentinelKey, fmt.Errorf("local store is not open")
		}
		if err := db.Table(string(table)).Create(item).Error; err != nil {
			return SentinelKey, err
		}
		return primaryKeyOf(item), nil
	})
}

// Put upserts a row keyed by primary key and returns its key
func Put[T any](s *Store, table Table, item *T) string {
	return RunSafe(s.runner, "put:"+string(table), SentinelKey, func() (string, error) {
		db := s.DB()
		if db == nil {
			return SentinelKey, fmt.Errorf("local store is not open")
		}
		if err := db.Table(string(table)).Save(item).Error; err != nil {
			return SentinelKey, err
		}
		return primaryKeyOf(item), nil
	})
}

// Update applies a partial update by primary key and returns the
// number of rows updated.
func Update(s *Store, table Table, id interface{}, partial map[string]interface{}) int64 {
	return RunSafe(s.runner, "update:"+string(table), 0, func() (int64, error) {
		db := s.DB()
		if db == nil {
			return 0, fmt.Errorf("local store is not open")
		}
		res := db.Table(string(table)).Where("id = ?", SanitizeKey(id)).Updates(partial)
		if res.Error != nil {
			return 0, res.Error
		}
		return res.RowsAffected, nil
	})
}

// Delete removes a row by primary key
func Delete(s *Store, table Table, id interface{}) {
	RunSafeErr(s.runner, "delete:"+string(table), func() error {
		db := s.DB()
		if db == nil {
			return fmt.Errorf("local store is not open")
		}
		model, err := table.Model()
		if err != nil {
			return err
		}
		return db.Where("id = ?", SanitizeKey(id)).Delete(model).Error
	})
}

// GetAll returns every row of a table
func GetAll[T any](s *Store, table Table) []T {
	return RunSafe(s.runner, "getAll:"+string(table), []T{}, func() ([]T, error) {
		db := s.DB()
		if db == nil {
			return nil, fmt.Errorf("local store is not open")
		}
		var rows []T
		if err := db.Table(string(table)).Find(&rows).Error; err != nil {
			return nil, err
		}
		return rows, nil
	})
}

// GetPaginated returns one page of rows (offset = page * pageSize)
func GetPaginated[T any](s *Store, table Table, page, pageSize int) []T {
	return RunSafe(s.runner, "getPaginated:"+string(table), []T{}, func() ([]T, error) {
		db := s.DB()
		if db == nil {
			return nil, fmt.Errorf("local store is not open")
		}
		var rows []T
		err := db.Table(string(table)).Offset(page * pageSize).Limit(pageSize).Find(&rows).Error
		if err != nil {
			return nil, err
		}
		return rows, nil
	})
}

// Count returns the number of rows in a table
func Count(s *Store, table Table) int64 {
	return RunSafe(s.runner, "count:"+string(table), 0, func() (int64, error) {
		db := s.DB()
		if db == nil {
			return 0, fmt.Errorf("local store is not open")
		}
		var n int64
		if err := db.Table(string(table)).Count(&n).Error; err != nil {
			return 0, err
		}
		return n, nil
	})
}

// Clear removes every row of a table
func Clear(s *Store, table Table) {
	RunSafeErr(s.runner, "clear:"+string(table), func() error {
		db := s.DB()
		if db == nil {
			return fmt.Errorf("local store is not open")
		}
		model, err := table.Model()
		if err != nil {
			return err
		}
		return db.Where("1 = 1").Delete(model).Error
	})
}

// BulkAdd inserts a batch of rows
func BulkAdd[T any](s *Store, table Table, items []T) {
	if len(items) == 0 {
		return
	}
	RunSafeErr(s.runner, "bulkAdd:"+string(table), func() error {
		db := s.DB()
		if db == nil {
			return fmt.Errorf("local store is not open")
		}
		return db.Table(string(table)).CreateInBatches(items, 100).Error
	})
}

// QueryByIndex fetches the first row where an indexed column matches
func QueryByIndex[T any](s *Store, table Table, column string, value interface{}) *T {
	return RunSafe(s.runner, "queryByIndex:"+string(table), nil, func() (*T, error) {
		db := s.DB()
		if db == nil {
			return nil, fmt.Errorf("local store is not open")
		}
		var rows []T
		err := db.Table(string(table)).Where(column+" = ?", value).Limit(1).Find(&rows).Error
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, nil
		}
		return &rows[0], nil
	})
}

// QueryWhere returns every row where a column matches
func QueryWhere[T any](s *Store, table Table, column string, value interface{}) []T {
	return RunSafe(s.runner, "queryWhere:"+string(table), []T{}, func() ([]T, error) {
		db := s.DB()
		if db == nil {
			return nil, fmt.Errorf("local store is not open")
		}
		var rows []T
		if err := db.Table(string(table)).Where(column+" = ?", value).Find(&rows).Error; err != nil {
			return nil, err
		}
		return rows, nil
	})
}

// DeleteWhere removes every row where a column matches and returns
// the number deleted.
func DeleteWhere(s *Store, table Table, column string, value interface{}) int64 {
	return RunSafe(s.runner, "deleteWhere:"+string(table), 0, func() (int64, error) {
		db := s.DB()
		if db == nil {
			return 0, fmt.Errorf("local store is not open")
		}
		model, err := table.Model()
		if err != nil {
			return 0, err
		}
		res := db.Where(column+" = ?", value).Delete(model)
		if res.Error != nil {
			return 0, res.Error
		}
		return res.RowsAffected, nil
	})
}

// ExportRows dumps every row of a table as generic maps, for the
// diagnostic export endpoint. The table must be registered.
func ExportRows(s *Store, table Table) ([]map[string]interface{}, error) {
	if _, err := table.Model(); err != nil {
		return nil, err
	}
	return RunSafe(s.runner, "export:"+string(table), []map[string]interface{}{}, func() ([]map[string]interface{}, error) {
		db := s.DB()
		if db == nil {
			return nil, fmt.Errorf("local store is not open")
		}
		rows := []map[string]interface{}{}
		if err := db.Table(string(table)).Find(&rows).Error; err != nil {
			return nil, err
		}
		return rows, nil
	}), nil
}

// primaryKeyOf extracts the string "ID" field via JSON round-trip.
// Every registered model exposes its key as "id".
func primaryKeyOf(item interface{}) string {
	data, err := json.Marshal(item)
	if err != nil {
		return SentinelKey
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return SentinelKey
	}
	if id, ok := m["id"]; ok {
		return SanitizeKey(id)
	}
	if key, ok := m["key"]; ok {
		return SanitizeKey(key)
	}
	return SentinelKey
}
