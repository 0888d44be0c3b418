package repair

import (
	"fmt"
	"log"

	"github.com/livrex-com/livrexgo/internal/database"
	"github.com/livrex-com/livrexgo/internal/store"
)

// TableStatus is the outcome of one table's check
type TableStatus string

const (
	StatusOK       TableStatus = "ok"
	StatusRepaired TableStatus = "repaired"
	StatusFailed   TableStatus = "failed"
)

// TableReport describes one table's repair outcome
type TableReport struct {
	Name    string      `json:"name"`
	Status  TableStatus `json:"status"`
	Message string      `json:"message,omitempty"`
}

// Result is the structured outcome of a repair pass
type Result struct {
	Success bool          `json:"success"`
	Tables  []TableReport `json:"tables"`
}

// StoreController is the slice of the local store the repair engine
// drives: probing and connection cycling.
type StoreController interface {
	Probe(table store.Table) error
	CloseConnection() error
	OpenConnection() error
}

// Snapshotter preserves cross-cutting state (session, theme) across
// destructive steps.
type Snapshotter interface {
	Snapshot(keys []string) map[string]string
	Restore(snap map[string]string)
}

// Engine performs staged, best-effort recovery of a broken local
// store: reconnect first, destructive single-table recreation last.
type Engine struct {
	store   StoreController
	adminFn func() database.SchemaAdmin
	kv      Snapshotter
	notify  func(message string)
}

// NewEngine creates a repair engine. adminFn must return a schema
// admin bound to the CURRENT connection, since repair cycles the
// connection mid-pass.
func NewEngine(storeCtl StoreController, adminFn func() database.SchemaAdmin, kv Snapshotter) *Engine {
	return &Engine{
		store:   storeCtl,
		adminFn: adminFn,
		kv:      kv,
	}
}

// SetNotifyFunc registers the user-facing notification sink
func (e *Engine) SetNotifyFunc(fn func(message string)) {
	e.notify = fn
}

// CheckAndRepair probes every known table and repairs the broken
// ones. Session and theme state are snapshotted before any
// destructive step and restored afterwards, because a reconnect
// cycle must not clobber them.
func (e *Engine) CheckAndRepair() Result {
	log.Println("🔧 Starting local store check and repair...")

	var snapshot map[string]string
	if e.kv != nil {
		snapshot = e.kv.Snapshot(store.ResetWhitelist())
	}

	result := Result{Success: true}
	var repaired []string

	for _, table := range store.ProbeTables() {
		report := e.checkTable(table)
		result.Tables = append(result.Tables, report)

		switch report.Status {
		case StatusRepaired:
			repaired = append(repaired, report.Name)
		case StatusFailed:
			result.Success = false
		}
	}

	if e.kv != nil && len(snapshot) > 0 {
		e.kv.Restore(snapshot)
	}

	e.announce(result, repaired)
	return result
}

func (e *Engine) checkTable(table store.Table) TableReport {
	report := TableReport{Name: string(table)}

	if err := e.store.Probe(table); err == nil {
		report.Status = StatusOK
		return report
	}

	log.Printf("⚠️ Table %s failed probe, attempting connection reset...", table)

	// Stage 1: cycle the connection
	if err := e.reconnect(); err == nil {
		if err := e.store.Probe(table); err == nil {
			report.Status = StatusRepaired
			report.Message = "recovered after connection reset"
			return report
		}
	}

	// Stage 2: destructive recreation of this table only
	log.Printf("🔧 Table %s still failing, recreating with known schema...", table)
	if err := e.recreateTable(table); err != nil {
		report.Status = StatusFailed
		report.Message = err.Error()
		return report
	}

	if err := e.store.Probe(table); err != nil {
		report.Status = StatusFailed
		report.Message = fmt.Sprintf("still inaccessible after recreation: %v", err)
		return report
	}

	report.Status = StatusRepaired
	report.Message = "table recreated, previous rows lost"
	return report
}

func (e *Engine) reconnect() error {
	if err := e.store.CloseConnection(); err != nil {
		log.Printf("⚠️ Close during repair failed: %v", err)
	}
	if err := e.store.OpenConnection(); err != nil {
		return fmt.Errorf("failed to reopen local store: %w", err)
	}
	return nil
}

func (e *Engine) recreateTable(table store.Table) error {
	model, err := table.Model()
	if err != nil {
		return err
	}

	admin := e.adminFn()
	if admin == nil {
		return fmt.Errorf("no schema admin available")
	}

	if err := admin.DropTable(model); err != nil {
		return err
	}
	return admin.CreateTable(model)
}

func (e *Engine) announce(result Result, repaired []string) {
	if e.notify == nil {
		return
	}

	if !result.Success {
		e.notify("La réparation automatique a échoué pour certaines tables. Une réinitialisation manuelle est nécessaire depuis les réglages.")
		return
	}
	if len(repaired) > 0 {
		e.notify(fmt.Sprintf("Tables réparées: %v. Les données locales concernées ont été réinitialisées.", repaired))
	}
}
