package manager

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/livrex-com/livrexgo/internal/config"
	"github.com/livrex-com/livrexgo/internal/database"
	"github.com/livrex-com/livrexgo/internal/health"
	"github.com/livrex-com/livrexgo/internal/imagecache"
	"github.com/livrex-com/livrexgo/internal/repair"
	"github.com/livrex-com/livrexgo/internal/store"
)

// Repairer runs a check-and-repair pass over the local store
type Repairer interface {
	CheckAndRepair() repair.Result
}

// SyncController lets the manager halt background synchronization
// before a destructive reset and bring it back once the store is
// rebuilt.
type SyncController interface {
	Start() error
	Stop()
}

// CleanupReport counts what a maintenance sweep removed
type CleanupReport struct {
	TempEntities   int64 `json:"tempEntities"`
	PendingChanges int64 `json:"pendingChanges"`
	Drafts         int   `json:"drafts"`
	CachedImages   int   `json:"cachedImages"`
}

// Manager owns the local store lifecycle: startup initialization,
// periodic maintenance, and the destructive full reset.
type Manager struct {
	mu       sync.Mutex
	cfg      *config.SyncConfig
	store    *store.Store
	kv       *store.KV
	monitor  *health.Monitor
	repairer Repairer
	images   *imagecache.Cache

	syncEngine  SyncController
	notify      func(message string)
	initialized bool
	stopChan    chan struct{}
}

// New creates a manager over the shared collaborators
func New(cfg *config.SyncConfig, s *store.Store, kv *store.KV, monitor *health.Monitor, repairer Repairer, images *imagecache.Cache) *Manager {
	return &Manager{
		cfg:      cfg,
		store:    s,
		kv:       kv,
		monitor:  monitor,
		repairer: repairer,
		images:   images,
	}
}

// SetSyncEngine registers the sync engine to halt during resets
func (m *Manager) SetSyncEngine(engine SyncController) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncEngine = engine
}

// SetNotifyFunc registers the user-facing notification sink
func (m *Manager) SetNotifyFunc(fn func(message string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notify = fn
}

// Initialize opens the local store, migrates the schema, verifies
// health, and starts the maintenance loop. Calling it again is a
// no-op until a reset clears the flag.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	if m.initialized {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	log.Println("🚀 Initializing local persistence...")

	if err := m.store.OpenConnection(); err != nil {
		return err
	}
	if err := m.store.Migrate(); err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}

	if m.images != nil {
		m.images.Init()
	}

	// Startup verification: a critical store gets an immediate repair
	// attempt before anything depends on it.
	report := m.monitor.AnalyzeHealth(m.store)
	if report.Level == health.LevelCritical && m.repairer != nil {
		log.Println("⚠️ Local store critical at startup, running repair...")
		m.repairer.CheckAndRepair()
	}

	m.mu.Lock()
	m.initialized = true
	m.stopChan = make(chan struct{})
	stop := m.stopChan
	m.mu.Unlock()

	go m.maintenanceLoop(stop)

	log.Println("✅ Local persistence initialized")
	return nil
}

// IsInitialized reports whether Initialize has completed
func (m *Manager) IsInitialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

// Shutdown stops maintenance and closes the store
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.stopChan != nil {
		close(m.stopChan)
		m.stopChan = nil
	}
	m.initialized = false
	m.mu.Unlock()

	return m.store.CloseConnection()
}

func (m *Manager) maintenanceLoop(stop chan struct{}) {
	interval := time.Duration(m.cfg.MaintenanceHours) * time.Hour
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.runMaintenance()
		case <-stop:
			return
		}
	}
}

func (m *Manager) runMaintenance() {
	log.Println("🧹 Running scheduled local store maintenance...")

	cleaned := m.CleanupTempData()
	log.Printf("🧹 Maintenance removed: %d temp entities, %d pending changes, %d drafts, %d images",
		cleaned.TempEntities, cleaned.PendingChanges, cleaned.Drafts, cleaned.CachedImages)

	report := m.monitor.AnalyzeHealth(m.store)
	if report.Level != health.LevelGood && m.repairer != nil {
		log.Printf("⚠️ Maintenance health check: %s (error rate %.2f), running repair...", report.Level, report.ErrorRate)
		m.repairer.CheckAndRepair()
	}
}

// CleanupTempData removes data past its retention window: temporary
// entities never reconciled, exhausted or ancient pending changes,
// stale form drafts, and expired cached images.
func (m *Manager) CleanupTempData() CleanupReport {
	report := CleanupReport{}
	now := time.Now()

	tempCutoff := now.AddDate(0, 0, -m.cfg.TempRetentionDays)
	for _, table := range store.TempEntityTables() {
		report.TempEntities += store.DeleteTempOlderThan(m.store, table, "temp_", tempCutoff)
	}

	pendingCutoff := now.AddDate(0, 0, -m.cfg.PendingRetentionDays).UnixMilli()
	report.PendingChanges = store.CleanupPendingChanges(m.store, pendingCutoff, m.cfg.MaxSyncRetries)

	draftCutoff := now.AddDate(0, 0, -m.cfg.DraftRetentionDays)
	for _, key := range m.kv.DraftKeysOlderThan(draftCutoff) {
		m.kv.Delete(key)
		report.Drafts++
	}

	if m.images != nil {
		report.CachedImages = m.images.PurgeExpired()
		m.kv.Set(store.KeyLastImageSweep, now.Format(time.RFC3339))
	}

	return report
}

// ResetAllDatabases destroys and rebuilds the local store. Session and
// theme survive through a snapshot; everything else is lost. Pending
// unsynced changes are lost too, which is why callers must confirm
// with the user first.
func (m *Manager) ResetAllDatabases() error {
	log.Println("🛑 Resetting local persistence...")

	snapshot := m.kv.Snapshot(store.ResetWhitelist())

	m.mu.Lock()
	engine := m.syncEngine
	if engine != nil {
		engine.Stop()
	}
	if m.stopChan != nil {
		close(m.stopChan)
		m.stopChan = nil
	}
	m.initialized = false
	m.mu.Unlock()

	if err := m.store.CloseConnection(); err != nil {
		log.Printf("⚠️ Close before reset failed: %v", err)
	}

	dataPath := database.EmbeddedDataPath()
	removeErr := removeDataDir(dataPath)
	if removeErr != nil {
		log.Printf("⚠️ Data directory removal failed, wiping tables in place instead: %v", removeErr)
	}

	if err := m.Initialize(); err != nil {
		return fmt.Errorf("failed to rebuild local store after reset: %w", err)
	}

	if resetNeedsWipe(dataPath, removeErr) {
		m.wipeEphemeralState()
	}

	m.kv.Restore(snapshot)

	if engine != nil && m.cfg.Enabled {
		if err := engine.Start(); err != nil {
			log.Printf("⚠️ Sync engine restart after reset failed: %v", err)
		}
	}

	if m.notify != nil {
		m.notify("Les données locales ont été réinitialisées. Les modifications non synchronisées ont été perdues.")
	}
	log.Println("✅ Local persistence reset completed")
	return nil
}

// resetNeedsWipe reports whether the reset must clear tables in
// place: either the store is external (no embedded data directory)
// or the directory could not be removed.
func resetNeedsWipe(dataPath string, removeErr error) bool {
	return dataPath == "" || removeErr != nil
}

// wipeEphemeralState clears every table in place and drops kv
// entries outside the reset whitelist. Used when the data directory
// cannot simply be deleted.
func (m *Manager) wipeEphemeralState() {
	for _, table := range store.AllTables() {
		if table == store.TableKV {
			continue
		}
		store.Clear(m.store, table)
	}
	cleared := m.kv.ClearExcept(store.ResetWhitelist())
	log.Printf("🧹 Wiped local tables in place (%d kv entries cleared)", cleared)
}

// removeDataDir deletes the embedded cluster directory, retrying while
// a just-stopped postgres process still holds files open.
func removeDataDir(path string) error {
	if path == "" {
		return nil
	}

	var lastErr error
	for attempt := 0; attempt < 5; attempt++ {
		lastErr = os.RemoveAll(path)
		if lastErr == nil {
			return nil
		}
		log.Printf("⚠️ Data directory removal blocked (attempt %d): %v", attempt+1, lastErr)
		time.Sleep(500 * time.Millisecond)
	}
	return lastErr
}
