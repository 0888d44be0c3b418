package sync

import (
	"log"
	"sync"
	"time"

	"github.com/livrex-com/livrexgo/internal/config"
)

// Engine orchestrates pending-change replay and mirror refresh. It
// reacts to reconnect events, runs a periodic timer while online,
// and serves explicit user-triggered sync requests.
type Engine struct {
	mu sync.RWMutex

	// Core components
	cfg    *config.SyncConfig
	remote RemoteGateway
	mirror Mirror
	conn   *Connectivity
	dupes  *DuplicateDetector
	images ImageCacher // optional

	// State
	isRunning      bool
	syncInProgress bool
	lastSync       time.Time
	lastResult     *Result

	// Channels
	stopChan chan struct{}
	syncChan chan struct{}

	unsubscribe func()
	eventFn     func(name string, payload interface{})
}

// NewEngine creates a sync engine
func NewEngine(cfg *config.SyncConfig, remote RemoteGateway, mirror Mirror, conn *Connectivity) *Engine {
	return &Engine{
		cfg:      cfg,
		remote:   remote,
		mirror:   mirror,
		conn:     conn,
		dupes:    NewDuplicateDetector(cfg.DuplicateMatchFields),
		syncChan: make(chan struct{}, 16),
	}
}

// SetImageCacher wires the optional image cache used during mirror
// refresh.
func (e *Engine) SetImageCacher(images ImageCacher) {
	e.images = images
}

// SetEventFunc registers a sink for engine events (sync_completed),
// typically the websocket hub.
func (e *Engine) SetEventFunc(fn func(name string, payload interface{})) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.eventFn = fn
}

// Start starts the sync engine. A stopped engine can be started
// again; every run gets a fresh stop channel.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.isRunning {
		e.mu.Unlock()
		return nil
	}
	e.isRunning = true
	e.stopChan = make(chan struct{})
	stop := e.stopChan

	// Reconnect-driven sync
	e.unsubscribe = e.conn.Subscribe(func(event Event) {
		if event.Online && !event.ForcedOffline {
			log.Println("🌐 Reconnected, scheduling synchronization")
			e.RequestSync()
		}
	})
	e.mu.Unlock()

	log.Println("🔄 Sync Engine starting...")

	go e.syncWorker(stop)

	if e.cfg.AutoSyncEnabled {
		go e.autoSyncLoop(stop)
	}

	if e.cfg.SyncOnStartup {
		e.RequestSync()
	}

	log.Println("✅ Sync Engine started")
	return nil
}

// Stop stops the sync engine
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isRunning {
		return
	}

	log.Println("🛑 Stopping Sync Engine...")
	e.isRunning = false
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
	close(e.stopChan)
	log.Println("✅ Sync Engine stopped")
}

// RequestSync queues a synchronization cycle. Duplicate requests
// while one is already queued collapse into a single run.
func (e *Engine) RequestSync() {
	select {
	case e.syncChan <- struct{}{}:
	default:
	}
}

// Conn exposes the connectivity tracker
func (e *Engine) Conn() *Connectivity {
	return e.conn
}

// syncWorker serializes sync cycles
func (e *Engine) syncWorker(stop chan struct{}) {
	for {
		select {
		case <-e.syncChan:
			e.runCycle()
		case <-stop:
			return
		}
	}
}

// autoSyncLoop triggers periodic synchronization while online
func (e *Engine) autoSyncLoop(stop chan struct{}) {
	interval := time.Duration(e.cfg.AutoSyncInterval) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if e.conn.ShouldMakeAPICall() {
				e.RequestSync()
			}
		case <-stop:
			return
		}
	}
}

// runCycle performs one full synchronization cycle: replay the
// pending queue, then refresh the local mirrors of the primary
// tables.
func (e *Engine) runCycle() {
	if !e.conn.ShouldMakeAPICall() {
		log.Println("⏳ Sync requested while offline, staying in queueing mode")
		return
	}

	e.mu.Lock()
	if e.syncInProgress {
		e.mu.Unlock()
		return
	}
	e.syncInProgress = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.syncInProgress = false
		e.mu.Unlock()
	}()

	result := e.ProcessPendingChanges()
	result.Mirrored = e.refreshMirrors()

	e.mu.Lock()
	e.lastSync = time.Now()
	e.lastResult = result
	fn := e.eventFn
	e.mu.Unlock()

	if fn != nil {
		fn("sync_completed", result)
	}
}

// refreshMirrors pulls the primary tables from the remote system
// into the local store and best-effort-caches referenced images.
func (e *Engine) refreshMirrors() int {
	total := 0
	for _, entityType := range MirroredEntityTypes() {
		rows, err := e.remote.List(string(entityType), nil)
		if err != nil {
			log.Printf("⚠️ Mirror refresh for %s failed: %v", entityType, err)
			continue
		}

		total += e.mirror.MirrorAll(entityType, rows)

		if e.images != nil {
			for _, row := range rows {
				for _, field := range []string{"photo_url", "logo_url"} {
					if u, ok := row[field].(string); ok && u != "" {
						e.images.CacheURL(u)
					}
				}
			}
		}
	}
	return total
}

// State returns the logical connectivity state of the engine
func (e *Engine) State() State {
	if !e.conn.ShouldMakeAPICall() {
		return StateOffline
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.syncInProgress {
		return StateOnlineSyncing
	}
	return StateOnlineSynced
}

// Status returns the current sync status for the diagnostic surface
func (e *Engine) Status() map[string]interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return map[string]interface{}{
		"is_running":       e.isRunning,
		"sync_in_progress": e.syncInProgress,
		"state":            e.stateLocked(),
		"last_sync":        e.lastSync,
		"last_result":      e.lastResult,
		"is_online":        e.conn.IsOnline(),
		"forced_offline":   e.conn.ForcedOffline(),
	}
}

func (e *Engine) stateLocked() State {
	if !e.conn.ShouldMakeAPICall() {
		return StateOffline
	}
	if e.syncInProgress {
		return StateOnlineSyncing
	}
	return StateOnlineSynced
}
