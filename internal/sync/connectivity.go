package sync

import (
	"log"
	"sync"
	"time"

	"github.com/livrex-com/livrexgo/internal/store"
)

// HealthProber checks remote liveness
type HealthProber interface {
	Health() error
}

// Event describes a connectivity change delivered to subscribers
type Event struct {
	Online        bool      `json:"online"`
	ForcedOffline bool      `json:"forcedOffline"`
	Timestamp     time.Time `json:"timestamp"`
}

// Connectivity tracks the online/offline posture of the system. It
// probes the remote /health endpoint periodically and honors a
// user-settable forced-offline override that takes precedence over
// actual connectivity and survives restarts via the kv store.
type Connectivity struct {
	mu sync.RWMutex

	remote   HealthProber
	kv       *store.KV
	interval time.Duration

	online        bool
	forcedOffline bool

	running  bool
	stopChan chan struct{}

	subscribers map[int]func(Event)
	nextSubID   int
}

// NewConnectivity creates a connectivity tracker. The persisted
// forced-offline flag is restored immediately.
func NewConnectivity(remote HealthProber, kv *store.KV, interval time.Duration) *Connectivity {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	c := &Connectivity{
		remote:      remote,
		kv:          kv,
		interval:    interval,
		subscribers: make(map[int]func(Event)),
	}

	if kv != nil && kv.GetBool(store.KeyForcedOffline) {
		c.forcedOffline = true
		log.Println("📴 Forced-offline mode restored from persisted flag")
	}

	return c
}

// Start begins periodic health probing. An immediate probe runs
// before the loop so startup code sees a real posture.
func (c *Connectivity) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.stopChan = make(chan struct{})
	c.mu.Unlock()

	c.Probe()
	go c.probeLoop()
}

// Stop stops probing
func (c *Connectivity) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	c.running = false
	close(c.stopChan)
}

func (c *Connectivity) probeLoop() {
	c.mu.RLock()
	stop := c.stopChan
	c.mu.RUnlock()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Probe()
		case <-stop:
			return
		}
	}
}

// Probe checks remote liveness once and fires subscriber callbacks
// on transitions.
func (c *Connectivity) Probe() bool {
	online := c.remote != nil && c.remote.Health() == nil

	c.mu.Lock()
	changed := online != c.online
	c.online = online
	forced := c.forcedOffline
	c.mu.Unlock()

	if changed {
		if online {
			log.Println("🌐 Remote API reachable, back online")
		} else {
			log.Println("📴 Remote API unreachable, switching to offline queueing")
		}
		c.notify(Event{Online: online, ForcedOffline: forced, Timestamp: time.Now()})
	}
	return online
}

// IsOnline reports actual network posture, ignoring the override
func (c *Connectivity) IsOnline() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online
}

// ForcedOffline reports whether the override is set
func (c *Connectivity) ForcedOffline() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.forcedOffline
}

// SetForcedOffline sets the override, persists it, and notifies
// every subscriber synchronously.
func (c *Connectivity) SetForcedOffline(forced bool) {
	c.mu.Lock()
	if c.forcedOffline == forced {
		c.mu.Unlock()
		return
	}
	c.forcedOffline = forced
	online := c.online
	c.mu.Unlock()

	if c.kv != nil {
		c.kv.SetBool(store.KeyForcedOffline, forced)
	}

	if forced {
		log.Println("📴 Forced-offline mode enabled")
	} else {
		log.Println("🌐 Forced-offline mode disabled")
	}

	c.notify(Event{Online: online, ForcedOffline: forced, Timestamp: time.Now()})
}

// ShouldMakeAPICall is the single gate every data method consults
// before touching the network: true only when the network is up AND
// forced-offline is not set.
func (c *Connectivity) ShouldMakeAPICall() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.online && !c.forcedOffline
}

// Subscribe registers a callback for connectivity events and returns
// its teardown function.
func (c *Connectivity) Subscribe(fn func(Event)) func() {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

func (c *Connectivity) notify(event Event) {
	c.mu.RLock()
	fns := make([]func(Event), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		fns = append(fns, fn)
	}
	c.mu.RUnlock()

	for _, fn := range fns {
		fn(event)
	}
}
