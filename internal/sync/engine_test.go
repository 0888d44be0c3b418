package sync

import (
	"sync"
	"testing"
	"time"

	"github.com/livrex-com/livrexgo/internal/config"
	"github.com/livrex-com/livrexgo/internal/models"
)

// signalMirror flags every queue drain so tests can observe that a
// sync cycle actually ran.
type signalMirror struct {
	fakeMirror
	listed chan struct{}
}

func (m *signalMirror) ListPending() []models.PendingChange {
	select {
	case m.listed <- struct{}{}:
	default:
	}
	return nil
}

func TestEngineRestartAfterStop(t *testing.T) {
	conn := NewConnectivity(&fakeHealth{}, nil, time.Hour)
	conn.Probe()

	mirror := &signalMirror{listed: make(chan struct{}, 8)}
	engine := NewEngine(&config.SyncConfig{}, &fakeGateway{}, mirror, conn)

	if err := engine.Start(); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	engine.Stop()

	if err := engine.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	defer engine.Stop()

	engine.RequestSync()

	select {
	case <-mirror.listed:
	case <-time.After(2 * time.Second):
		t.Fatal("restarted engine never processed a sync request")
	}
}

func TestEngineStartStopConcurrent(t *testing.T) {
	conn := NewConnectivity(&fakeHealth{}, nil, time.Hour)
	engine := NewEngine(&config.SyncConfig{}, &fakeGateway{}, &fakeMirror{}, conn)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			engine.Start()
		}()
		go func() {
			defer wg.Done()
			engine.Stop()
		}()
	}
	wg.Wait()
	engine.Stop()
}
