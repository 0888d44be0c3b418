package health

import (
	"log"
	"sync"
	"time"

	"github.com/livrex-com/livrexgo/internal/store"
)

// Level classifies the local store health
type Level string

const (
	LevelGood     Level = "good"
	LevelDegraded Level = "degraded"
	LevelCritical Level = "critical"
)

const (
	historyLimit   = 50 // most recent operations kept
	analysisWindow = 20 // operations considered for the error rate

	criticalErrorRate = 0.3
	degradedErrorRate = 0.1
)

// OperationRecord is one entry of the rolling operation history.
// Session-scoped; never persisted.
type OperationRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Operation string    `json:"operation"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
}

// Report is the outcome of a health analysis
type Report struct {
	Level              Level    `json:"level"`
	ErrorRate          float64  `json:"errorRate"`
	OperationsAnalyzed int      `json:"operationsAnalyzed"`
	InaccessibleTables []string `json:"inaccessibleTables"`
}

// TableProber checks basic accessibility of a table. Implemented by
// the local store.
type TableProber interface {
	Probe(table store.Table) error
}

// Monitor observes every local-store operation, classifies overall
// health from recent history, and rate-limits user-facing alerts.
type Monitor struct {
	mu      sync.Mutex
	history []OperationRecord

	// Rate-limited alerting
	failureCount   int
	windowStart    time.Time
	alertThreshold int
	alertWindow    time.Duration
	alertFn        func(message string)
}

// NewMonitor creates a monitor with the given alert threshold and
// window. alertFn may be nil; alerts then only reach the log.
func NewMonitor(alertThreshold int, alertWindow time.Duration) *Monitor {
	if alertThreshold <= 0 {
		alertThreshold = 5
	}
	if alertWindow <= 0 {
		alertWindow = time.Minute
	}
	return &Monitor{
		history:        make([]OperationRecord, 0, historyLimit),
		alertThreshold: alertThreshold,
		alertWindow:    alertWindow,
	}
}

// SetAlertFunc registers the user-facing alert sink
func (m *Monitor) SetAlertFunc(fn func(message string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alertFn = fn
}

// Record implements store.Recorder: every operation outcome lands in
// the rolling history, and bursts of failures trigger a one-shot
// alert.
func (m *Monitor) Record(operation string, success bool, err error) {
	m.mu.Lock()

	record := OperationRecord{
		Timestamp: time.Now(),
		Operation: operation,
		Success:   success,
	}
	if err != nil {
		record.Error = err.Error()
	}

	m.history = append(m.history, record)
	if len(m.history) > historyLimit {
		m.history = m.history[len(m.history)-historyLimit:]
	}

	var alert func(string)
	var message string

	if success {
		m.failureCount = 0
	} else {
		now := time.Now()
		if m.failureCount == 0 || now.Sub(m.windowStart) > m.alertWindow {
			m.windowStart = now
			m.failureCount = 0
		}
		m.failureCount++

		if m.failureCount >= m.alertThreshold {
			message = "Des erreurs de stockage local répétées ont été détectées. Une réparation est recommandée."
			alert = m.alertFn
			m.failureCount = 0
		}
	}

	m.mu.Unlock()

	if message != "" {
		log.Printf("⚠️ Health alert: %d local store failures within %v", m.alertThreshold, m.alertWindow)
		if alert != nil {
			alert(message)
		}
	}
}

// History returns a copy of the operation history, oldest first
func (m *Monitor) History() []OperationRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]OperationRecord, len(m.history))
	copy(out, m.history)
	return out
}

// ClearWarning resets the failure counters and purges failed entries
// from the history. This is the explicit acknowledgment path; it does
// not verify that anything was actually repaired.
func (m *Monitor) ClearWarning() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.failureCount = 0
	m.windowStart = time.Time{}

	kept := m.history[:0]
	for _, record := range m.history {
		if record.Success {
			kept = append(kept, record)
		}
	}
	m.history = kept
}

// AnalyzeHealth computes the error rate over recent history and
// probes every known table. Any inaccessible table is critical on
// its own.
func (m *Monitor) AnalyzeHealth(prober TableProber) Report {
	m.mu.Lock()
	window := m.history
	if len(window) > analysisWindow {
		window = window[len(window)-analysisWindow:]
	}

	failures := 0
	for _, record := range window {
		if !record.Success {
			failures++
		}
	}
	analyzed := len(window)
	m.mu.Unlock()

	var errorRate float64
	if analyzed > 0 {
		errorRate = float64(failures) / float64(analyzed)
	}

	var inaccessible []string
	if prober != nil {
		for _, table := range store.ProbeTables() {
			if err := prober.Probe(table); err != nil {
				log.Printf("⚠️ Table %s failed accessibility probe: %v", table, err)
				inaccessible = append(inaccessible, string(table))
			}
		}
	}

	report := Report{
		ErrorRate:          errorRate,
		OperationsAnalyzed: analyzed,
		InaccessibleTables: inaccessible,
	}

	switch {
	case len(inaccessible) > 0:
		report.Level = LevelCritical
	case errorRate >= criticalErrorRate:
		report.Level = LevelCritical
	case errorRate >= degradedErrorRate:
		report.Level = LevelDegraded
	default:
		report.Level = LevelGood
	}

	return report
}
