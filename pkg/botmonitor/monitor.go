package botmonitor

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	StageInbound = "inbound"
	StageCommand = "command"
	StageEdit    = "edit"

	StatusOK      = "ok"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

type Event struct {
	Timestamp  time.Time         `json:"timestamp"`
	TraceID    string            `json:"trace_id"`
	PeerID     int64             `json:"peer_id"`
	MessageID  int64             `json:"message_id"`
	Stage      string            `json:"stage"`       // inbound | command | edit
	Status     string            `json:"status"`      // ok | error | skipped
	Error      string            `json:"error"`       // optional
	Metadata   map[string]string `json:"metadata"`    // optional
	DurationMs int64             `json:"duration_ms"` // optional
}

type Stats struct {
	TotalInbound  int64   `json:"total_inbound"`
	TotalCommands int64   `json:"total_commands"`
	TotalEdits    int64   `json:"total_edits"`
	TotalErrors   int64   `json:"total_errors"`
	RecentEvents  []Event `json:"recent_events"`
}

// Monitor keeps counters and a ring buffer of the most recent events.
type Monitor struct {
	eventsMu sync.Mutex
	events   []Event
	idx      int
	count    int
	ttl      time.Duration

	totalInbound  int64
	totalCommands int64
	totalEdits    int64
	totalErrors   int64
}

// New creates a monitor holding up to size events. Events older than ttl are
// left out of GetStats; zero keeps them all.
func New(size int, ttl time.Duration) *Monitor {
	if size <= 0 {
		size = 200
	}
	return &Monitor{events: make([]Event, size), ttl: ttl}
}

func (m *Monitor) Record(e Event) {
	e.Timestamp = time.Now().UTC()

	if e.Status == StatusOK {
		switch e.Stage {
		case StageInbound:
			atomic.AddInt64(&m.totalInbound, 1)
		case StageCommand:
			atomic.AddInt64(&m.totalCommands, 1)
		case StageEdit:
			atomic.AddInt64(&m.totalEdits, 1)
		}
	}
	if e.Status == StatusError {
		atomic.AddInt64(&m.totalErrors, 1)
	}

	m.eventsMu.Lock()
	m.events[m.idx] = e
	m.idx = (m.idx + 1) % len(m.events)
	if m.count < len(m.events) {
		m.count++
	}
	m.eventsMu.Unlock()
}

func (m *Monitor) GetStats() Stats {
	m.eventsMu.Lock()
	defer m.eventsMu.Unlock()

	res := make([]Event, 0, m.count)
	cutoff := time.Time{}
	if m.ttl > 0 {
		cutoff = time.Now().UTC().Add(-m.ttl)
	}
	start := (m.idx - m.count) % len(m.events)
	if start < 0 {
		start += len(m.events)
	}
	for i := 0; i < m.count; i++ {
		e := m.events[(start+i)%len(m.events)]
		if !cutoff.IsZero() && !e.Timestamp.IsZero() && e.Timestamp.Before(cutoff) {
			continue
		}
		res = append(res, e)
	}

	return Stats{
		TotalInbound:  atomic.LoadInt64(&m.totalInbound),
		TotalCommands: atomic.LoadInt64(&m.totalCommands),
		TotalEdits:    atomic.LoadInt64(&m.totalEdits),
		TotalErrors:   atomic.LoadInt64(&m.totalErrors),
		RecentEvents:  res,
	}
}

// LogRecent writes the buffered events to the logger of log at debug level,
// oldest first.
func (m *Monitor) LogRecent(log *logrus.Entry) {
	if !log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	for _, e := range m.GetStats().RecentEvents {
		fields := logrus.Fields{
			"trace_id":    e.TraceID,
			"peer_id":     e.PeerID,
			"message_id":  e.MessageID,
			"stage":       e.Stage,
			"status":      e.Status,
			"duration_ms": e.DurationMs,
		}
		if e.Error != "" {
			fields["error"] = e.Error
		}
		for k, v := range e.Metadata {
			fields[k] = v
		}
		logrus.NewEntry(log.Logger).WithFields(fields).Debug("[MONITOR] Recent event")
	}
}
