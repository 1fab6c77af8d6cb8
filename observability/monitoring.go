// Package observability aggregates the live counters and process metrics exposed by /health.
package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ProcessStats is the latest sample of the server process taken by the health worker.
type ProcessStats struct {
	PID        int32   `json:"pid"`
	Status     string  `json:"status"`
	CPUPercent float64 `json:"cpu_percent"`
	RAMPercent float32 `json:"ram_percent"`
	RSSMb      uint64  `json:"rss_mb"`
	SampledAt  string  `json:"sampled_at,omitempty"`
}

// MonitoringStats aggregates every metric served by the health endpoint.
type MonitoringStats struct {
	MessagesStored   uint64       `json:"messages_stored"`
	Deliveries       uint64       `json:"deliveries"`
	ActionsFailed    uint64       `json:"actions_failed"`
	ActionsRejected  uint64       `json:"actions_rejected"`
	QueueSize        int          `json:"queue_size"`
	QueueCapacity    int          `json:"queue_capacity"`
	AllocMemMb       uint64       `json:"alloc_mem_mb"`
	NumGC            uint32       `json:"num_gc"`
	Goroutines       int          `json:"goroutines"`
	Process          ProcessStats `json:"process"`
	UptimeSeconds    int64        `json:"uptime_seconds"`
	ConnectionsAlive int          `json:"connections"`
}

// MonitoringManager collects counters from the hot path with atomics and keeps the
// latest process sample under a lock. A nil manager ignores every call.
type MonitoringManager struct {
	log       *slog.Logger
	startedAt time.Time

	messagesStored  atomic.Uint64
	deliveries      atomic.Uint64
	actionsFailed   atomic.Uint64
	actionsRejected atomic.Uint64

	mu            sync.RWMutex
	process       ProcessStats
	queueSize     func() int
	queueCapacity int
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log, startedAt: time.Now()}
}

func (mm *MonitoringManager) IncrMessagesStored() {
	if mm != nil {
		mm.messagesStored.Add(1)
	}
}

func (mm *MonitoringManager) AddDeliveries(n int) {
	if mm != nil && n > 0 {
		mm.deliveries.Add(uint64(n))
	}
}

func (mm *MonitoringManager) IncrActionsFailed() {
	if mm != nil {
		mm.actionsFailed.Add(1)
	}
}

func (mm *MonitoringManager) IncrActionsRejected() {
	if mm != nil {
		mm.actionsRejected.Add(1)
	}
}

// WatchQueue registers the action queue to report its fill level.
func (mm *MonitoringManager) WatchQueue(size func() int, capacity int) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.queueSize = size
	mm.queueCapacity = capacity
}

// UpdateProcess stores the latest sample of the process.
func (mm *MonitoringManager) UpdateProcess(stats ProcessStats) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.process = stats
}

// GetLatest returns a consistent snapshot; Go runtime metrics are read on demand.
func (mm *MonitoringManager) GetLatest() MonitoringStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mm.mu.RLock()
	defer mm.mu.RUnlock()

	stats := MonitoringStats{
		MessagesStored:  mm.messagesStored.Load(),
		Deliveries:      mm.deliveries.Load(),
		ActionsFailed:   mm.actionsFailed.Load(),
		ActionsRejected: mm.actionsRejected.Load(),
		QueueCapacity:   mm.queueCapacity,
		AllocMemMb:      m.Alloc / 1024 / 1024,
		NumGC:           m.NumGC,
		Goroutines:      runtime.NumGoroutine(),
		Process:         mm.process,
		UptimeSeconds:   int64(time.Since(mm.startedAt).Seconds()),
	}
	if mm.queueSize != nil {
		stats.QueueSize = mm.queueSize()
	}
	return stats
}
