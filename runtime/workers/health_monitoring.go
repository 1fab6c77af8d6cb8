package workers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"social-chat/contract"
	"social-chat/observability"

	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*HealthMonitoringWorker)(nil)

// HealthMonitoringWorker samples the server process at a fixed interval and hands
// the result to the monitoring manager served by /health.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	monitoring     *observability.MonitoringManager
	metricInterval time.Duration
	pid            int32
}

func NewHealthMonitoringWorker(log *slog.Logger, monitoring *observability.MonitoringManager,
	metricInterval time.Duration) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{
		log:            log,
		monitoring:     monitoring,
		metricInterval: metricInterval,
		pid:            int32(os.Getpid()),
	}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(w.pid)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return nil
		case <-ticker.C:
			w.monitoring.UpdateProcess(w.sample(p))
		}
	}
}

// sample never fails: a metric that cannot be read is left at its zero value.
func (w *HealthMonitoringWorker) sample(p *process.Process) observability.ProcessStats {
	stats := observability.ProcessStats{PID: w.pid, SampledAt: time.Now().UTC().Format(time.RFC3339)}
	if status, err := p.Status(); err == nil {
		stats.Status = fmt.Sprint(status)
	} else {
		w.log.Debug("Error while finding process status", "err", err)
	}
	if cpu, err := p.CPUPercent(); err == nil {
		stats.CPUPercent = cpu
	} else {
		w.log.Debug("Error while finding process cpu usage", "err", err)
	}
	if ram, err := p.MemoryPercent(); err == nil {
		stats.RAMPercent = ram
	} else {
		w.log.Debug("Error while finding process ram usage", "err", err)
	}
	if info, err := p.MemoryInfo(); err == nil {
		stats.RSSMb = info.RSS / 1024 / 1024
	}
	return stats
}
