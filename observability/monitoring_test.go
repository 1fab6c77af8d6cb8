package observability

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMonitoringManager_Counters(t *testing.T) {
	req := require.New(t)
	mm := NewMonitoringManager(slog.Default())
	queue := 7
	mm.WatchQueue(func() int { return queue }, 64)

	mm.IncrMessagesStored()
	mm.AddDeliveries(3)
	mm.AddDeliveries(-1)
	mm.IncrActionsFailed()
	mm.IncrActionsRejected()
	mm.UpdateProcess(ProcessStats{PID: 42, Status: "running"})

	stats := mm.GetLatest()
	req.Equal(uint64(1), stats.MessagesStored)
	req.Equal(uint64(3), stats.Deliveries)
	req.Equal(uint64(1), stats.ActionsFailed)
	req.Equal(uint64(1), stats.ActionsRejected)
	req.Equal(7, stats.QueueSize)
	req.Equal(64, stats.QueueCapacity)
	req.Equal(int32(42), stats.Process.PID)
	req.Positive(stats.Goroutines)
}

func TestMonitoringManager_Nil_Is_Noop(t *testing.T) {
	var mm *MonitoringManager

	require.NotPanics(t, func() {
		mm.IncrMessagesStored()
		mm.AddDeliveries(2)
		mm.IncrActionsFailed()
		mm.IncrActionsRejected()
	})
}
