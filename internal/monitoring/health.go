package monitoring

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Health states reported by the monitor.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusUnknown  = "unknown"
)

const checkTimeout = 5 * time.Second

// Pinger is implemented by the store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is a point-in-time health snapshot.
type Status struct {
	Status                string    `json:"status"`
	Store                 string    `json:"store"`
	Error                 string    `json:"error,omitempty"`
	LatencyMs             int64     `json:"latencyMs"`
	CheckedAt             time.Time `json:"checkedAt"`
	ProcessRSSBytes       uint64    `json:"processRssBytes"`
	HostMemoryUsedPercent float64   `json:"hostMemoryUsedPercent"`
}

// HealthMonitor pings the store on a cron schedule and keeps the latest result.
type HealthMonitor struct {
	store  Pinger
	driver string
	cron   *cron.Cron

	mu     sync.RWMutex
	status Status
}

// NewHealthMonitor creates a monitor that checks store on schedule, a cron
// expression or descriptor such as "@every 30s".
func NewHealthMonitor(store Pinger, driver, schedule string) (*HealthMonitor, error) {
	m := &HealthMonitor{
		store:  store,
		driver: driver,
		cron:   cron.New(),
		status: Status{Status: StatusUnknown, Store: driver},
	}
	if _, err := m.cron.AddFunc(schedule, func() { m.Check(context.Background()) }); err != nil {
		return nil, err
	}
	return m, nil
}

// Start runs one check immediately, then starts the schedule.
func (m *HealthMonitor) Start() {
	log.Info().Str("store", m.driver).Msg("Starting background health monitor...")
	m.Check(context.Background())
	m.cron.Start()
}

// Stop halts the schedule and waits for a running check to finish.
func (m *HealthMonitor) Stop() {
	<-m.cron.Stop().Done()
	log.Info().Msg("Stopping background health monitor.")
}

// Check pings the store, samples memory usage and records the result.
func (m *HealthMonitor) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := m.store.Ping(ctx)
	status := Status{
		Status:    StatusOK,
		Store:     m.driver,
		LatencyMs: time.Since(start).Milliseconds(),
		CheckedAt: start.UTC(),
	}
	if err != nil {
		status.Status = StatusDegraded
		status.Error = err.Error()
		log.Error().Err(err).Str("store", m.driver).Msg("HealthMonitor: store ping failed")
	}

	if p, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if info, err := p.MemoryInfoWithContext(ctx); err == nil {
			status.ProcessRSSBytes = info.RSS
		}
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		status.HostMemoryUsedPercent = vm.UsedPercent
	} else {
		log.Debug().Err(err).Msg("HealthMonitor: host memory unavailable")
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
	return status
}

// Snapshot returns the latest recorded status.
func (m *HealthMonitor) Snapshot() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}
