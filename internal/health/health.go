package health

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Pinger is anything that can report reachability: the session store, the backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	store   Pinger
	backend Pinger
	ready   func() bool
	started time.Time
}

type HealthStatus struct {
	Status  string          `json:"status"`
	Ready   bool            `json:"ready"`
	Store   ComponentHealth `json:"session_store"`
	Backend ComponentHealth `json:"backend"`
}

type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
}

type HostStats struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	MemoryUsed    string  `json:"memory_used"`
	MemoryTotal   string  `json:"memory_total"`
	DiskPercent   float64 `json:"disk_percent"`
	DiskUsed      string  `json:"disk_used"`
	DiskTotal     string  `json:"disk_total"`
}

type DetailedStatus struct {
	HealthStatus
	Uptime string    `json:"uptime"`
	Host   HostStats `json:"host"`
}

func NewHealthChecker(store, backend Pinger, ready func() bool) *HealthChecker {
	return &HealthChecker{store: store, backend: backend, ready: ready, started: time.Now()}
}

// CheckBasic covers what the console itself needs to serve pages: a bootstrapped
// session store.
func (h *HealthChecker) CheckBasic(ctx context.Context) HealthStatus {
	st := HealthStatus{Ready: h.ready(), Store: check(ctx, h.store)}
	st.Status = "healthy"
	if !st.Ready || st.Store.Status != "healthy" {
		st.Status = "unhealthy"
	}
	return st
}

// CheckReadiness adds the backend; without it every view fails.
func (h *HealthChecker) CheckReadiness(ctx context.Context) HealthStatus {
	st := h.CheckBasic(ctx)
	st.Backend = check(ctx, h.backend)
	if st.Backend.Status != "healthy" {
		st.Status = "unhealthy"
	}
	return st
}

func (h *HealthChecker) CheckDetailed(ctx context.Context) DetailedStatus {
	return DetailedStatus{
		HealthStatus: h.CheckReadiness(ctx),
		Uptime:       formatUptime(int(time.Since(h.started).Seconds())),
		Host:         hostStats(),
	}
}

func check(ctx context.Context, p Pinger) ComponentHealth {
	if p == nil {
		return ComponentHealth{Status: "unknown"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return ComponentHealth{Status: "unhealthy", ResponseTime: responseTime, Error: err.Error()}
	}
	return ComponentHealth{Status: "healthy", ResponseTime: responseTime}
}

func hostStats() HostStats {
	var hs HostStats

	if cpuPercents, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(cpuPercents) > 0 {
		hs.CPUPercent = cpuPercents[0]
	}
	if memStats, err := mem.VirtualMemory(); err == nil {
		hs.MemoryPercent = memStats.UsedPercent
		hs.MemoryUsed = formatBytes(memStats.Used)
		hs.MemoryTotal = formatBytes(memStats.Total)
	}
	if diskStats, err := disk.Usage("/"); err == nil {
		hs.DiskPercent = diskStats.UsedPercent
		hs.DiskUsed = formatBytes(diskStats.Used)
		hs.DiskTotal = formatBytes(diskStats.Total)
	}
	return hs
}

func formatBytes(bytes uint64) string {
	gb := float64(bytes) / (1024 * 1024 * 1024)
	if gb < 1 {
		mb := float64(bytes) / (1024 * 1024)
		return fmt.Sprintf("%.1f MB", mb)
	}
	return fmt.Sprintf("%.1f GB", gb)
}

func formatUptime(seconds int) string {
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
