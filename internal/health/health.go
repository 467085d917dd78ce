package health

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// PingFunc checks one dependency.
type PingFunc func(ctx context.Context) error

type HealthChecker struct {
	storage     PingFunc
	storageName string
	redis       PingFunc
	started     time.Time
}

type HealthStatus struct {
	Status   string           `json:"status"`
	Database DependencyHealth `json:"database"`
}

type DependencyHealth struct {
	Name         string `json:"name,omitempty"`
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
}

type DetailedStatus struct {
	HealthStatus
	Redis         DependencyHealth `json:"redis"`
	Uptime        string           `json:"uptime"`
	MemoryPercent float64          `json:"memory_percent"`
	MemoryUsed    uint64           `json:"memory_used_bytes"`
	MemoryTotal   uint64           `json:"memory_total_bytes"`
	DiskPercent   float64          `json:"disk_percent"`
	DiskFree      uint64           `json:"disk_free_bytes"`
}

// NewHealthChecker takes the storage ping (nil for in-memory storage) and
// an optional Redis ping.
func NewHealthChecker(storageName string, storage, redis PingFunc) *HealthChecker {
	return &HealthChecker{storage: storage, storageName: storageName, redis: redis, started: time.Now()}
}

func (h *HealthChecker) CheckBasic(ctx context.Context) HealthStatus {
	dbHealth := check(ctx, h.storageName, h.storage)

	status := "healthy"
	if dbHealth.Status == "unhealthy" {
		status = "unhealthy"
	}
	return HealthStatus{Status: status, Database: dbHealth}
}

// CheckDetailed adds Redis and host figures. A Redis outage degrades the
// status; the service keeps working uncached.
func (h *HealthChecker) CheckDetailed(ctx context.Context) DetailedStatus {
	d := DetailedStatus{
		HealthStatus: h.CheckBasic(ctx),
		Redis:        check(ctx, "redis", h.redis),
		Uptime:       time.Since(h.started).Round(time.Second).String(),
	}
	if d.Status == "healthy" && d.Redis.Status == "unhealthy" {
		d.Status = "degraded"
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		d.MemoryPercent = vm.UsedPercent
		d.MemoryUsed = vm.Used
		d.MemoryTotal = vm.Total
	}
	if du, err := disk.UsageWithContext(ctx, "/"); err == nil {
		d.DiskPercent = du.UsedPercent
		d.DiskFree = du.Free
	}
	return d
}

func check(ctx context.Context, name string, ping PingFunc) DependencyHealth {
	if ping == nil {
		return DependencyHealth{Name: name, Status: "disabled"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	dh := DependencyHealth{
		Name:         name,
		Status:       "healthy",
		ResponseTime: time.Since(start).Milliseconds(),
	}
	if err != nil {
		dh.Status = "unhealthy"
		dh.Error = err.Error()
	}
	return dh
}
