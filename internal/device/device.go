// Package device collects host and resource telemetry for the device-info
// endpoint and the per-generation usage snapshot.
package device

import (
	"context"
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

const bytesPerGB = 1024 * 1024 * 1024

// Info is a static description of the host the service runs on.
type Info struct {
	Platform          string  `json:"platform"`
	PlatformVersion   string  `json:"platform_version"`
	CPUCount          int     `json:"cpu_count"`
	CPUCountLogical   int     `json:"cpu_count_logical"`
	MemoryTotalGB     float64 `json:"memory_total_gb"`
	MemoryAvailableGB float64 `json:"memory_available_gb"`
}

// Usage is a point-in-time resource snapshot. Fields that cannot be sampled on
// the current platform are left at zero.
type Usage struct {
	CPUPercent      float64 `json:"cpu_percent"`
	MemoryUsedGB    float64 `json:"memory_used_gb"`
	MemoryPercent   float64 `json:"memory_percent"`
	ProcessMemoryGB float64 `json:"process_memory_gb"`
	Load1           float64 `json:"load_1"`
}

// CollectInfo gathers static host information.
func CollectInfo(ctx context.Context) (*Info, error) {
	hostInfo, hostErr := host.InfoWithContext(ctx)
	if hostErr != nil {
		return nil, fmt.Errorf("failed to read host info: %w", hostErr)
	}

	physicalCores, coresErr := cpu.CountsWithContext(ctx, false)
	if coresErr != nil {
		return nil, fmt.Errorf("failed to count physical CPUs: %w", coresErr)
	}

	logicalCores, logicalErr := cpu.CountsWithContext(ctx, true)
	if logicalErr != nil {
		return nil, fmt.Errorf("failed to count logical CPUs: %w", logicalErr)
	}

	virtualMemory, memErr := mem.VirtualMemoryWithContext(ctx)
	if memErr != nil {
		return nil, fmt.Errorf("failed to read memory stats: %w", memErr)
	}

	return &Info{
		Platform:          hostInfo.Platform,
		PlatformVersion:   hostInfo.PlatformVersion,
		CPUCount:          physicalCores,
		CPUCountLogical:   logicalCores,
		MemoryTotalGB:     float64(virtualMemory.Total) / bytesPerGB,
		MemoryAvailableGB: float64(virtualMemory.Available) / bytesPerGB,
	}, nil
}

// CollectUsage samples current resource usage. Individual probes are best
// effort; a probe that fails leaves its fields zero rather than failing the
// snapshot.
func CollectUsage(ctx context.Context) *Usage {
	usage := &Usage{}

	cpuPercents, cpuErr := cpu.PercentWithContext(ctx, 0, false)
	if cpuErr == nil && len(cpuPercents) > 0 {
		usage.CPUPercent = cpuPercents[0]
	}

	virtualMemory, memErr := mem.VirtualMemoryWithContext(ctx)
	if memErr == nil {
		usage.MemoryUsedGB = float64(virtualMemory.Used) / bytesPerGB
		usage.MemoryPercent = virtualMemory.UsedPercent
	}

	loadAvg, loadErr := load.AvgWithContext(ctx)
	if loadErr == nil {
		usage.Load1 = loadAvg.Load1
	}

	proc, procErr := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if procErr == nil {
		memInfo, memInfoErr := proc.MemoryInfoWithContext(ctx)
		if memInfoErr == nil {
			usage.ProcessMemoryGB = float64(memInfo.RSS) / bytesPerGB
		}
	}

	return usage
}
