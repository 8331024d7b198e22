package metrics_collectors

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/process"
)

func self() (*process.Process, error) {
	return process.NewProcess(int32(os.Getpid()))
}

// ProcessMemoryCollector reports the resident set size of the running process.
type ProcessMemoryCollector struct {
	Logger zerolog.Logger
}

func (p *ProcessMemoryCollector) Name() string {
	return "process_rss"
}

func (p *ProcessMemoryCollector) Collect(ctx context.Context) any {
	proc, err := self()
	if err != nil {
		p.Logger.Warn().Err(err).Msg("Failed to open own process")
		return nil
	}
	memInfo, err := proc.MemoryInfoWithContext(ctx)
	if err != nil {
		p.Logger.Warn().Err(err).Int32("pid", proc.Pid).Msg("Failed to get memory information")
		return nil
	}

	rss := float64(memInfo.RSS)
	p.Logger.Debug().Float64("rss", rss).Msg("Process memory collected")
	return &rss
}

func (p *ProcessMemoryCollector) Unit() string {
	return "bytes"
}

func (p *ProcessMemoryCollector) Description() string {
	return "Resident set size of the mapper process."
}

// ProcessCPUCollector reports the CPU time consumed by the running process.
type ProcessCPUCollector struct {
	Logger zerolog.Logger
}

func (p *ProcessCPUCollector) Name() string {
	return "process_cpu"
}

func (p *ProcessCPUCollector) Collect(ctx context.Context) any {
	proc, err := self()
	if err != nil {
		p.Logger.Warn().Err(err).Msg("Failed to open own process")
		return nil
	}
	times, err := proc.TimesWithContext(ctx)
	if err != nil {
		p.Logger.Warn().Err(err).Int32("pid", proc.Pid).Msg("Failed to get CPU times")
		return nil
	}

	seconds := times.User + times.System
	p.Logger.Debug().Float64("cpu_seconds", seconds).Msg("Process CPU time collected")
	return &seconds
}

func (p *ProcessCPUCollector) Unit() string {
	return "seconds"
}

func (p *ProcessCPUCollector) Description() string {
	return "User plus system CPU time of the mapper process."
}
