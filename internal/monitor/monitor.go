package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/neox5/countbox/internal/session"
	"github.com/shirou/gopsutil/v4/process"
)

// StatsSource reports session registry counters.
type StatsSource interface {
	Stats() session.Stats
}

// Monitor logs process resource usage alongside session load.
type Monitor struct {
	logger *slog.Logger
	proc   *process.Process
	stats  StatsSource
}

// New creates a monitor for the current process. stats may be nil.
func New(logger *slog.Logger, stats StatsSource) (*Monitor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to get process handle: %w", err)
	}

	return &Monitor{
		logger: logger,
		proc:   proc,
		stats:  stats,
	}, nil
}

// Sample is one resource reading.
type Sample struct {
	ProcessCPU  float64
	Utilization float64
	Cores       int
	Goroutines  int
	HeapAlloc   uint64
	HeapSys     uint64
	StackInuse  uint64
	NumGC       uint32
	GCCPU       float64
	Saturation  string
}

// Collect reads current metrics and logs them.
func (m *Monitor) Collect() Sample {
	s := m.sample()

	mb := func(b uint64) float64 {
		return float64(b) / (1024 * 1024)
	}
	kb := func(b uint64) float64 {
		return float64(b) / 1024
	}

	attrs := []slog.Attr{
		slog.String("cpu", fmt.Sprintf("%.4f%%", s.ProcessCPU)),
		slog.String("util", fmt.Sprintf("%.4f%%", s.Utilization*100)),
		slog.Int("cores", s.Cores),
		slog.Int("gor", s.Goroutines),
		slog.String(
			"mem",
			fmt.Sprintf(
				"alloc:%.2fMB sys:%.2fMB stack:%.0fKB",
				mb(s.HeapAlloc),
				mb(s.HeapSys),
				kb(s.StackInuse),
			),
		),
		slog.Uint64("gc", uint64(s.NumGC)),
		slog.String("gc_cpu", fmt.Sprintf("%.3f", s.GCCPU)),
		slog.String("sat", s.Saturation),
	}
	if m.stats != nil {
		attrs = append(attrs, slog.Any("sessions", m.stats.Stats()))
	}

	m.logger.LogAttrs(context.Background(), slog.LevelInfo, "resource", attrs...)

	if s.Saturation == "saturated" {
		m.logger.Warn(
			"cpu saturation detected",
			"cpu", s.ProcessCPU,
			"util_pct", s.Utilization*100,
			"action", "reduce load or increase GOMAXPROCS",
		)
	}

	return s
}

func (m *Monitor) sample() Sample {
	processCPU, err := m.proc.CPUPercent()
	if err != nil {
		m.logger.Warn("failed to get CPU percent", "error", err)
		processCPU = 0
	}

	cores := runtime.GOMAXPROCS(-1)
	maxCPU := float64(cores * 100)

	utilization := 0.0
	if maxCPU > 0 {
		utilization = processCPU / maxCPU
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return Sample{
		ProcessCPU:  processCPU,
		Utilization: utilization,
		Cores:       cores,
		Goroutines:  runtime.NumGoroutine(),
		HeapAlloc:   ms.HeapAlloc,
		HeapSys:     ms.HeapSys,
		StackInuse:  ms.StackInuse,
		NumGC:       ms.NumGC,
		GCCPU:       ms.GCCPUFraction,
		Saturation:  saturation(utilization),
	}
}

func saturation(utilization float64) string {
	switch {
	case utilization > 0.95:
		return "saturated"
	case utilization > 0.80:
		return "high"
	default:
		return "normal"
	}
}
