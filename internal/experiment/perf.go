package experiment

import (
	"log/slog"
	"time"

	"github.com/san-kum/pmsim/internal/sim"
)

// PerfCollector keeps a rolling window of per-tick phase timings.
type PerfCollector struct {
	samples []sim.PhaseTimings
	next    int
	count   int
}

func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{samples: make([]sim.PhaseTimings, windowSize)}
}

func (p *PerfCollector) Record(t sim.PhaseTimings) {
	p.samples[p.next] = t
	p.next = (p.next + 1) % len(p.samples)
	if p.count < len(p.samples) {
		p.count++
	}
}

// PerfStats summarizes the window.
type PerfStats struct {
	Ticks          int
	AvgTick        time.Duration
	MinTick        time.Duration
	MaxTick        time.Duration
	TicksPerSecond float64
	Phases         sim.PhaseTimings
}

func (p *PerfCollector) Stats() PerfStats {
	st := PerfStats{Ticks: p.count}
	if p.count == 0 {
		return st
	}
	var total time.Duration
	for i := 0; i < p.count; i++ {
		s := p.samples[i]
		d := s.Total()
		total += d
		if i == 0 || d < st.MinTick {
			st.MinTick = d
		}
		if d > st.MaxTick {
			st.MaxTick = d
		}
		st.Phases.Deposit += s.Deposit
		st.Phases.Solve += s.Solve
		st.Phases.Integrate += s.Integrate
		st.Phases.Compact += s.Compact
	}
	n := time.Duration(p.count)
	st.AvgTick = total / n
	st.Phases.Deposit /= n
	st.Phases.Solve /= n
	st.Phases.Integrate /= n
	st.Phases.Compact /= n
	if st.AvgTick > 0 {
		st.TicksPerSecond = float64(time.Second) / float64(st.AvgTick)
	}
	return st
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window", s.Ticks),
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("min_tick_us", s.MinTick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
		slog.Any("phases", s.Phases),
	)
}
