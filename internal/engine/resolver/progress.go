package resolver

import (
	"log/slog"
	"sync"

	"docxref/internal/shared/observability"
)

// Progress observes a resolution pass. The total is known before the first
// reference is processed.
type Progress interface {
	SetTotal(total int)
	Increment()
}

// Progresses fans out to several observers.
type Progresses []Progress

func (ps Progresses) SetTotal(total int) {
	for _, p := range ps {
		p.SetTotal(total)
	}
}

func (ps Progresses) Increment() {
	for _, p := range ps {
		p.Increment()
	}
}

// LogProgress logs every Every processed references and at the end of the pass.
type LogProgress struct {
	Every int

	mu    sync.Mutex
	total int
	done  int
}

func (p *LogProgress) SetTotal(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total, p.done = total, 0
}

func (p *LogProgress) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if p.done == p.total || (p.Every > 0 && p.done%p.Every == 0) {
		slog.Info("resolving references", "done", p.done, "total", p.total)
	}
}

// Counts returns processed and total references.
func (p *LogProgress) Counts() (done, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done, p.total
}

// MetricsProgress publishes progress as gauges.
type MetricsProgress struct{}

func (MetricsProgress) SetTotal(total int) {
	observability.ResolutionProgress.WithLabelValues("total").Set(float64(total))
	observability.ResolutionProgress.WithLabelValues("done").Set(0)
}

func (MetricsProgress) Increment() {
	observability.ResolutionProgress.WithLabelValues("done").Inc()
}
