package stats

import (
	"sort"
	"sync"
	"time"

	"github.com/prasenjit/go-chainer/internal/models"
)

// Collector aggregates per-operation execution statistics across runs.
// It plugs into the runner as a step observer.
type Collector struct {
	mu         sync.RWMutex
	startTime  time.Time
	operations map[string]*opCounter // signature -> counters
	errors     []models.StepError
	maxErrors  int
}

type opCounter struct {
	total       int64
	failures    int64
	totalMs     int64
	minMs       int64
	maxMs       int64
	lastExecute time.Time
}

// NewCollector creates a new statistics collector
func NewCollector() *Collector {
	return &Collector{
		startTime:  time.Now(),
		operations: make(map[string]*opCounter),
		maxErrors:  100,
	}
}

// ObserveStep records one executed step
func (c *Collector) ObserveStep(runID string, step *models.ExecutionStep) {
	c.mu.Lock()
	defer c.mu.Unlock()

	counter, ok := c.operations[step.Signature]
	if !ok {
		counter = &opCounter{minMs: step.DurationMs}
		c.operations[step.Signature] = counter
	}

	counter.total++
	counter.totalMs += step.DurationMs
	counter.lastExecute = time.Now()
	if step.DurationMs < counter.minMs {
		counter.minMs = step.DurationMs
	}
	if step.DurationMs > counter.maxMs {
		counter.maxMs = step.DurationMs
	}

	if step.Status == models.StepFailed {
		counter.failures++
		c.errors = append(c.errors, models.StepError{
			Timestamp: time.Now(),
			RunID:     runID,
			Signature: step.Signature,
			Status:    step.StatusCode,
			Reason:    step.FailureReason,
		})
		if len(c.errors) > c.maxErrors {
			c.errors = c.errors[1:]
		}
	}
}

// Snapshot returns the aggregate statistics since startup
func (c *Collector) Snapshot() *models.ExecutionStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := &models.ExecutionStats{
		StartTime:    c.startTime,
		RecentErrors: append([]models.StepError(nil), c.errors...),
	}

	var totalMs int64
	for signature, counter := range c.operations {
		stat := models.StepStat{
			Signature:     signature,
			TotalSteps:    counter.total,
			TotalFailures: counter.failures,
			MinDurationMs: counter.minMs,
			MaxDurationMs: counter.maxMs,
			LastExecuted:  counter.lastExecute,
		}
		if counter.total > 0 {
			stat.AvgDurationMs = float64(counter.totalMs) / float64(counter.total)
		}
		stats.Operations = append(stats.Operations, stat)
		stats.TotalSteps += counter.total
		stats.TotalFailures += counter.failures
		totalMs += counter.totalMs
	}

	if stats.TotalSteps > 0 {
		stats.AvgDurationMs = float64(totalMs) / float64(stats.TotalSteps)
	}

	sort.Slice(stats.Operations, func(i, j int) bool {
		return stats.Operations[i].TotalSteps > stats.Operations[j].TotalSteps
	})

	return stats
}

// Reset clears all collected statistics
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.startTime = time.Now()
	c.operations = make(map[string]*opCounter)
	c.errors = nil
}
