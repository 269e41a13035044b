package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	flushesScheduled uint64
	flushesCompleted uint64
	flushesFailed    uint64
	staleWrites      uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) FlushScheduled() { atomic.AddUint64(&c.flushesScheduled, 1) }
func (c *Collector) FlushCompleted() { atomic.AddUint64(&c.flushesCompleted, 1) }
func (c *Collector) FlushFailed()    { atomic.AddUint64(&c.flushesFailed, 1) }
func (c *Collector) StaleWrite()     { atomic.AddUint64(&c.staleWrites, 1) }

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      atomic.LoadUint64(&c.errorRequests),
		"rateLimitedTotal": atomic.LoadUint64(&c.rateLimited),
		"avgDurationMs":    avg,
		"flushesScheduled": atomic.LoadUint64(&c.flushesScheduled),
		"flushesCompleted": atomic.LoadUint64(&c.flushesCompleted),
		"flushesFailed":    atomic.LoadUint64(&c.flushesFailed),
		"staleWrites":      atomic.LoadUint64(&c.staleWrites),
	}
}
