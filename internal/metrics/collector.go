package metrics

import (
	"time"

	"bedtime-streamer/internal/logging"
)

// StatsProvider reports the current state of the stream output directory.
type StatsProvider interface {
	OutputStats() (Stats, error)
}

// Stats holds the current output directory statistics
type Stats struct {
	Segments  int
	SizeBytes int64
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats, err := c.statsProvider.OutputStats()
	if err != nil {
		logging.Debug("Metrics collection skipped: %v", err)
		return
	}

	OutputSegments.Set(float64(stats.Segments))
	OutputSizeBytes.Set(float64(stats.SizeBytes))

	logging.Debug("Metrics collected: segments=%d, bytes=%d", stats.Segments, stats.SizeBytes)
}
