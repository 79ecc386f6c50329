package monitoring

import (
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// MemoryStats is a point-in-time snapshot of runtime memory usage
type MemoryStats struct {
	HeapAlloc    uint64    `json:"heap_alloc_bytes"`
	HeapSys      uint64    `json:"heap_sys_bytes"`
	HeapObjects  uint64    `json:"heap_objects"`
	NumGC        uint32    `json:"num_gc"`
	NumGoroutine int       `json:"num_goroutine"`
	Timestamp    time.Time `json:"timestamp"`
}

// MemoryMonitor samples runtime memory usage and triggers GC when the heap
// grows past the configured threshold
type MemoryMonitor struct {
	mu          sync.RWMutex
	latest      MemoryStats
	interval    time.Duration
	gcThreshold uint64
	stopChannel chan struct{}
	logger      *Logger
}

// NewMemoryMonitor creates a new memory monitor
func NewMemoryMonitor(interval time.Duration, gcThreshold uint64, logger *Logger) *MemoryMonitor {
	return &MemoryMonitor{
		interval:    interval,
		gcThreshold: gcThreshold,
		stopChannel: make(chan struct{}),
		logger:      logger,
	}
}

// Start begins memory monitoring in a goroutine
func (mm *MemoryMonitor) Start() {
	go func() {
		ticker := time.NewTicker(mm.interval)
		defer ticker.Stop()

		slog.Info("Starting memory monitoring", "interval_ms", mm.interval.Milliseconds())

		for {
			select {
			case <-ticker.C:
				mm.collectStats()
			case <-mm.stopChannel:
				slog.Info("Memory monitoring stopped")
				return
			}
		}
	}()
}

// Stop halts memory monitoring
func (mm *MemoryMonitor) Stop() {
	close(mm.stopChannel)
}

func (mm *MemoryMonitor) collectStats() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	stats := MemoryStats{
		HeapAlloc:    ms.HeapAlloc,
		HeapSys:      ms.HeapSys,
		HeapObjects:  ms.HeapObjects,
		NumGC:        ms.NumGC,
		NumGoroutine: runtime.NumGoroutine(),
		Timestamp:    time.Now(),
	}

	mm.mu.Lock()
	mm.latest = stats
	mm.mu.Unlock()

	if mm.gcThreshold > 0 && ms.HeapAlloc > mm.gcThreshold {
		mm.logger.PerformanceLogger("heap_over_threshold", float64(ms.HeapAlloc), "bytes")
		runtime.GC()
	}
}

// GetStats returns the most recent memory snapshot
func (mm *MemoryMonitor) GetStats() MemoryStats {
	mm.mu.RLock()
	defer mm.mu.RUnlock()
	return mm.latest
}
