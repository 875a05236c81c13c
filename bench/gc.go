package bench

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// GCProfile is the allocation and collector activity of the measured
// trials of one case, plus the goroutine high-water mark.
type GCProfile struct {
	Cycles               uint32
	PauseTotal           time.Duration
	AllocBytesPerTrial   float64
	AllocObjectsPerTrial float64
	PeakGoroutines       int
}

// gcSampler diffs runtime.MemStats around the measured trials and polls the
// goroutine count while they run.
type gcSampler struct {
	before runtime.MemStats
	peak   atomic.Int64
	stop   chan struct{}
	wg     sync.WaitGroup
}

const goroutinePollInterval = 2 * time.Millisecond

func startGCSampler() *gcSampler {
	s := &gcSampler{stop: make(chan struct{})}
	runtime.ReadMemStats(&s.before)
	s.observe()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(goroutinePollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.observe()
			}
		}
	}()
	return s
}

func (s *gcSampler) observe() {
	n := int64(runtime.NumGoroutine())
	for {
		cur := s.peak.Load()
		if n <= cur || s.peak.CompareAndSwap(cur, n) {
			return
		}
	}
}

func (s *gcSampler) finish(trials int) GCProfile {
	close(s.stop)
	s.wg.Wait()

	var after runtime.MemStats
	runtime.ReadMemStats(&after)

	p := GCProfile{
		Cycles:         after.NumGC - s.before.NumGC,
		PauseTotal:     time.Duration(after.PauseTotalNs - s.before.PauseTotalNs), // #nosec G115
		PeakGoroutines: int(s.peak.Load()),
	}
	if trials > 0 {
		p.AllocBytesPerTrial = float64(after.TotalAlloc-s.before.TotalAlloc) / float64(trials)
		p.AllocObjectsPerTrial = float64(after.Mallocs-s.before.Mallocs) / float64(trials)
	}
	return p
}
