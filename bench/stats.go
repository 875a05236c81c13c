package bench

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Stats summarises a set of durations.
type Stats struct {
	Count  int64
	Min    time.Duration
	Mean   time.Duration
	P50    time.Duration
	P90    time.Duration
	P99    time.Duration
	Max    time.Duration
	StdDev time.Duration
}

// histogram records durations with microsecond resolution, from 1µs up to
// one hour, to three significant figures.
type histogram struct {
	h *hdrhistogram.Histogram
}

func newHistogram() *histogram {
	return &histogram{h: hdrhistogram.New(1, int64(time.Hour/time.Microsecond), 3)}
}

func (h *histogram) record(d time.Duration) {
	us := d.Microseconds()
	if us < h.h.LowestTrackableValue() {
		us = h.h.LowestTrackableValue()
	}
	if us > h.h.HighestTrackableValue() {
		us = h.h.HighestTrackableValue()
	}
	_ = h.h.RecordValue(us)
}

func (h *histogram) stats() Stats {
	if h.h.TotalCount() == 0 {
		return Stats{}
	}

	us := func(v int64) time.Duration { return time.Duration(v) * time.Microsecond }
	return Stats{
		Count:  h.h.TotalCount(),
		Min:    us(h.h.Min()),
		Mean:   time.Duration(h.h.Mean() * float64(time.Microsecond)),
		P50:    us(h.h.ValueAtQuantile(50)),
		P90:    us(h.h.ValueAtQuantile(90)),
		P99:    us(h.h.ValueAtQuantile(99)),
		Max:    us(h.h.Max()),
		StdDev: time.Duration(h.h.StdDev() * float64(time.Microsecond)),
	}
}
