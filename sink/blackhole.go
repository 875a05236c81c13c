// Package sink provides the consumption sink that workload results are fed
// into so the compiler cannot discard the work that produced them.
package sink

import (
	"sync/atomic"
)

// Blackhole absorbs values. It folds a cheap fingerprint of each value into
// shared state, which keeps producers observable without retaining values.
// It is safe for concurrent use; the zero value is ready.
type Blackhole struct {
	count atomic.Int64
	bytes atomic.Int64
	mix   atomic.Uint64
}

// New returns an empty Blackhole.
func New() *Blackhole {
	return &Blackhole{}
}

// Consume absorbs any value.
func (b *Blackhole) Consume(v any) {
	switch x := v.(type) {
	case nil:
		b.fold(0)
	case []byte:
		b.ConsumeBytes(x)
		return
	case string:
		b.ConsumeString(x)
		return
	case int:
		b.fold(uint64(x)) // #nosec G115
	case int64:
		b.fold(uint64(x)) // #nosec G115
	case uint64:
		b.fold(x)
	case bool:
		if x {
			b.fold(1)
		} else {
			b.fold(0)
		}
	case error:
		b.ConsumeString(x.Error())
		return
	default:
		b.fold(uint64(b.count.Load()))
	}
	b.count.Add(1)
}

// ConsumeBytes absorbs a byte slice.
func (b *Blackhole) ConsumeBytes(p []byte) {
	h := uint64(len(p))
	if len(p) > 0 {
		h = h*31 + uint64(p[0])
		h = h*31 + uint64(p[len(p)-1])
	}
	b.fold(h)
	b.bytes.Add(int64(len(p)))
	b.count.Add(1)
}

// ConsumeString absorbs a string.
func (b *Blackhole) ConsumeString(s string) {
	h := uint64(len(s))
	if len(s) > 0 {
		h = h*31 + uint64(s[0])
		h = h*31 + uint64(s[len(s)-1])
	}
	b.fold(h)
	b.bytes.Add(int64(len(s)))
	b.count.Add(1)
}

func (b *Blackhole) fold(h uint64) {
	// Multiplicative mix; collisions do not matter here.
	b.mix.Add(h*0x9e3779b97f4a7c15 | 1)
}

// Count returns how many values have been consumed.
func (b *Blackhole) Count() int64 {
	return b.count.Load()
}

// Bytes returns the total length of consumed byte slices and strings.
func (b *Blackhole) Bytes() int64 {
	return b.bytes.Load()
}

// Fingerprint returns the folded state of everything consumed.
func (b *Blackhole) Fingerprint() uint64 {
	return b.mix.Load()
}

// Reset clears the counters.
func (b *Blackhole) Reset() {
	b.count.Store(0)
	b.bytes.Store(0)
	b.mix.Store(0)
}
