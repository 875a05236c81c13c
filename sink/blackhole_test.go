package sink

import (
	"errors"
	"sync"
	"testing"
)

func TestBlackhole_Consume(t *testing.T) {
	tests := []struct {
		name      string
		values    []any
		wantCount int64
		wantBytes int64
	}{
		{name: "nothing", values: nil, wantCount: 0, wantBytes: 0},
		{name: "bytes and strings", values: []any{[]byte("abcd"), "xyz"}, wantCount: 2, wantBytes: 7},
		{name: "numbers", values: []any{1, int64(2), uint64(3), true}, wantCount: 4, wantBytes: 0},
		{name: "nil and error", values: []any{nil, errors.New("boom")}, wantCount: 2, wantBytes: 4},
		{name: "struct pointer", values: []any{&struct{ a int }{1}}, wantCount: 1, wantBytes: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Blackhole
			for _, v := range tt.values {
				b.Consume(v)
			}
			if b.Count() != tt.wantCount {
				t.Errorf("expected count %d, got %d", tt.wantCount, b.Count())
			}
			if b.Bytes() != tt.wantBytes {
				t.Errorf("expected %d bytes, got %d", tt.wantBytes, b.Bytes())
			}
		})
	}
}

func TestBlackhole_Fingerprint(t *testing.T) {
	b := New()
	if b.Fingerprint() != 0 {
		t.Fatal("expected empty fingerprint")
	}
	b.ConsumeString("hello")
	if b.Fingerprint() == 0 {
		t.Error("fingerprint did not change")
	}

	b.Reset()
	if b.Fingerprint() != 0 || b.Count() != 0 || b.Bytes() != 0 {
		t.Error("reset did not clear state")
	}
}

func TestBlackhole_Concurrent(t *testing.T) {
	b := New()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 1000 {
				b.Consume(i)
			}
		}()
	}
	wg.Wait()

	if b.Count() != 16000 {
		t.Errorf("expected 16000, got %d", b.Count())
	}
}
