package types

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestFuture_Get(t *testing.T) {
	t.Run("successful result", func(t *testing.T) {
		future := NewFuture[string]()

		go func() {
			time.Sleep(50 * time.Millisecond)
			future.Complete("success")
		}()

		value, err := future.Get()

		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if value != "success" {
			t.Errorf("expected value 'success', got %v", value)
		}
	})

	t.Run("error result", func(t *testing.T) {
		future := NewFuture[string]()
		expectedErr := errors.New("task failed")

		go future.Fail(expectedErr)

		value, err := future.Get()

		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if value != "" {
			t.Errorf("expected empty value, got %v", value)
		}
	})

	t.Run("multiple Get calls return same result", func(t *testing.T) {
		future := NewFuture[int]()

		go future.Complete(123)

		value1, err1 := future.Get()
		value2, err2 := future.Get()

		if value1 != value2 || err1 != err2 {
			t.Errorf("Get calls returned different results")
		}
		if value1 != 123 {
			t.Errorf("expected value 123, got %v", value1)
		}
	})
}

func TestFuture_SingleResolution(t *testing.T) {
	t.Run("second complete is rejected", func(t *testing.T) {
		future := NewFuture[int]()

		if !future.Complete(1) {
			t.Fatal("first Complete should succeed")
		}
		if future.Complete(2) {
			t.Error("second Complete should be rejected")
		}

		value, err := future.Get()
		if err != nil || value != 1 {
			t.Errorf("expected (1, nil), got (%v, %v)", value, err)
		}
		if future.Rejected() != 1 {
			t.Errorf("expected 1 rejected resolution, got %d", future.Rejected())
		}
	})

	t.Run("fail after complete is rejected", func(t *testing.T) {
		future := NewFuture[int]()

		future.Complete(7)
		if future.Fail(errors.New("late")) {
			t.Error("Fail after Complete should be rejected")
		}

		if _, err := future.Get(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("racing resolvers resolve once", func(t *testing.T) {
		future := NewFuture[int]()

		var wg sync.WaitGroup
		wins := make(chan int, 64)
		for i := range 64 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if future.Complete(i) {
					wins <- i
				}
			}()
		}
		wg.Wait()
		close(wins)

		count := 0
		var winner int
		for w := range wins {
			count++
			winner = w
		}

		if count != 1 {
			t.Fatalf("expected exactly one winning resolver, got %d", count)
		}
		value, _ := future.Get()
		if value != winner {
			t.Errorf("expected stored value %d, got %d", winner, value)
		}
		if future.Rejected() != 63 {
			t.Errorf("expected 63 rejected resolutions, got %d", future.Rejected())
		}
	})
}

func TestFuture_GetWithContext(t *testing.T) {
	t.Run("successful result before timeout", func(t *testing.T) {
		future := NewFuture[string]()
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()

		go func() {
			time.Sleep(50 * time.Millisecond)
			future.Complete("success")
		}()

		value, err := future.GetWithContext(ctx)

		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if value != "success" {
			t.Errorf("expected value 'success', got %v", value)
		}
	})

	t.Run("context timeout before result", func(t *testing.T) {
		future := NewFuture[string]()
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		value, err := future.GetWithContext(ctx)

		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded, got %v", err)
		}
		if value != "" {
			t.Errorf("expected empty value, got %v", value)
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		future := NewFuture[string]()
		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		_, err := future.GetWithContext(ctx)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestFuture_TryGet(t *testing.T) {
	t.Run("result not ready", func(t *testing.T) {
		future := NewFuture[string]()

		value, err, ready := future.TryGet()

		if ready {
			t.Error("expected ready to be false")
		}
		if value != "" || err != nil {
			t.Errorf("expected zero outcome, got (%v, %v)", value, err)
		}
	})

	t.Run("result ready", func(t *testing.T) {
		future := NewFuture[string]()
		future.Complete("ready")

		value, err, ready := future.TryGet()

		if !ready {
			t.Error("expected ready to be true")
		}
		if value != "ready" {
			t.Errorf("expected value 'ready', got %v", value)
		}
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestFuture_Done(t *testing.T) {
	future := NewFuture[string]()

	select {
	case <-future.Done():
		t.Fatal("Done channel should not be closed yet")
	case <-time.After(20 * time.Millisecond):
	}

	if future.IsReady() {
		t.Error("expected IsReady to be false")
	}

	future.Complete("done")

	select {
	case <-future.Done():
	case <-time.After(200 * time.Millisecond):
		t.Fatal("Done channel should be closed after resolution")
	}

	if !future.IsReady() {
		t.Error("expected IsReady to be true")
	}
}

func TestFuture_ConcurrentAccess(t *testing.T) {
	future := NewFuture[int]()

	go func() {
		time.Sleep(50 * time.Millisecond)
		future.Complete(999)
	}()

	done := make(chan bool, 10)

	for range 10 {
		go func() {
			value, err := future.Get()
			if err != nil || value != 999 {
				t.Errorf("unexpected result: value=%v, err=%v", value, err)
			}
			done <- true
		}()
	}

	for range 10 {
		select {
		case <-done:
		case <-time.After(500 * time.Millisecond):
			t.Fatal("timeout waiting for concurrent Get calls")
		}
	}
}
