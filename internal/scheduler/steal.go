package scheduler

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/utkarsh5026/taskbench/internal/algorithms"
	"github.com/utkarsh5026/taskbench/internal/types"
)

const (
	defaultLocalQueueCapacity = 256
	maxStealAttempts          = 8
	batchStealSize            = 4
	spinLimit                 = 20
	yieldLimit                = 30
	minIdleSleep              = 50 * time.Microsecond
	maxIdleSleep              = 5 * time.Millisecond
	idleJitter                = 0.2
	cacheLinePadding          = 128
)

// ringBuffer is one generation of a deque's storage. A grown deque swaps in
// a new generation; stealers holding the old one still read valid slots.
type ringBuffer struct {
	slots []*types.SubmittedJob
	mask  int64
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{
		slots: make([]*types.SubmittedJob, capacity),
		mask:  int64(capacity - 1),
	}
}

// wsDeque is a Chase-Lev work-stealing deque.
//
// The owner pushes and pops at the tail; thieves pop at the head with a CAS.
// PushBack and PopBack must only be called by the single owner.
type wsDeque struct {
	ring atomic.Pointer[ringBuffer]

	_    [cacheLinePadding]byte
	head atomic.Int64
	_    [cacheLinePadding - 8]byte
	tail atomic.Int64
}

func newWSDeque(capacity int) *wsDeque {
	if capacity <= 0 {
		capacity = defaultLocalQueueCapacity
	}

	dq := &wsDeque{}
	dq.ring.Store(newRingBuffer(nextPowerOfTwo(capacity)))
	return dq
}

// PushBack appends a job at the tail, doubling the ring when it is full.
func (w *wsDeque) PushBack(job *types.SubmittedJob) {
	tail := w.tail.Load()
	head := w.head.Load()
	ring := w.ring.Load()

	if tail-head >= int64(len(ring.slots)) {
		ring = w.grow(ring, head, tail)
	}

	ring.slots[tail&ring.mask] = job
	w.tail.Store(tail + 1)
}

func (w *wsDeque) grow(old *ringBuffer, head, tail int64) *ringBuffer {
	ring := newRingBuffer(len(old.slots) << 1)
	for i := head; i < tail; i++ {
		ring.slots[i&ring.mask] = old.slots[i&old.mask]
	}
	w.ring.Store(ring)
	return ring
}

// PopBack removes the most recently pushed job (LIFO), or returns nil.
func (w *wsDeque) PopBack() *types.SubmittedJob {
	tail := w.tail.Load() - 1
	w.tail.Store(tail)

	head := w.head.Load()
	if head > tail {
		w.tail.Store(head)
		return nil
	}

	ring := w.ring.Load()
	job := ring.slots[tail&ring.mask]

	if head == tail {
		if !w.head.CompareAndSwap(head, head+1) {
			job = nil
		}
		w.tail.Store(head + 1)
	}

	return job
}

// PopFront steals the oldest job (FIFO), or returns nil when the deque is
// empty or another thief won the race.
func (w *wsDeque) PopFront() *types.SubmittedJob {
	head := w.head.Load()
	tail := w.tail.Load()

	if head >= tail {
		return nil
	}

	ring := w.ring.Load()
	job := ring.slots[head&ring.mask]

	if !w.head.CompareAndSwap(head, head+1) {
		return nil
	}

	return job
}

// Len is approximate under concurrent use.
func (w *wsDeque) Len() int {
	return int(w.tail.Load() - w.head.Load())
}

// workStealing is the general-purpose pool strategy.
//
// External submitters push onto a shared injection deque under a mutex.
// Each worker moves small batches from it into its own deque, runs local
// work LIFO, and steals FIFO from other workers when it runs dry.
type workStealing struct {
	conf         *Config
	global       *wsDeque
	pushMu       sync.Mutex
	workerQueues []*wsDeque
	workerCount  int
	stealSeed    atomic.Uint64
	closed       atomic.Bool
	quit         chan struct{}
	wake         *workerSignal
}

func newWorkStealingStrategy(localCapacity int, conf *Config) *workStealing {
	n := max(conf.WorkerCount, 1)
	w := &workStealing{
		conf:         conf,
		global:       newWSDeque(localCapacity),
		workerQueues: make([]*wsDeque, n),
		workerCount:  n,
		quit:         make(chan struct{}),
		wake:         newWorkerSignal(n),
	}

	for i := range n {
		w.workerQueues[i] = newWSDeque(localCapacity)
	}

	return w
}

// Submit pushes onto the injection deque and wakes one idle worker.
func (s *workStealing) Submit(job *types.SubmittedJob) error {
	if s.closed.Load() {
		return ErrSchedulerClosed
	}

	s.pushMu.Lock()
	s.global.PushBack(job)
	s.pushMu.Unlock()

	s.wake.Signal()
	return nil
}

// Worker follows local work -> injection queue -> steal -> idle backoff.
// After shutdown it keeps going until it finds nothing left to run.
func (s *workStealing) Worker(ctx context.Context, workerID int64) error {
	release := setupWorker(s.conf, workerID)
	defer release()

	local := s.workerQueues[workerID]
	pause := algorithms.NewJitteredBackoff(minIdleSleep, maxIdleSleep, idleJitter, uint64(workerID)+1)
	missCount := 0

	for {
		if job := local.PopBack(); job != nil {
			executeSubmitted(ctx, job, s.conf)
			missCount = 0
			continue
		}

		if job := s.global.PopFront(); job != nil {
			s.addToLocalBatch(local)
			executeSubmitted(ctx, job, s.conf)
			missCount = 0
			continue
		}

		if job := s.steal(int(workerID)); job != nil {
			executeSubmitted(ctx, job, s.conf)
			missCount = 0
			continue
		}

		select {
		case <-ctx.Done():
			s.drain(ctx, local)
			return ctx.Err()
		case <-s.quit:
			return nil
		default:
		}

		missCount++
		s.idle(ctx, missCount, pause)
	}
}

// addToLocalBatch moves up to batchStealSize-1 jobs from the injection deque
// into the worker's own deque.
func (s *workStealing) addToLocalBatch(local *wsDeque) {
	batch := min(s.global.Len(), batchStealSize-1)
	for range batch {
		if job := s.global.PopFront(); job != nil {
			local.PushBack(job)
		}
	}
}

// steal takes work from the front of another worker's deque, grabbing a
// small batch when the victim has plenty.
func (s *workStealing) steal(thiefID int) *types.SubmittedJob {
	n := s.workerCount
	if n <= 1 {
		return nil
	}

	attempts := min(n-1, maxStealAttempts)
	start := int(s.stealSeed.Add(1) % uint64(n)) // #nosec G115 -- n is positive
	thiefQueue := s.workerQueues[thiefID]

	for i := range attempts + 1 {
		victimID := (start + i) % n
		if victimID == thiefID {
			continue
		}

		victim := s.workerQueues[victimID]
		victimLen := victim.Len()

		if victimLen > batchStealSize*2 {
			first := victim.PopFront()
			if first == nil {
				continue
			}

			stealCount := min(victimLen/2, batchStealSize)
			for j := 1; j < stealCount; j++ {
				if job := victim.PopFront(); job != nil {
					thiefQueue.PushBack(job)
				}
			}
			return first
		} else if victimLen > 0 {
			if job := victim.PopFront(); job != nil {
				return job
			}
		}
	}

	return nil
}

// idle spins, then yields, then sleeps with jittered backoff until a
// submit signal, shutdown or cancellation wakes it.
func (s *workStealing) idle(ctx context.Context, missCount int, pause algorithms.Backoff) {
	switch {
	case missCount <= spinLimit:
		return

	case missCount <= yieldLimit:
		runtime.Gosched()

	default:
		timer := time.NewTimer(pause.NextDelay(missCount - yieldLimit - 1))
		defer timer.Stop()

		select {
		case <-s.wake.Wait():
		case <-s.quit:
		case <-ctx.Done():
		case <-timer.C:
		}
	}
}

// drain runs everything still queued locally and in the injection deque.
func (s *workStealing) drain(ctx context.Context, local *wsDeque) {
	for job := local.PopBack(); job != nil; job = local.PopBack() {
		executeSubmitted(ctx, job, s.conf)
	}
	for job := s.global.PopFront(); job != nil; job = s.global.PopFront() {
		executeSubmitted(ctx, job, s.conf)
	}
}

// Shutdown stops new submissions and wakes idle workers so they can exit.
func (s *workStealing) Shutdown() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	close(s.quit)
	s.wake.Close()
}
