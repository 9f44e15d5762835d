// Package refill runs the background task that keeps the entropy ring
// buffer topped up from the device, backing off on repeated device errors.
package refill

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/docdailey/quantum-entropy-api/internal/device"
	"github.com/docdailey/quantum-entropy-api/internal/ring"
)

const (
	maxWant            = device.MaxTransferBytes
	errorBackoff       = 100 * time.Millisecond
	fullSleep          = 10 * time.Millisecond
	maxConsecutiveErrs = 10
)

// entropyReader is the subset of *device.Device the refill task needs;
// tests substitute a fake to exercise the loop without real USB hardware.
type entropyReader interface {
	Read(n int) ([]byte, error)
}

// Task owns the device (under mu, shared with the dispatcher's fallback
// path) and the ring buffer it keeps full.
type Task struct {
	dev           entropyReader
	mu            *sync.Mutex
	buf           *ring.Buffer
	highWaterMark float64

	consecutiveErrors atomic.Uint64
	running           atomic.Bool
}

// New constructs a refill task. mu must be the same mutex the dispatcher's
// fallback-path device reads acquire.
func New(dev *device.Device, mu *sync.Mutex, buf *ring.Buffer, highWaterMark float64) *Task {
	return &Task{dev: dev, mu: mu, buf: buf, highWaterMark: highWaterMark}
}

// newWithReader builds a Task against an arbitrary entropyReader, used by
// tests to avoid depending on real USB hardware.
func newWithReader(dev entropyReader, mu *sync.Mutex, buf *ring.Buffer, highWaterMark float64) *Task {
	return &Task{dev: dev, mu: mu, buf: buf, highWaterMark: highWaterMark}
}

// Run executes the refill loop until ctx is cancelled or the task gives up
// once the consecutive device-failure count exceeds maxConsecutiveErrs. It
// is meant to be run in its own goroutine.
func (t *Task) Run(ctx context.Context) {
	t.running.Store(true)
	defer t.running.Store(false)

	log.Printf("refill: task started")

	for {
		select {
		case <-ctx.Done():
			log.Printf("refill: task stopped (%v)", ctx.Err())
			return
		default:
		}

		capacity := t.buf.Capacity()
		available := t.buf.Available()
		fill := float64(available) / float64(capacity)

		if fill >= t.highWaterMark {
			sleep(ctx, fullSleep)
			continue
		}

		want := (capacity - available) / 2
		if want > maxWant {
			want = maxWant
		}
		if want == 0 {
			sleep(ctx, fullSleep)
			continue
		}

		t.mu.Lock()
		data, err := t.dev.Read(want)
		t.mu.Unlock()

		if err != nil {
			n := t.consecutiveErrors.Add(1)
			log.Printf("refill: device read failed: %v (consecutive=%d)", err, n)

			if n > maxConsecutiveErrs {
				log.Printf("refill: too many consecutive errors, stopping task")
				return
			}
			sleep(ctx, errorBackoff)
			continue
		}

		t.consecutiveErrors.Store(0)
		written := t.buf.Write(data)
		if written < len(data) {
			log.Printf("refill: buffer overflow, discarded %d bytes", len(data)-written)
		}
	}
}

// sleep waits for d or ctx cancellation, whichever comes first.
func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Running reports whether the refill loop is currently active.
func (t *Task) Running() bool {
	return t.running.Load()
}

// ConsecutiveErrors returns the current consecutive device-error count.
func (t *Task) ConsecutiveErrors() uint64 {
	return t.consecutiveErrors.Load()
}
