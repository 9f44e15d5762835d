package refill

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docdailey/quantum-entropy-api/internal/ring"
)

type fakeReader struct {
	mu        sync.Mutex
	reads     int
	alwaysErr bool
}

func (f *fakeReader) Read(n int) ([]byte, error) {
	f.mu.Lock()
	f.reads++
	f.mu.Unlock()

	if f.alwaysErr {
		return nil, errTest
	}

	out := make([]byte, n)
	for i := range out {
		out[i] = 0xAB
	}
	return out, nil
}

var errTest = &fakeErr{"simulated device failure"}

type fakeErr struct{ msg string }

func (e *fakeErr) Error() string { return e.msg }

func TestRefillFillsBufferAndStopsAtHighWaterMark(t *testing.T) {
	buf := ring.New(1024)
	reader := &fakeReader{}
	var mu sync.Mutex
	task := newWithReader(reader, &mu, buf, 0.80)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	task.Run(ctx)

	require.GreaterOrEqual(t, buf.Available(), int(0.80*float64(buf.Capacity())))
	require.Equal(t, uint64(0), task.ConsecutiveErrors())
}

func TestRefillStopsAfterTooManyConsecutiveErrors(t *testing.T) {
	buf := ring.New(1024)
	reader := &fakeReader{alwaysErr: true}
	var mu sync.Mutex
	task := newWithReader(reader, &mu, buf, 0.80)

	done := make(chan struct{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	go func() {
		task.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(4 * time.Second):
		t.Fatal("refill task did not stop after repeated errors")
	}

	require.False(t, task.Running())
	require.Greater(t, task.ConsecutiveErrors(), uint64(maxConsecutiveErrs))
}
