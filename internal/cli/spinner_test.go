package cli

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"
)

// syncBuffer lets the spinner goroutine and the test share output.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDraws(t *testing.T) {
	var out syncBuffer
	s := newSpinner("Drawing...")
	s.out = &out
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	if !bytes.Contains([]byte(out.String()), []byte("Drawing...")) {
		t.Errorf("spinner output = %q", out.String())
	}
	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, "Testing...")
	s.out = &syncBuffer{}
	s.Start()

	cancel()
	s.Stop()
	if !s.Cancelled() {
		t.Error("spinner should report cancellation of its context")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Testing...")
	s.out = &syncBuffer{}
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	done := make(chan struct{})
	go func() {
		newSpinner("never started").Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a spinner that was never started")
	}
}
