package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrWriterClosed is reported for writes enqueued after Close.
var ErrWriterClosed = errors.New("storage writer closed")

const writerBuffer = 64

type writeRequest struct {
	key     string
	data    []byte
	flushed chan struct{}
}

// Writer serializes snapshot writes to a Gateway on a single goroutine.
// Writes are applied in the order Enqueue was called, so the last snapshot
// enqueued for a key is the one that ends up stored.
type Writer struct {
	gw      Gateway
	onError func(key string, err error)

	mu     sync.RWMutex
	closed bool
	reqs   chan writeRequest
	done   chan struct{}
}

// NewWriter starts the writer goroutine. onError is called from that
// goroutine for every failed save; it may be nil.
func NewWriter(gw Gateway, onError func(key string, err error)) *Writer {
	w := &Writer{
		gw:      gw,
		onError: onError,
		reqs:    make(chan writeRequest, writerBuffer),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Writer) run() {
	defer close(w.done)
	for r := range w.reqs {
		if r.flushed != nil {
			close(r.flushed)
			continue
		}
		if err := w.gw.Save(context.Background(), r.key, r.data); err != nil {
			w.report(r.key, err)
		}
	}
}

func (w *Writer) report(key string, err error) {
	if w.onError != nil {
		w.onError(key, err)
	}
}

// Enqueue schedules data to be stored under key. It does not wait for the
// write to happen.
func (w *Writer) Enqueue(key string, data []byte) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.report(key, ErrWriterClosed)
		return
	}
	w.reqs <- writeRequest{key: key, data: data}
}

// Flush blocks until every write enqueued before the call has been applied.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return ErrWriterClosed
	}
	flushed := make(chan struct{})
	w.reqs <- writeRequest{flushed: flushed}
	w.mu.RUnlock()

	select {
	case <-flushed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains pending writes and stops the writer goroutine. Calling Close
// more than once is safe.
func (w *Writer) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.reqs)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
