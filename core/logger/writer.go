package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// asyncWriter fans log lines out to one or more sinks from a single goroutine
// so handlers never block on slow file or terminal output.
type asyncWriter struct {
	queue    chan []byte
	flushReq chan chan error
	done     chan struct{}

	// gate orders Write against Close so nothing is sent on a closed queue.
	gate   sync.RWMutex
	closed bool

	mu    sync.Mutex
	sinks []*bufio.Writer
	err   error
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		queue:    make(chan []byte, 256),
		flushReq: make(chan chan error),
		done:     make(chan struct{}),
	}
	for _, out := range writers {
		if out != nil {
			w.sinks = append(w.sinks, bufio.NewWriterSize(out, bufSize))
		}
	}
	go w.loop()
	return w
}

func (w *asyncWriter) loop() {
	defer close(w.done)
	for {
		select {
		case line, ok := <-w.queue:
			if !ok {
				w.flushAll()
				return
			}
			w.writeAll(line)
		case ack := <-w.flushReq:
			ack <- w.drainAndFlush()
		}
	}
}

// drainAndFlush writes everything already queued before flushing, so Flush
// observes all lines written before it was called.
func (w *asyncWriter) drainAndFlush() error {
	for {
		select {
		case line, ok := <-w.queue:
			if !ok {
				return w.flushAll()
			}
			w.writeAll(line)
		default:
			return w.flushAll()
		}
	}
}

// errWriterClosed is returned for lines logged after Shutdown; they are dropped.
var errWriterClosed = errors.New("logger: writer closed")

// Write copies p and enqueues it. The enqueue blocks when the queue is full.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.firstErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	w.gate.RLock()
	defer w.gate.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.queue <- append([]byte(nil), p...)
	return nil
}

// Flush waits until every queued line reached the sinks.
func (w *asyncWriter) Flush() error {
	select {
	case <-w.done:
		return w.firstErr()
	default:
	}
	ack := make(chan error, 1)
	select {
	case w.flushReq <- ack:
		return <-ack
	case <-w.done:
		return w.firstErr()
	}
}

// Close drains the queue and reports the first encountered write error.
func (w *asyncWriter) Close() error {
	w.gate.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.gate.Unlock()
	<-w.done
	return w.firstErr()
}

func (w *asyncWriter) writeAll(p []byte) {
	if len(p) == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, sink := range w.sinks {
		if _, err := sink.Write(p); err != nil {
			w.keepErr(err)
			return
		}
		if err := sink.Flush(); err != nil {
			w.keepErr(err)
			return
		}
	}
}

func (w *asyncWriter) flushAll() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	var errs []error
	for _, sink := range w.sinks {
		errs = append(errs, sink.Flush())
	}
	return errors.Join(errs...)
}

func (w *asyncWriter) firstErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// keepErr must be called with mu held.
func (w *asyncWriter) keepErr(err error) {
	if w.err == nil {
		w.err = err
	}
}
