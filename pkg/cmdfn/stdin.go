// SPDX-License-Identifier: MPL-2.0

package cmdfn

import (
	"io"
	"sync"
)

// StdinFeeder is the asynchronous writer that drains caller-supplied chunks
// into the process stdin pipe. The queue is unbounded, so Feed never blocks
// on a slow consumer. The feeder shuts down deterministically: when the
// invocation completes it closes the queue, the writer goroutine drains what
// remains and closes the pipe.
type StdinFeeder struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  [][]byte
	closed bool
}

func newStdinFeeder() *StdinFeeder {
	f := &StdinFeeder{}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// Feed queues s for writing to the process stdin. It returns ErrStdinClosed
// once the invocation has completed.
func (f *StdinFeeder) Feed(s string) error {
	return f.FeedBytes([]byte(s))
}

// FeedBytes queues chunk for writing to the process stdin. The chunk is not
// copied; callers must not reuse it. A nil feeder reports ErrStdinClosed,
// so callbacks can feed unconditionally even when stdin belongs to a
// pipeline stage or a caller-supplied reader.
func (f *StdinFeeder) FeedBytes(chunk []byte) error {
	if f == nil {
		return ErrStdinClosed
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrStdinClosed
	}
	f.queue = append(f.queue, chunk)
	f.cond.Signal()
	return nil
}

// close marks the queue closed and wakes the writer so it can drain and
// terminate. Idempotent.
func (f *StdinFeeder) close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.cond.Broadcast()
}

// run writes queued chunks into w until the queue is closed and drained, or
// until the pipe write fails because the process went away. It always
// closes w on the way out so the child observes EOF.
func (f *StdinFeeder) run(w io.WriteCloser) {
	defer w.Close() //nolint:errcheck // pipe teardown

	for {
		f.mu.Lock()
		for len(f.queue) == 0 && !f.closed {
			f.cond.Wait()
		}
		if len(f.queue) == 0 {
			f.mu.Unlock()
			return
		}
		chunk := f.queue[0]
		f.queue = f.queue[1:]
		f.mu.Unlock()

		if _, err := w.Write(chunk); err != nil {
			return
		}
	}
}
