// SPDX-License-Identifier: MPL-2.0

package cmdfn

import (
	"bufio"
	"io"
	"strings"
	"sync"
)

// aggBuffer aggregates drained stream units in emission order. It is
// mutated only by its invocation's own drain goroutines but guarded anyway
// because accessors may race with the final appends. A downstream pipeline
// stage may attach a mirror, which then receives every unit the buffer
// receives until the stream hits EOF.
type aggBuffer struct {
	mu     sync.Mutex
	units  []string
	mirror *streamMirror
	eof    bool
}

func (b *aggBuffer) append(unit string) {
	b.mu.Lock()
	b.units = append(b.units, unit)
	m := b.mirror
	b.mu.Unlock()
	if m != nil {
		m.push(unit)
	}
}

// Write lets an aggBuffer serve directly as an exec.Cmd output sink in the
// synchronous no-callback path.
func (b *aggBuffer) Write(p []byte) (int, error) {
	b.append(string(p))
	return len(p), nil
}

func (b *aggBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.units, "")
}

// markEOF records that the stream is fully drained and releases any attached
// mirror so its reader observes EOF.
func (b *aggBuffer) markEOF() {
	b.mu.Lock()
	b.eof = true
	m := b.mirror
	b.mirror = nil
	b.mu.Unlock()
	if m != nil {
		m.close()
	}
}

// attachMirror starts mirroring the buffer: everything aggregated so far is
// replayed, then every future unit follows in drain order, and the reader
// sees EOF when the stream does. At most one mirror can attach; later calls
// return nil. Attaching after EOF replays the complete stream and closes.
func (b *aggBuffer) attachMirror() io.ReadCloser {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mirror != nil {
		return nil
	}
	m := newStreamMirror()
	for _, unit := range b.units {
		m.push(unit)
	}
	if b.eof {
		m.close()
	} else {
		b.mirror = m
	}
	return m.reader()
}

// streamMirror relays aggregated units into an in-process pipe. The queue is
// unbounded so the producing collector never blocks on a slow downstream
// reader; one pump goroutine drains the queue into the pipe and closes it
// once the queue is closed and empty.
type streamMirror struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []string
	closed bool
	pr     *io.PipeReader
	pw     *io.PipeWriter
}

func newStreamMirror() *streamMirror {
	m := &streamMirror{}
	m.cond = sync.NewCond(&m.mu)
	m.pr, m.pw = io.Pipe()
	go m.pump()
	return m
}

func (m *streamMirror) reader() io.ReadCloser { return m.pr }

func (m *streamMirror) push(unit string) {
	m.mu.Lock()
	m.queue = append(m.queue, unit)
	m.cond.Signal()
	m.mu.Unlock()
}

// close marks the queue complete; the pump drains what remains and closes
// the write end. Idempotent.
func (m *streamMirror) close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.cond.Broadcast()
}

func (m *streamMirror) pump() {
	for {
		m.mu.Lock()
		for len(m.queue) == 0 && !m.closed {
			m.cond.Wait()
		}
		if len(m.queue) == 0 {
			m.mu.Unlock()
			m.pw.Close() //nolint:errcheck // pipe teardown
			return
		}
		unit := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()

		if _, err := m.pw.Write([]byte(unit)); err != nil {
			// The reader went away; nothing left to relay.
			return
		}
	}
}

// startCollectors launches the two stream drain goroutines plus the finisher
// that performs the single exit-status check.
//
// Both collectors block on the start barrier and are released together only
// after both are registered, so neither drain begins before both are ready.
// Completion is tracked with an explicit latch: the finisher waits for both
// collectors, shuts the stdin feeder down, and then performs the one and
// only wait-and-classify, regardless of which stream drained first.
func (inv *Invocation) startCollectors(stdout, stderr io.Reader) {
	start := make(chan struct{})
	var latch sync.WaitGroup
	latch.Add(2)

	go inv.collect(stdout, inv.opts.stdoutFn, &inv.stdoutBuf, start, &latch)
	go inv.collect(stderr, inv.opts.stderrFn, &inv.stderrBuf, start, &latch)
	close(start)

	go func() {
		latch.Wait()
		if inv.feeder != nil {
			inv.feeder.close()
		}
		inv.finish()
	}()
}

// collect drains one stream end. Units are appended to the aggregation
// buffer strictly before callback dispatch, so aggregation is never lost to
// a misbehaving callback. A callback returning true stops further dispatch
// for this stream; draining continues silently until EOF so the buffer
// stays complete. A nil reader (redirected or merged-away stream) still
// participates in the barrier and the latch.
func (inv *Invocation) collect(r io.Reader, fn StreamFunc, agg *aggBuffer, start <-chan struct{}, latch *sync.WaitGroup) {
	defer latch.Done()
	defer agg.markEOF()
	<-start

	if r == nil {
		return
	}

	dispatch := fn != nil
	emit := func(unit string) {
		agg.append(unit)
		if dispatch && fn(StreamEvent{Data: unit, Stdin: inv.feeder, Invocation: inv}) {
			dispatch = false
		}
	}

	if inv.opts.lineBuffered {
		br := bufio.NewReader(r)
		for {
			line, err := br.ReadString('\n')
			if len(line) > 0 {
				emit(line)
			}
			if err != nil {
				return
			}
		}
	}

	size := inv.opts.chunkSize
	if size <= 0 {
		size = 1
	}
	buf := make([]byte, size)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			emit(string(buf[:n]))
		}
		if err != nil {
			return
		}
	}
}
