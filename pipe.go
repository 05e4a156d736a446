// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package split

import (
	"io"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// PipeEnd is one end of an in-memory duplex stream returned by Pipe.
//
// Bytes written to one end are read from the other. Read and Write never
// block. Each direction is a single-producer single-consumer ring, so an
// end's Read, and separately its Write, must be driven by one goroutine at a
// time. Splitting the end satisfies that.
type PipeEnd struct {
	in     *lfq.SPSC[byte]
	out    *lfq.SPSC[byte]
	closed *atomix.Bool
}

// pipePair holds both ends, both rings and the shared close flag in a single
// allocation; only the ring buffers are separate heap objects.
type pipePair struct {
	a      PipeEnd
	b      PipeEnd
	closed atomix.Bool
	ab     lfq.SPSC[byte]
	ba     lfq.SPSC[byte]
}

// Pipe returns two connected ends. Each direction buffers up to capacity
// bytes, rounded up to a power of two; capacity must be at least 2.
//
// Write returns iox.ErrWouldBlock when the ring toward the other end is full,
// Read when the ring toward this end is empty. Closing either end closes the
// pipe: reads drain what is buffered and then return io.EOF, writes return
// io.ErrClosedPipe.
func Pipe(capacity int) (*PipeEnd, *PipeEnd) {
	if capacity < 2 {
		panic("split: pipe capacity must be >= 2")
	}
	pair := &pipePair{}
	pair.ab.Init(capacity)
	pair.ba.Init(capacity)
	pair.a = PipeEnd{in: &pair.ba, out: &pair.ab, closed: &pair.closed}
	pair.b = PipeEnd{in: &pair.ab, out: &pair.ba, closed: &pair.closed}
	return &pair.a, &pair.b
}

// Read reads buffered bytes into p.
func (e *PipeEnd) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if n := e.drain(p); n > 0 {
		return n, nil
	}
	if e.closed.Load() {
		// Bytes enqueued before the close are still readable.
		if n := e.drain(p); n > 0 {
			return n, nil
		}
		return 0, io.EOF
	}
	return 0, iox.ErrWouldBlock
}

func (e *PipeEnd) drain(p []byte) int {
	n := 0
	for n < len(p) {
		b, err := e.in.Dequeue()
		if err != nil {
			break
		}
		p[n] = b
		n++
	}
	return n
}

// Write writes a prefix of p that fits the ring. Returns (n,
// iox.ErrWouldBlock) with n < len(p) when the ring fills up.
func (e *PipeEnd) Write(p []byte) (int, error) {
	if e.closed.Load() {
		return 0, io.ErrClosedPipe
	}
	for i := range p {
		if err := e.out.Enqueue(&p[i]); err != nil {
			return i, iox.ErrWouldBlock
		}
	}
	return len(p), nil
}

// Flush is a no-op: written bytes are visible to the other end at once.
func (e *PipeEnd) Flush() error {
	return nil
}

// Close closes the pipe for both ends. Closing twice is not an error.
func (e *PipeEnd) Close() error {
	e.closed.Store(true)
	return nil
}
