// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package split

import (
	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// opKind names the logical call held by a cell.
type opKind uint8

const (
	opNone opKind = iota
	opRead
	opWrite
	opFlush
	opClose
)

func (k opKind) String() string {
	switch k {
	case opRead:
		return "Read"
	case opWrite:
		return "Write"
	case opFlush:
		return "Flush"
	case opClose:
		return "Close"
	default:
		return "none"
	}
}

// streamContext is one half's view of the shared stream.
// guard is valid only while held is set.
type streamContext[T Duplex] struct {
	lock     *BiLock[T]
	waker    Waker
	guard    BiLockGuard[T]
	held     bool
	lockWait bool // last would-block came from the lock, not the stream
	off      int  // bytes accepted so far by an in-flight write
}

func (ctx *streamContext[T]) stream() T {
	return *ctx.guard.Value()
}

func (ctx *streamContext[T]) unlock() {
	if ctx.held {
		ctx.held = false
		ctx.guard.Unlock()
		ctx.guard = BiLockGuard[T]{}
	}
	ctx.off = 0
}

// streamDispatcher is the structural interface for stream operations.
// DispatchStream is non-blocking: it returns iox.ErrWouldBlock when the
// lock or the stream cannot make progress, leaving the suspension intact.
type streamDispatcher[T Duplex] interface {
	DispatchStream(ctx *streamContext[T]) (kont.Resumed, error)
}

// notifier is a Waker backed by a one-slot channel.
type notifier chan struct{}

func (n notifier) Wake() {
	select {
	case n <- struct{}{}:
	default:
	}
}

// cell is the resumable operation cell of a half.
//
// While susp is non-nil and the grant is held it is the only operation the
// half may drive; the grant taken by its acquire effect lives in ctx and is
// released by its release effect, so the lock is held across every
// suspension of the body. Before the grant, kind and buf are provisional.
type cell[T Duplex] struct {
	ctx   streamContext[T]
	susp  *kont.Suspension[outcome]
	kind  opKind
	buf   []byte
	ready notifier
}

func (c *cell[T]) init(lock *BiLock[T]) {
	c.ready = make(notifier, 1)
	c.ctx = streamContext[T]{lock: lock, waker: c.ready}
}

// exclusive wraps body in acquire and release effects.
func exclusive[T Duplex](body kont.Eff[outcome]) kont.Expr[outcome] {
	return kont.Reify(kont.Then(kont.Perform(acquire[T]{}),
		kont.Bind(body, func(o outcome) kont.Eff[outcome] {
			return kont.Then(kont.Perform(release[T]{}), kont.Pure(o))
		}),
	))
}

// start begins body as the operation for kind and buf. The cell must be
// idle; the protocol suspends on its acquire effect without touching the
// lock.
func (c *cell[T]) start(kind opKind, buf []byte, body kont.Eff[outcome]) {
	c.kind, c.buf = kind, buf
	_, c.susp = kont.StepExpr(exclusive[T](body))
}

// poll drives the in-flight operation for one scheduling turn.
//
// The caller must pass the kind and buffer the operation started with.
// Returns the completed result, or (0, iox.ErrWouldBlock) with the
// operation retained for the next turn.
func (c *cell[T]) poll(kind opKind, buf []byte) (int, error) {
	switch {
	case c.kind != kind:
		panic("split: " + kind.String() + " called while " + c.kind.String() + " is in flight")
	case !sameBuffer(c.buf, buf):
		panic("split: " + kind.String() + " resumed with a different buffer")
	}
	var res outcome
	for c.susp != nil {
		sop, ok := c.susp.Op().(streamDispatcher[T])
		if !ok {
			panic("split: unhandled effect in stream cell")
		}
		v, err := sop.DispatchStream(&c.ctx)
		if err != nil {
			return 0, err
		}
		res, c.susp = c.susp.Resume(v)
	}
	c.kind, c.buf = opNone, nil
	return res.n, res.err
}

// idle reports whether a call for kind and buf must start a new operation.
// An operation still parked on its acquire effect has not reached the stream,
// so a call with another kind or buffer discards it instead of resuming it.
func (c *cell[T]) idle(kind opKind, buf []byte) bool {
	if c.susp == nil {
		return true
	}
	if c.ctx.held || (c.kind == kind && sameBuffer(c.buf, buf)) {
		return false
	}
	c.susp.Discard()
	c.susp = nil
	c.kind, c.buf = opNone, nil
	return true
}

// cancel discards the in-flight operation and releases the grant if held.
func (c *cell[T]) cancel() {
	if c.susp != nil {
		c.susp.Discard()
		c.susp = nil
	}
	c.ctx.unlock()
	c.ctx.lockWait = false
	c.kind, c.buf = opNone, nil
}

// wait blocks until retrying a would-blocked poll is worthwhile: on the
// release wakeup when the lock was busy, after backoff when the stream was.
func (c *cell[T]) wait(bo *iox.Backoff) {
	if c.ctx.lockWait {
		<-c.ready
		bo.Reset()
		return
	}
	bo.Wait()
}

func sameBuffer(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}
