// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package split

import (
	"io"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/kont"
)

// outcome is the completed result of one logical stream call.
type outcome struct {
	n   int
	err error
}

// acquire is the effect operation for taking the stream's BiLock.
type acquire[T Duplex] struct {
	kont.Phantom[struct{}]
}

// DispatchStream takes the lock for ctx.
// Non-blocking: returns iox.ErrWouldBlock while the other half holds it,
// after registering ctx.waker for the release.
func (acquire[T]) DispatchStream(ctx *streamContext[T]) (kont.Resumed, error) {
	g, err := ctx.lock.TryLock(ctx.waker)
	if err != nil {
		ctx.lockWait = true
		return nil, err
	}
	ctx.guard = g
	ctx.held = true
	ctx.lockWait = false
	return struct{}{}, nil
}

// release is the effect operation for giving the lock back.
type release[T Duplex] struct {
	kont.Phantom[struct{}]
}

// DispatchStream releases the grant taken by acquire. Never blocks.
func (release[T]) DispatchStream(ctx *streamContext[T]) (kont.Resumed, error) {
	ctx.unlock()
	return struct{}{}, nil
}

// read is the effect operation for one read into buf.
type read[T Duplex] struct {
	kont.Phantom[outcome]
	buf []byte
}

// DispatchStream reads from the held stream.
// Non-blocking: returns iox.ErrWouldBlock only when no byte was read.
// Partial progress completes the read.
func (op read[T]) DispatchStream(ctx *streamContext[T]) (kont.Resumed, error) {
	n, err := ctx.stream().Read(op.buf)
	if iox.IsWouldBlock(err) {
		if n == 0 {
			return nil, err
		}
		err = nil
	}
	return outcome{n: n, err: err}, nil
}

// write is the effect operation for writing all of buf.
type write[T Duplex] struct {
	kont.Phantom[outcome]
	buf []byte
}

// DispatchStream writes the unwritten remainder of buf.
// Non-blocking: returns iox.ErrWouldBlock when the stream stops accepting
// bytes; progress so far is kept in ctx.off.
func (op write[T]) DispatchStream(ctx *streamContext[T]) (kont.Resumed, error) {
	s := ctx.stream()
	for ctx.off < len(op.buf) {
		n, err := s.Write(op.buf[ctx.off:])
		if n > 0 {
			ctx.off += n
		}
		switch {
		case err == nil:
			if n == 0 {
				return outcome{n: ctx.off, err: io.ErrShortWrite}, nil
			}
		case iox.IsWouldBlock(err):
			if ctx.off < len(op.buf) {
				return nil, err
			}
		default:
			return outcome{n: ctx.off, err: err}, nil
		}
	}
	return outcome{n: ctx.off}, nil
}

// flush is the effect operation for flushing buffered output.
type flush[T Duplex] struct {
	kont.Phantom[outcome]
}

// DispatchStream flushes the held stream.
// Non-blocking: returns iox.ErrWouldBlock when the flush is not done yet.
func (flush[T]) DispatchStream(ctx *streamContext[T]) (kont.Resumed, error) {
	if err := ctx.stream().Flush(); err != nil {
		if iox.IsWouldBlock(err) {
			return nil, err
		}
		return outcome{err: err}, nil
	}
	return outcome{}, nil
}

// shut is the effect operation for closing the stream.
type shut[T Duplex] struct {
	kont.Phantom[outcome]
}

// DispatchStream closes the held stream.
// Non-blocking: returns iox.ErrWouldBlock when the close is not done yet.
func (shut[T]) DispatchStream(ctx *streamContext[T]) (kont.Resumed, error) {
	if err := ctx.stream().Close(); err != nil {
		if iox.IsWouldBlock(err) {
			return nil, err
		}
		return outcome{err: err}, nil
	}
	return outcome{}, nil
}
