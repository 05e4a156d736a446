// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package split

import (
	"code.hybscloud.com/kont"
)

// ReadHalf is the readable half of a stream returned by Split.
//
// Read never blocks. When it returns iox.ErrWouldBlock after the stream was
// granted, the read stays in flight and holds the stream; the next Read must
// pass the same buffer and resumes that read instead of starting a new one.
// A read still waiting for the grant has not reached the stream, and a Read
// with another buffer replaces it.
type ReadHalf[T Duplex] struct {
	cell cell[T]
}

// Read reads into p.
//
// Returns (n, err) once the underlying read completes, (0, io.EOF) at end
// of stream, or (0, iox.ErrWouldBlock) while the write half holds the stream
// or the stream has no data yet. An empty p returns (0, nil) when no read is
// in flight.
func (r *ReadHalf[T]) Read(p []byte) (int, error) {
	if r.cell.idle(opRead, p) {
		if len(p) == 0 {
			return 0, nil
		}
		r.cell.start(opRead, p, kont.Perform(read[T]{buf: p}))
	}
	return r.cell.poll(opRead, p)
}

// Ready returns a channel that receives a value when the write half releases
// the stream after Read would-blocked on it. Spurious values are possible.
func (r *ReadHalf[T]) Ready() <-chan struct{} {
	return r.cell.ready
}

// Cancel discards an in-flight read and releases the stream if this half
// holds it. Bytes the stream produced for the discarded read may be lost.
func (r *ReadHalf[T]) Cancel() {
	r.cell.cancel()
}

// Serial returns the serial shared by the halves of one Split.
func (r *ReadHalf[T]) Serial() Serial {
	return r.cell.ctx.lock.Serial()
}

// IsPairOf reports whether r and w came from the same Split.
func (r *ReadHalf[T]) IsPairOf(w *WriteHalf[T]) bool {
	return w != nil && r.cell.ctx.lock.IsPairOf(w.cell.ctx.lock)
}

// WriteHalf is the writable half of a stream returned by Split.
//
// Write, Flush and Close never block and share one operation cell: at most
// one of them holds the stream, and after iox.ErrWouldBlock from a call that
// holds it the same call must be repeated (Write with the same buffer) to
// resume it. A call still waiting for the grant is replaced by any other.
type WriteHalf[T Duplex] struct {
	cell cell[T]
}

// Write writes all of p.
//
// Returns (len(p), nil) once the stream accepted every byte, (n, err) with
// the accepted count on failure, or (0, iox.ErrWouldBlock) while the read
// half holds the stream or the stream accepts no more bytes for now. Bytes
// accepted before a would-block are remembered, not written again. An empty
// p returns (0, nil) when no write is in flight.
func (w *WriteHalf[T]) Write(p []byte) (int, error) {
	if w.cell.idle(opWrite, p) {
		if len(p) == 0 {
			return 0, nil
		}
		w.cell.start(opWrite, p, kont.Perform(write[T]{buf: p}))
	}
	return w.cell.poll(opWrite, p)
}

// Flush flushes buffered output of the stream.
// Returns iox.ErrWouldBlock while the flush cannot complete yet.
func (w *WriteHalf[T]) Flush() error {
	if w.cell.idle(opFlush, nil) {
		w.cell.start(opFlush, nil, kont.Perform(flush[T]{}))
	}
	_, err := w.cell.poll(opFlush, nil)
	return err
}

// Close closes the underlying stream, which also ends it for the read half.
// Returns iox.ErrWouldBlock while the close cannot complete yet.
func (w *WriteHalf[T]) Close() error {
	if w.cell.idle(opClose, nil) {
		w.cell.start(opClose, nil, kont.Perform(shut[T]{}))
	}
	_, err := w.cell.poll(opClose, nil)
	return err
}

// Ready returns a channel that receives a value when the read half releases
// the stream after a call would-blocked on it. Spurious values are possible.
func (w *WriteHalf[T]) Ready() <-chan struct{} {
	return w.cell.ready
}

// Cancel discards an in-flight write, flush or close and releases the stream
// if this half holds it. A partially written buffer stays partially written.
func (w *WriteHalf[T]) Cancel() {
	w.cell.cancel()
}

// Serial returns the serial shared by the halves of one Split.
func (w *WriteHalf[T]) Serial() Serial {
	return w.cell.ctx.lock.Serial()
}

// IsPairOf reports whether w and r came from the same Split.
func (w *WriteHalf[T]) IsPairOf(r *ReadHalf[T]) bool {
	return r != nil && r.IsPairOf(w)
}
