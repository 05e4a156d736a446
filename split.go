// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package split

// halvesPair holds both halves in a single allocation.
// The BiLock pair, which owns the stream, is a separate heap object.
type halvesPair[T Duplex] struct {
	r ReadHalf[T]
	w WriteHalf[T]
}

// Split wraps t in a BiLock and returns its read half and write half.
//
// The read half owns side A of the lock and the write half side B. No
// operation is started; both halves begin idle. t must not be used directly
// while the halves exist.
func Split[T Duplex](t T) (*ReadHalf[T], *WriteHalf[T]) {
	a, b := NewBiLock(t)

	pair := &halvesPair[T]{}
	pair.r.cell.init(a)
	pair.w.cell.init(b)
	return &pair.r, &pair.w
}

// Reunite returns the stream r and w were split from.
//
// Any in-flight operation on either half is cancelled first; see Cancel for
// what that means for the stream position. Returns ErrUnpaired if r and w
// came from different Splits. Neither half may be used afterwards.
func Reunite[T Duplex](r *ReadHalf[T], w *WriteHalf[T]) (T, error) {
	if !r.IsPairOf(w) {
		var zero T
		return zero, ErrUnpaired
	}
	r.Cancel()
	w.Cancel()
	return r.cell.ctx.lock.Reunite(w.cell.ctx.lock)
}
