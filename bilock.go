// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package split

import (
	"errors"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// Lock states. heldA and heldB double as side identifiers.
const (
	unlocked uint32 = iota
	heldA
	heldB
	reunited
)

// ErrUnpaired is returned when two sides or halves that did not come from the
// same split are reunited.
var ErrUnpaired = errors.New("split: halves belong to different streams")

// Waker is notified when the other side of a BiLock releases it.
// Wake must not block.
type Waker interface {
	Wake()
}

// WakerFunc adapts a function to Waker.
type WakerFunc func()

// Wake calls f.
func (f WakerFunc) Wake() { f() }

// BiLock is one side of a two-owner exclusive lock over a value of type T.
//
// NewBiLock returns both sides. At most one side holds the lock at any
// instant. Each side must be used by one goroutine at a time; the two sides
// may be used concurrently.
//
// The lock is not handed off on release: Unlock wakes the waiting side, and
// whichever side locks first wins. A side that relocks in a tight loop can
// starve the other.
type BiLock[T any] struct {
	pair *biLockPair[T]
	side uint32
	own  *atomix.Pointer[Waker] // latest waker this side registered
	peer *atomix.Pointer[Waker] // latest waker the other side registered
}

// biLockPair holds both sides, the state word, the value and both waker
// slots in a single allocation. A slot is written by the side that waits and
// emptied by the side that releases.
type biLockPair[T any] struct {
	a      BiLock[T]
	b      BiLock[T]
	state  atomix.Uint32
	serial Serial
	value  T
	wakeA  atomix.Pointer[Waker]
	wakeB  atomix.Pointer[Waker]
}

// NewBiLock wraps v and returns the two sides of the lock.
func NewBiLock[T any](v T) (*BiLock[T], *BiLock[T]) {
	pair := &biLockPair[T]{value: v, serial: nextSerial()}
	pair.a = BiLock[T]{pair: pair, side: heldA, own: &pair.wakeA, peer: &pair.wakeB}
	pair.b = BiLock[T]{pair: pair, side: heldB, own: &pair.wakeB, peer: &pair.wakeA}
	return &pair.a, &pair.b
}

// TryLock acquires the lock without blocking.
//
// If the other side holds the lock, w is registered to be woken on release
// and TryLock returns iox.ErrWouldBlock. Each side keeps only its latest
// registration: w replaces any waker this side registered before.
// Registration happens before the final acquisition attempt, so a release
// racing with TryLock either grants the lock here or wakes w. A nil w
// registers nothing.
//
// TryLock panics if this side already holds the lock.
func (l *BiLock[T]) TryLock(w Waker) (BiLockGuard[T], error) {
	if l.pair.state.CompareAndSwap(unlocked, l.side) {
		return BiLockGuard[T]{lock: l}, nil
	}
	switch l.pair.state.Load() {
	case l.side:
		panic("split: BiLock already held by this side")
	case reunited:
		panic("split: BiLock used after Reunite")
	}
	if w != nil {
		l.own.Swap(&w)
	}
	if l.pair.state.CompareAndSwap(unlocked, l.side) {
		return BiLockGuard[T]{lock: l}, nil
	}
	return BiLockGuard[T]{}, iox.ErrWouldBlock
}

// Held reports whether this side currently holds the lock.
func (l *BiLock[T]) Held() bool {
	return l.pair.state.Load() == l.side
}

// Serial returns the serial shared by both sides of the lock.
func (l *BiLock[T]) Serial() Serial {
	return l.pair.serial
}

// IsPairOf reports whether l and other are the two sides of one lock.
func (l *BiLock[T]) IsPairOf(other *BiLock[T]) bool {
	return other != nil && l.pair == other.pair && l.side != other.side
}

// Reunite returns the wrapped value and retires both sides.
//
// It returns ErrUnpaired if other is not the opposite side of l, and
// iox.ErrWouldBlock if either side holds the lock. Any later use of either
// side panics.
func (l *BiLock[T]) Reunite(other *BiLock[T]) (T, error) {
	var zero T
	if !l.IsPairOf(other) {
		return zero, ErrUnpaired
	}
	if !l.pair.state.CompareAndSwap(unlocked, reunited) {
		if l.pair.state.Load() == reunited {
			panic("split: BiLock used after Reunite")
		}
		return zero, iox.ErrWouldBlock
	}
	v := l.pair.value
	l.pair.value = zero
	return v, nil
}

// BiLockGuard is an exclusive grant returned by TryLock.
// Unlock must be called exactly once.
type BiLockGuard[T any] struct {
	lock *BiLock[T]
}

// Value returns the guarded value. The pointer is valid until Unlock.
func (g BiLockGuard[T]) Value() *T {
	return &g.lock.pair.value
}

// Unlock releases the grant and wakes the waker the other side registered
// last, if any.
func (g BiLockGuard[T]) Unlock() {
	l := g.lock
	if l == nil || !l.pair.state.CompareAndSwap(l.side, unlocked) {
		panic("split: unlock of BiLock not held")
	}
	if w := l.peer.Swap(nil); w != nil {
		(*w).Wake()
	}
}
