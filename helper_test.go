// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package split_test

import (
	"io"
	"runtime"
	"sync/atomic"

	"code.hybscloud.com/iox"
)

// memStream is an in-memory Duplex with scripted would-block results.
//
// Reads consume in, writes append to out. Each call first returns
// iox.ErrWouldBlock as many times as its stall count says. The stall
// counter is shared by all calls, so it only works out if the split keeps
// the stream locked while a call is in flight. busy detects two calls
// touching the stream at once.
type memStream struct {
	in  []byte
	out []byte

	readStall  int
	writeStall int
	flushStall int
	closeStall int
	writeChunk int // max bytes accepted per Write, 0 for unlimited

	readErr  error
	writeErr error
	flushErr error
	closeErr error

	stalls   int
	reads    int
	writes   int
	flushes  int
	closes   int
	readBufs []*byte
	calls    []byte // 'r' or 'w' per underlying Read or Write call
	closed   bool

	yield    bool // runtime.Gosched inside each call to widen race windows
	busy     atomic.Int32
	overlaps atomic.Int32
}

func (s *memStream) enter() {
	if s.busy.Add(1) != 1 {
		s.overlaps.Add(1)
	}
	if s.yield {
		runtime.Gosched()
	}
}

func (s *memStream) exit() {
	s.busy.Add(-1)
}

// stall reports whether the current call should would-block once more.
func (s *memStream) stall(limit int) bool {
	if s.stalls < limit {
		s.stalls++
		return true
	}
	s.stalls = 0
	return false
}

func (s *memStream) Read(p []byte) (int, error) {
	s.enter()
	defer s.exit()
	s.reads++
	s.calls = append(s.calls, 'r')
	if len(p) > 0 {
		s.readBufs = append(s.readBufs, &p[0])
	}
	if s.stall(s.readStall) {
		return 0, iox.ErrWouldBlock
	}
	if s.readErr != nil {
		err := s.readErr
		s.readErr = nil
		return 0, err
	}
	if len(s.in) == 0 {
		return 0, io.EOF
	}
	n := copy(p, s.in)
	s.in = s.in[n:]
	return n, nil
}

func (s *memStream) Write(p []byte) (int, error) {
	s.enter()
	defer s.exit()
	s.writes++
	s.calls = append(s.calls, 'w')
	if s.stall(s.writeStall) {
		return 0, iox.ErrWouldBlock
	}
	if s.writeErr != nil {
		err := s.writeErr
		s.writeErr = nil
		return 0, err
	}
	if s.closed {
		return 0, io.ErrClosedPipe
	}
	n := len(p)
	if s.writeChunk > 0 && n > s.writeChunk {
		n = s.writeChunk
	}
	s.out = append(s.out, p[:n]...)
	if n < len(p) {
		return n, iox.ErrWouldBlock
	}
	return n, nil
}

func (s *memStream) Flush() error {
	s.enter()
	defer s.exit()
	s.flushes++
	if s.stall(s.flushStall) {
		return iox.ErrWouldBlock
	}
	if s.flushErr != nil {
		err := s.flushErr
		s.flushErr = nil
		return err
	}
	return nil
}

func (s *memStream) Close() error {
	s.enter()
	defer s.exit()
	s.closes++
	if s.stall(s.closeStall) {
		return iox.ErrWouldBlock
	}
	if s.closeErr != nil {
		return s.closeErr
	}
	s.closed = true
	return nil
}
