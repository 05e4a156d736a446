// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package split_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/split"
	"golang.org/x/sync/errgroup"
)

// TestConcurrentHalvesNeverOverlap drives each half from its own goroutine
// and checks that the stream never sees two calls at once.
func TestConcurrentHalvesNeverOverlap(t *testing.T) {
	skipRace(t)
	payload := bytes.Repeat([]byte("0123456789"), 100)
	s := &memStream{
		in:         append([]byte(nil), payload...),
		readStall:  1,
		writeStall: 1,
		writeChunk: 3,
		yield:      true,
	}
	r, w := split.Split(s)

	var got []byte
	var want bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		buf := make([]byte, 13)
		for {
			n, err := r.ReadWait(buf)
			got = append(got, buf[:n]...)
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return err
			}
		}
	})
	msgs := make([][]byte, 100)
	for i := range msgs {
		msgs[i] = fmt.Appendf(nil, "<%03d>", i)
		want.Write(msgs[i])
	}
	g.Go(func() error {
		for _, m := range msgs {
			if _, err := w.WriteWait(m); err != nil {
				return err
			}
		}
		return w.FlushWait()
	})
	if err := g.Wait(); err != nil {
		t.Fatalf("halves: %v", err)
	}

	if n := s.overlaps.Load(); n != 0 {
		t.Fatalf("stream saw %d overlapping calls", n)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("read %d bytes, want %d in order", len(got), len(payload))
	}
	if !bytes.Equal(s.out, want.Bytes()) {
		t.Fatalf("stream got %q, want %q", s.out, want.Bytes())
	}
}

// TestConcurrentReadWriteSerialized races one multi-step read against one
// multi-step write and checks that the stream saw all of one before any of
// the other.
func TestConcurrentReadWriteSerialized(t *testing.T) {
	skipRace(t)
	for i := range 50 {
		// The read would-blocks 3 times; the write is accepted a byte at a time.
		s := &memStream{in: []byte("RRRR"), readStall: 3, writeChunk: 1, yield: true}
		r, w := split.Split(s)

		var g errgroup.Group
		g.Go(func() error {
			buf := make([]byte, 4)
			_, err := r.ReadWait(buf)
			return err
		})
		g.Go(func() error {
			_, err := w.WriteWait([]byte("WWWW"))
			return err
		})
		if err := g.Wait(); err != nil {
			t.Fatalf("round %d: %v", i, err)
		}

		calls := string(s.calls)
		if calls != "rrrrwwww" && calls != "wwwwrrrr" {
			t.Fatalf("round %d: stream calls %q interleave", i, calls)
		}
		if string(s.out) != "WWWW" {
			t.Fatalf("round %d: stream got %q, want %q", i, s.out, "WWWW")
		}
	}
}

// TestCooperativeScheduler polls both halves from one goroutine, the way an
// event loop would, until both complete.
func TestCooperativeScheduler(t *testing.T) {
	s := &memStream{in: []byte("ping"), readStall: 2, writeChunk: 2, writeStall: 1}
	r, w := split.Split(s)

	rbuf := make([]byte, 4)
	wbuf := []byte("pong")
	var rn, wn int
	var rerr, werr error = iox.ErrWouldBlock, iox.ErrWouldBlock
	turns := 0
	for iox.IsWouldBlock(rerr) || iox.IsWouldBlock(werr) {
		if iox.IsWouldBlock(rerr) {
			rn, rerr = r.Read(rbuf)
		}
		if iox.IsWouldBlock(werr) {
			wn, werr = w.Write(wbuf)
		}
		turns++
		if turns > 100 {
			t.Fatal("scheduler made no progress")
		}
	}
	if rerr != nil || string(rbuf[:rn]) != "ping" {
		t.Fatalf("Read got (%q, %v), want (ping, nil)", rbuf[:rn], rerr)
	}
	if werr != nil || wn != 4 || string(s.out) != "pong" {
		t.Fatalf("Write got (%d, %v, %q), want (4, nil, pong)", wn, werr, s.out)
	}
	// The read started first and held the stream until it completed.
	if got := string(s.calls); got[:3] != "rrr" || bytes.ContainsRune(s.calls[3:], 'r') {
		t.Fatalf("stream calls %q interleave", got)
	}
}

// TestCopyFromReadHalf uses the read half as a plain io.Reader under
// iox.CopyBufferPolicy, which retries on ErrWouldBlock with the same buffer.
func TestCopyFromReadHalf(t *testing.T) {
	payload := []byte("copied through the read half")
	r, _ := split.Split(&memStream{in: append([]byte(nil), payload...), readStall: 1})

	var dst bytes.Buffer
	buf := make([]byte, 5)
	n, err := iox.CopyBufferPolicy(struct{ io.Writer }{&dst}, r, buf, iox.YieldPolicy{})
	if err != nil {
		t.Fatalf("CopyBufferPolicy: %v", err)
	}
	if n != int64(len(payload)) || !bytes.Equal(dst.Bytes(), payload) {
		t.Fatalf("copied (%d, %q), want (%d, %q)", n, dst.Bytes(), len(payload), payload)
	}
}

func TestRun(t *testing.T) {
	s := &memStream{in: []byte("request"), readStall: 2, writeStall: 2, writeChunk: 4}
	r, w := split.Split(s)

	rbuf := make([]byte, 16)
	rres, wres := split.Run(r, rbuf, w, []byte("response"))
	if rres.Err != nil || string(rbuf[:rres.N]) != "request" {
		t.Fatalf("read result (%q, %v), want (request, nil)", rbuf[:rres.N], rres.Err)
	}
	if wres.Err != nil || wres.N != 8 || string(s.out) != "response" {
		t.Fatalf("write result (%d, %v, %q), want (8, nil, response)", wres.N, wres.Err, s.out)
	}
	if n := s.overlaps.Load(); n != 0 {
		t.Fatalf("stream saw %d overlapping calls", n)
	}
}

func TestRunPropagatesErrors(t *testing.T) {
	reset := errors.New("connection reset")
	s := &memStream{readErr: reset}
	r, w := split.Split(s)

	rres, wres := split.Run(r, make([]byte, 4), w, []byte("x"))
	if !errors.Is(rres.Err, reset) {
		t.Fatalf("read error got %v, want %v", rres.Err, reset)
	}
	if wres.Err != nil || wres.N != 1 {
		t.Fatalf("write result (%d, %v), want (1, nil)", wres.N, wres.Err)
	}
}
