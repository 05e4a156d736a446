// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package split divides one non-blocking duplex stream into an independent
// read half and write half.
//
// Both halves share the stream through a [BiLock]: at most one half touches
// the stream at a time. A call that cannot finish in one turn returns
// [code.hybscloud.com/iox.ErrWouldBlock] and keeps its in-flight operation,
// together with the exclusive grant, until a later call with the same buffer
// completes it.
//
// # Architecture
//
//   - Capability: [Duplex] is io.Reader + io.Writer + [Flusher] + io.Closer with iox non-blocking semantics. [Adapt] fills in missing Flush/Close.
//   - Exclusion: [BiLock] is a two-sided lock over an atomix state word. A waiting side registers a [Waker] in an atomix pointer slot; the latest registration replaces earlier ones.
//   - Resumption: every logical call is a [code.hybscloud.com/kont] effect protocol (acquire, operate, release) stepped one effect at a time. The pending [code.hybscloud.com/kont.Suspension] is the operation cell.
//   - Halves: [Split] returns a [ReadHalf] and a [WriteHalf]; [Reunite] turns them back into the stream.
//   - Memory stream: [Pipe] returns two connected in-memory [Duplex] ends over lock-free SPSC byte rings ([code.hybscloud.com/lfq]).
//
// # Caller Obligations
//
//   - After ErrWouldBlock from a Read or Write that holds the stream, the next call on that half must pass the same buffer, unchanged. Passing another buffer panics. A call still waiting for the stream has not started and may be replaced freely.
//   - Calls on a single half are sequential. The two halves may run on different goroutines.
//   - Cancel discards an in-flight operation and releases the lock. The stream position afterwards is undefined.
//   - Dropping a half does not release the stream. A half abandoned while it holds the stream blocks the other half forever; call Cancel first.
//   - A read holds the stream for as long as it is in flight. A stream whose reads wait for this process's own writes (a loopback) starves the write half while a read would-blocks.
//
// # Integration
//
//   - Polling: Read, Write, Flush and Close never block. [ReadHalf.Ready] and [WriteHalf.Ready] signal when the other half released the stream.
//   - Blocking: ReadWait, WriteWait, FlushWait and CloseWait wait past boundaries using the wake channel and adaptive backoff (iox.Backoff).
//
// # Example
//
//	r, w := split.Split(split.Adapt(bytes.NewBuffer([]byte{1, 2, 3})))
//	buf := make([]byte, 3)
//	n, err := r.Read(buf)
//	if iox.IsWouldBlock(err) {
//		// retry later with the same buf
//	}
//	_, err = w.WriteWait([]byte{4})
package split
