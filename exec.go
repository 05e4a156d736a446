// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package split

import (
	"code.hybscloud.com/iox"
)

// ReadWait reads into p, blocking past iox.ErrWouldBlock.
// Waits on the release wakeup while the write half holds the stream and
// with adaptive backoff (iox.Backoff) while the stream has no data.
// Does not spawn goroutines.
func (r *ReadHalf[T]) ReadWait(p []byte) (int, error) {
	var bo iox.Backoff
	for {
		n, err := r.Read(p)
		if !iox.IsWouldBlock(err) {
			return n, err
		}
		r.cell.wait(&bo)
	}
}

// WriteWait writes all of p, blocking past iox.ErrWouldBlock.
// Waits the same way as ReadWait.
func (w *WriteHalf[T]) WriteWait(p []byte) (int, error) {
	var bo iox.Backoff
	for {
		n, err := w.Write(p)
		if !iox.IsWouldBlock(err) {
			return n, err
		}
		w.cell.wait(&bo)
	}
}

// FlushWait flushes the stream, blocking past iox.ErrWouldBlock.
func (w *WriteHalf[T]) FlushWait() error {
	var bo iox.Backoff
	for {
		err := w.Flush()
		if !iox.IsWouldBlock(err) {
			return err
		}
		w.cell.wait(&bo)
	}
}

// CloseWait closes the stream, blocking past iox.ErrWouldBlock.
func (w *WriteHalf[T]) CloseWait() error {
	var bo iox.Backoff
	for {
		err := w.Close()
		if !iox.IsWouldBlock(err) {
			return err
		}
		w.cell.wait(&bo)
	}
}
