// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package split

import (
	"code.hybscloud.com/iox"
)

// Result is the completed outcome of one logical call on a half.
type Result struct {
	N   int
	Err error
}

// Run reads into rp through r and writes wp through w, and returns both
// results. Interleaves both halves on the calling goroutine, polling each
// until it completes, using adaptive backoff (iox.Backoff) when neither half
// can make progress. Does not spawn goroutines or create channels.
//
// An in-flight operation on either half must match the call Run makes.
func Run[T Duplex](r *ReadHalf[T], rp []byte, w *WriteHalf[T], wp []byte) (Result, Result) {
	rres := Result{Err: iox.ErrWouldBlock}
	wres := Result{Err: iox.ErrWouldBlock}
	var bo iox.Backoff
	for iox.IsWouldBlock(rres.Err) || iox.IsWouldBlock(wres.Err) {
		progress := false
		if iox.IsWouldBlock(rres.Err) {
			rres.N, rres.Err = r.Read(rp)
			if !iox.IsWouldBlock(rres.Err) {
				progress = true
			}
		}
		if iox.IsWouldBlock(wres.Err) {
			wres.N, wres.Err = w.Write(wp)
			if !iox.IsWouldBlock(wres.Err) {
				progress = true
			}
		}
		if !progress {
			bo.Wait()
		} else {
			bo.Reset()
		}
	}
	return rres, wres
}
