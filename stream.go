// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package split

import (
	"io"

	"code.hybscloud.com/iox"
)

// Flusher is implemented by streams that buffer output.
//
// Flush may return iox.ErrWouldBlock; the caller retries it later.
type Flusher interface {
	Flush() error
}

// Duplex is the capability set a stream needs before it can be split.
//
// Every method follows iox non-blocking semantics:
//   - Read returns (n, nil) or (n, err) when it completes. (0, io.EOF) marks
//     end of stream. (0, iox.ErrWouldBlock) means no progress yet; the caller
//     retries with the same buffer.
//   - Write may accept a prefix of p and return iox.ErrWouldBlock; the caller
//     resumes with the unwritten remainder.
//   - Flush and Close return nil, a failure, or iox.ErrWouldBlock.
type Duplex interface {
	iox.Reader
	iox.Writer
	Flusher
	iox.Closer
}

// Adapt returns rw as a Duplex.
//
// Flush calls rw.Flush when rw is a Flusher and is a no-op otherwise.
// Close calls rw.Close when rw is an io.Closer and is a no-op otherwise.
// If rw already implements Duplex it is returned unchanged.
func Adapt(rw io.ReadWriter) Duplex {
	if d, ok := rw.(Duplex); ok {
		return d
	}
	return adapted{rw}
}

type adapted struct {
	io.ReadWriter
}

func (a adapted) Flush() error {
	if f, ok := a.ReadWriter.(Flusher); ok {
		return f.Flush()
	}
	return nil
}

func (a adapted) Close() error {
	if c, ok := a.ReadWriter.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
