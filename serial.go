// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package split

import (
	"strconv"

	"code.hybscloud.com/atomix"
)

// Serial identifies one BiLock pair, and with it one Split.
// Both sides of a lock and both halves of a Split report the same serial.
// Zero is never issued.
type Serial uint32

// serials issues lock serials in increasing order.
var serials atomix.Uint32

func nextSerial() Serial {
	for {
		if s := Serial(serials.Add(1)); s != 0 {
			return s
		}
	}
}

func (s Serial) String() string {
	return "split#" + strconv.FormatUint(uint64(s), 10)
}
