// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package split_test

import "testing"

// skipRace skips tests that drive a Pipe, or the value guarded by a BiLock,
// from two goroutines. The race detector tracks per-variable happens-before
// and cannot see atomix's explicit orderings or SPSC's cross-variable memory
// ordering (store-release on data, load-acquire on index) in the pipe rings,
// producing false positives.
func skipRace(tb testing.TB) {
	tb.Helper()
	tb.Skip("skip: atomix and SPSC orderings are invisible to the race detector")
}
