// Package pool
// Author: momentics <momentics@gmail.com>
//
// Buffer reuse for the channel hot path: growable serialization buffers for
// send and fixed-size read chunks for recv, both over sync.Pool.
package pool
