// Package future
// Author: momentics <momentics@gmail.com>
//
// Single-assignment result cells. A Promise is the producer side and a
// Future the read side; both share one cell that resolves exactly once to
// a value, an error or cancellation.
package future
