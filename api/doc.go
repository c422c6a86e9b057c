// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package api declares the contracts shared by every hioload-chan layer: the
// channel capability interfaces, the NetConn transport primitive and the
// error taxonomy (no codec, end of stream, timeout, cancellation).
package api
