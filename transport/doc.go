// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package transport implements api.NetConn over raw non-blocking descriptors:
// connected socket pairs, descriptors adopted from a net.Conn, and the
// eventfd Waker a channel uses to interrupt its own poll on close.
package transport
