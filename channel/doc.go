// Package channel
// Author: momentics <momentics@gmail.com>
//
// Socket-backed channels carrying codec-encoded values over a non-blocking
// byte stream.
//
// A SocketChannel serializes each value completely before writing it, so
// concurrent senders never interleave, and decodes inbound values through
// a fresh decoder per call. Blocking happens only in poll(2); Close wakes
// any parked caller through an eventfd.
//
// Go methods cannot carry type parameters, so SocketChannel works on
// codec.Codec[any] and the package-level helpers Send, Recv, SendTimeout
// and RecvTimeout provide the typed surface.
package channel
