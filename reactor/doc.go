// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides readiness multiplexing over channels: Select for
// one-shot waits across many channels (poll(2)), Wait for a single
// descriptor with an optional wake descriptor, and an epoll-backed Poller for
// long-lived watch sets.
package reactor
