// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, logging and metrics layer for hioload-chan.
//
// Provides:
//   - TOML configuration with defaults and environment overrides
//   - zap logger construction from that configuration
//   - Prometheus counters for channel traffic and outcomes
package control
