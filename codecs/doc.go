// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package codecs provides ready-made codecs for common payloads.
//
// Variable-size values are framed as an unsigned varint length followed by
// the body. Fixed-size numbers are written big-endian without a prefix.
// Snappy and Zstd wrap any codec with whole-message compression.
package codecs
