// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package codec defines the streaming encode/decode contract used by
// channels. An Encoder produces one value's wire form in chunks and a
// Decoder consumes it in chunks, both reporting the bytes still outstanding
// through Remaining. Codecs are looked up by a stable type Tag in a Registry
// passed explicitly to the channel.
package codec
