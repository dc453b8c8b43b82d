// Package stream is the token-stream boundary of the parse engine.
//
// A Source yields start-element, end-element and error events. XMLSource
// produces them from a raw reply, SliceSource replays recorded events, and
// Decode undoes the content encoding of a reply body before tokenizing.
package stream
