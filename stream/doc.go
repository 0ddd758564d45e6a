// Package stream delivers chat answers as an ordered chunk sequence.
//
// The Pipeline drives a turn through a small state machine (classify,
// search, generate, stream) and emits the final answer in fixed-size
// chunks with a short pacing delay, terminated by an end marker.
// Greeting-only messages take a fast path straight to streaming with a
// scripted reply paced character by character.
//
// Cancellation is part of the contract: when the caller's context is
// done, emission stops immediately and the cancellation propagates into
// any still-running generation or store call.
package stream
