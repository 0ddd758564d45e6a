// Package respond turns an analyzed user message into a final answer.
//
// The Orchestrator runs the full turn: classify the message, retrieve
// candidates through the search engine, build a size-bounded prompt,
// invoke generation with timeout and retry, post-process deep links, and
// record the turn in the session. Failures degrade along a fixed ladder:
// zero candidates retry once unfiltered then answer with a fixed message,
// and persistent generation failure falls back to a deterministic
// template built from the top candidate. Callers never see a raw error
// string as chat output.
//
// Final answers are cached by query fingerprint with a short TTL so a
// repeated question inside the window skips search and generation
// entirely.
package respond
