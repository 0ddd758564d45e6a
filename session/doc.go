// Package session manages per-session conversation history.
//
// The Manager fronts a persistent session repository with get-or-create
// semantics and append-only updates: a turn always appends the user
// message before the assistant message, and the message list never
// shrinks. When the repository is unavailable the manager degrades to an
// in-memory copy so the conversation survives for as long as the process
// does, rather than aborting the turn.
package session
