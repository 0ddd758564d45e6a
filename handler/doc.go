// Package handler exposes the chat assistant over HTTP.
//
// Endpoints:
//
//	POST /api/chat          whole-response chat turn
//	POST /api/chat/stream   SSE chunk stream terminated by [DONE]
//	GET  /api/chat/history  stored conversation for a session
//	GET  /health            liveness probe
//
// The session identifier rides in the JSON body for whole responses and
// in the X-Session-Id response header for streams, minted server-side
// when absent. Only caller input errors and rate limiting surface as
// error responses; internal failures degrade inside the core and still
// produce a well-formed chat answer.
package handler
