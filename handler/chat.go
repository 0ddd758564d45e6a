package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/crestline/leasebot/ai"
	"github.com/crestline/leasebot/respond"
	"github.com/crestline/leasebot/session"
	"github.com/crestline/leasebot/stream"
	"github.com/gin-gonic/gin"
)

// ChatHandler serves the chat endpoints.
type ChatHandler struct {
	orchestrator *respond.Orchestrator
	pipeline     *stream.Pipeline
	logger       *slog.Logger
}

// NewChatHandler creates the chat handler.
func NewChatHandler(orchestrator *respond.Orchestrator, pipeline *stream.Pipeline) *ChatHandler {
	return &ChatHandler{
		orchestrator: orchestrator,
		pipeline:     pipeline,
		logger:       slog.Default().With("component", "handler"),
	}
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	var reply *respond.Reply
	var err error
	if stream.IsGreeting(req.Message) {
		reply, err = h.pipeline.Greet(c.Request.Context(), req.SessionID, req.Message)
	} else {
		reply, err = h.orchestrator.Generate(c.Request.Context(), req.SessionID, req.Message)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ChatResponse{
		Response:  reply.Answer,
		SessionID: reply.SessionID,
		Timestamp: reply.Timestamp,
	})
}

// ChatStream handles POST /api/chat/stream as server-sent events.
// The session identifier is echoed in the X-Session-Id header, minted
// when the request carries none.
func (h *ChatHandler) ChatStream(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	// Headers must be final before the first chunk, so the session ID is
	// minted here rather than downstream.
	if req.SessionID == "" {
		req.SessionID = session.NewSessionID()
	}
	c.Header("X-Session-Id", req.SessionID)
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	emit := func(_ context.Context, chunk string) error {
		if _, err := c.Writer.WriteString("data: " + chunk + "\n\n"); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	_, err := h.pipeline.Stream(c.Request.Context(), req.SessionID, req.Message, emit)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			h.logger.Debug("client disconnected mid-stream", "sessionID", req.SessionID)
			return
		}
		if c.Writer.Written() {
			// Headers are gone; all we can do is log and stop.
			h.logger.Error("stream failed mid-flight", "sessionID", req.SessionID, "err", err)
			return
		}
		h.writeError(c, err)
	}
}

// History handles GET /api/chat/history.
func (h *ChatHandler) History(c *gin.Context) {
	sessionID := c.Query("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sessionId is required"})
		return
	}

	sess, err := h.orchestrator.History(c.Request.Context(), sessionID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	messages := make([]HistoryMessage, 0, len(sess.Messages))
	for _, m := range sess.Messages {
		messages = append(messages, HistoryMessage{
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}

	c.JSON(http.StatusOK, HistoryResponse{SessionID: sess.ID, Messages: messages})
}

// Health handles GET /health.
func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps core errors onto HTTP responses. The chat answer body
// never carries internal error text.
func (h *ChatHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, respond.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
	case errors.Is(err, ai.ErrRateLimited):
		if after, ok := ai.RetryAfter(err); ok && after > 0 {
			c.Header("Retry-After", strconv.Itoa(int(after/time.Second)))
		}
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limited, please retry shortly"})
	default:
		h.logger.Error("request failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "something went wrong, please try again"})
	}
}
