package handler

import "github.com/gin-gonic/gin"

// NewRouter builds the HTTP router over the chat handler.
func NewRouter(h *ChatHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.POST("/chat", h.Chat)
		api.POST("/chat/stream", h.ChatStream)
		api.GET("/chat/history", h.History)
	}

	return r
}
