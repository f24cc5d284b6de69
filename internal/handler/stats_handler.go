package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Dixeliare/hochiminh-chatbot/internal/pkg/response"
	"github.com/Dixeliare/hochiminh-chatbot/internal/service"
)

type StatsHandler struct {
	rag *service.RAGService
}

func NewStatsHandler(rag *service.RAGService) *StatsHandler {
	return &StatsHandler{rag: rag}
}

func (h *StatsHandler) Root(c *gin.Context) {
	response.Success(c, gin.H{
		"message": "Enhanced HCM Thought Chatbot API",
		"status":  "running",
	})
}

func (h *StatsHandler) Health(c *gin.Context) {
	response.Success(c, gin.H{
		"status": "healthy",
		"stats":  h.rag.Stats(),
	})
}

func (h *StatsHandler) Stats(c *gin.Context) {
	response.Success(c, h.rag.Stats())
}
