package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Dixeliare/hochiminh-chatbot/internal/pkg/errcode"
	"github.com/Dixeliare/hochiminh-chatbot/internal/pkg/response"
	"github.com/Dixeliare/hochiminh-chatbot/internal/service"
)

type ChatHandler struct {
	rag *service.RAGService
}

func NewChatHandler(rag *service.RAGService) *ChatHandler {
	return &ChatHandler{rag: rag}
}

type chatRequest struct {
	Question string `json:"question"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.rag.Ask(c.Request.Context(), req.Question)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

type refreshRequest struct {
	Force bool `json:"force"`
}

func (h *ChatHandler) RefreshKnowledgeBase(c *gin.Context) {
	var req refreshRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, errcode.ErrInvalid, "invalid request")
			return
		}
	}
	if err := h.rag.RefreshKnowledgeBase(c.Request.Context(), req.Force); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"documents": h.rag.Stats().DocumentCount})
}
