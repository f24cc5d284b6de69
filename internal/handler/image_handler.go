package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Dixeliare/hochiminh-chatbot/internal/imagesearch"
	"github.com/Dixeliare/hochiminh-chatbot/internal/pkg/errcode"
	"github.com/Dixeliare/hochiminh-chatbot/internal/pkg/response"
)

type ImageHandler struct {
	images *imagesearch.Service
}

func NewImageHandler(images *imagesearch.Service) *ImageHandler {
	return &ImageHandler{images: images}
}

type imageSearchRequest struct {
	Query      string `json:"query"`
	NumResults int    `json:"num_results"`
}

func (h *ImageHandler) Search(c *gin.Context) {
	var req imageSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	images, err := h.images.Search(c.Request.Context(), req.Query, req.NumResults)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"images": images,
		"query":  req.Query,
		"total":  len(images),
	})
}
