package handler

import (
	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Chat   *ChatHandler
	Images *ImageHandler
	Stats  *StatsHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/", deps.Stats.Root)
	api.GET("/health", deps.Stats.Health)
	api.GET("/stats", deps.Stats.Stats)

	api.POST("/chat", deps.Chat.Chat)
	api.POST("/kb/refresh", deps.Chat.RefreshKnowledgeBase)
	api.POST("/search-image", deps.Images.Search)
}
