package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Dixeliare/hochiminh-chatbot/internal/pkg/errcode"
	appErr "github.com/Dixeliare/hochiminh-chatbot/internal/pkg/errors"
	"github.com/Dixeliare/hochiminh-chatbot/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case appErr.IsInvalid(err):
		response.Error(c, errcode.ErrInvalid, err.Error())
	case appErr.IsExhausted(err):
		response.Error(c, errcode.ErrAnswerExhausted, "Lỗi server, vui lòng thử lại")
	case appErr.IsPersistence(err):
		response.Error(c, errcode.ErrPersistFailed, "persist failed, retry the update")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
