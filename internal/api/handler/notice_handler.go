package handler

import (
	"Tasbih/internal/pkg/response"
	"Tasbih/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type NoticeHandler struct {
	noticeService service.NoticeService
}

func NewNoticeHandler(s service.NoticeService) *NoticeHandler {
	return &NoticeHandler{
		noticeService: s,
	}
}

// GetNoticeList 获取挑战通知列表
func (h *NoticeHandler) GetNoticeList(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	userID := c.GetUint64("user_id")

	list, err := h.noticeService.GetNoticeList(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// GetUnreadCount 获取未读数
func (h *NoticeHandler) GetUnreadCount(c *gin.Context) {
	userID := c.GetUint64("user_id")

	unread, err := h.noticeService.GetUnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, unread)
}

// MarkRead 标记单条已读
func (h *NoticeHandler) MarkRead(c *gin.Context) {
	var req struct {
		MsgID string `json:"msgId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	userID := c.GetUint64("user_id")
	if err := h.noticeService.MarkRead(c.Request.Context(), userID, req.MsgID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
