package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/instasocial/social-api/internal/middleware"
	"github.com/instasocial/social-api/internal/services"
	"github.com/instasocial/social-api/pkg/logger"
)

// StoryHandler serves the stories bar.
type StoryHandler struct {
	storyService *services.StoryService
	logger       *logger.Logger
}

func NewStoryHandler(storyService *services.StoryService, logger *logger.Logger) *StoryHandler {
	return &StoryHandler{storyService: storyService, logger: logger}
}

func (h *StoryHandler) CreateStory(c *gin.Context) {
	var req services.CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	story, err := h.storyService.CreateStory(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (h *StoryHandler) ListStories(c *gin.Context) {
	stories, err := h.storyService.ListStories(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list(stories))
}

type MessageHandler struct {
	messageService *services.MessageService
	logger         *logger.Logger
}

func NewMessageHandler(messageService *services.MessageService, logger *logger.Logger) *MessageHandler {
	return &MessageHandler{messageService: messageService, logger: logger}
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	message, err := h.messageService.SendMessage(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, message)
}

// GetThread also marks the peer's messages as read.
func (h *MessageHandler) GetThread(c *gin.Context) {
	messages, err := h.messageService.GetThread(c.Request.Context(), middleware.GetUserID(c), c.Param("userId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list(messages))
}

func (h *MessageHandler) GetConversations(c *gin.Context) {
	conversations, err := h.messageService.GetConversations(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list(conversations))
}

type NotificationHandler struct {
	notificationService *services.NotificationService
	logger              *logger.Logger
}

func NewNotificationHandler(notificationService *services.NotificationService, logger *logger.Logger) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, logger: logger}
}

func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.notificationService.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list(notifications))
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notificationService.MarkAllRead(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type ReelHandler struct {
	reelService *services.ReelService
	logger      *logger.Logger
}

func NewReelHandler(reelService *services.ReelService, logger *logger.Logger) *ReelHandler {
	return &ReelHandler{reelService: reelService, logger: logger}
}

func (h *ReelHandler) CreateReel(c *gin.Context) {
	var req services.CreateReelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	reel, err := h.reelService.CreateReel(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, reel)
}

func (h *ReelHandler) ListReels(c *gin.Context) {
	reels, err := h.reelService.ListReels(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list(reels))
}

func (h *ReelHandler) ToggleLike(c *gin.Context) {
	liked, err := h.reelService.ToggleLike(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isLiked": liked})
}

type UploadHandler struct {
	uploadService *services.UploadService
	logger        *logger.Logger
}

func NewUploadHandler(uploadService *services.UploadService, logger *logger.Logger) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, logger: logger}
}

func (h *UploadHandler) UploadImage(c *gin.Context) {
	var req services.UploadImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	url, err := h.uploadService.UploadImage(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": url})
}
