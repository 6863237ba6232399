package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/instasocial/social-api/internal/middleware"
	"github.com/instasocial/social-api/internal/services"
	"github.com/instasocial/social-api/pkg/logger"
)

type PostHandler struct {
	postService    *services.PostService
	commentService *services.CommentService
	logger         *logger.Logger
}

func NewPostHandler(postService *services.PostService, commentService *services.CommentService, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		postService:    postService,
		commentService: commentService,
		logger:         logger,
	}
}

type feedQuery struct {
	Skip  int `form:"skip"`
	Limit int `form:"limit"`
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	var req services.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	post, err := h.postService.CreatePost(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.postService.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.postService.DeletePost(c.Request.Context(), middleware.GetUserID(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

func (h *PostHandler) ListUserPosts(c *gin.Context) {
	posts, err := h.postService.ListUserPosts(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list(posts))
}

func (h *PostHandler) GetFeed(c *gin.Context) {
	var query feedQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}

	posts, err := h.postService.GetFeed(c.Request.Context(), middleware.GetUserID(c), query.Skip, query.Limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list(posts))
}

func (h *PostHandler) GetExplore(c *gin.Context) {
	posts, err := h.postService.GetExplore(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list(posts))
}

func (h *PostHandler) React(c *gin.Context) {
	var req services.ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.postService.React(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), req.ReactionType); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *PostHandler) CreateComment(c *gin.Context) {
	var req services.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *PostHandler) ListComments(c *gin.Context) {
	comments, err := h.commentService.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list(comments))
}

func (h *PostHandler) ToggleSave(c *gin.Context) {
	saved, err := h.postService.ToggleSave(c.Request.Context(), middleware.GetUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"isSaved": saved})
}

func (h *PostHandler) SavedPosts(c *gin.Context) {
	posts, err := h.postService.SavedPosts(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list(posts))
}
