package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/instasocial/social-api/internal/middleware"
	"github.com/instasocial/social-api/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Post         *PostHandler
	Story        *StoryHandler
	Message      *MessageHandler
	Notification *NotificationHandler
	Reel         *ReelHandler
	Upload       *UploadHandler
}

type RouterConfig struct {
	JWT         *middleware.JWTConfig
	Users       middleware.UserLookup
	CORSOrigins []string
	Logger      *logger.Logger
}

// NewRouter builds the engine with every /api route.
func NewRouter(h *Handlers, cfg RouterConfig) *gin.Engine {
	RegisterValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.Metrics())
	router.Use(middleware.AccessLog(cfg.Logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "InstaSocial API"})
	})

	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/login", h.Auth.Login)
	}

	protected := api.Group("")
	protected.Use(middleware.NewJWTAuth(cfg.JWT, cfg.Users))
	{
		protected.GET("/auth/me", h.Auth.Me)

		users := protected.Group("/users")
		{
			users.PUT("/me", h.User.UpdateProfile)
			users.GET("/search/:query", h.User.Search)
			users.GET("/:id", h.User.GetUser)
			users.POST("/:id/follow", h.User.ToggleFollow)
			users.POST("/:id/unfollow", h.User.Unfollow)
			users.GET("/:id/followers", h.User.Followers)
			users.GET("/:id/following", h.User.Following)
			users.GET("/:id/is-following", h.User.IsFollowing)
			users.GET("/:id/posts", h.Post.ListUserPosts)
		}

		posts := protected.Group("/posts")
		{
			posts.POST("", h.Post.CreatePost)
			posts.GET("/:id", h.Post.GetPost)
			posts.DELETE("/:id", h.Post.DeletePost)
			posts.POST("/:id/react", h.Post.React)
			posts.POST("/:id/comments", h.Post.CreateComment)
			posts.GET("/:id/comments", h.Post.ListComments)
			posts.POST("/:id/save", h.Post.ToggleSave)
		}

		protected.GET("/feed", h.Post.GetFeed)
		protected.GET("/explore", h.Post.GetExplore)
		protected.GET("/saved-posts", h.Post.SavedPosts)
		protected.GET("/saved/posts", h.Post.SavedPosts)

		protected.POST("/stories", h.Story.CreateStory)
		protected.GET("/stories", h.Story.ListStories)

		protected.POST("/messages", h.Message.SendMessage)
		protected.GET("/messages/:userId", h.Message.GetThread)
		protected.GET("/conversations", h.Message.GetConversations)

		protected.GET("/notifications", h.Notification.List)
		protected.POST("/notifications/read", h.Notification.MarkAllRead)

		protected.POST("/reels", h.Reel.CreateReel)
		protected.GET("/reels", h.Reel.ListReels)
		protected.POST("/reels/:id/like", h.Reel.ToggleLike)

		protected.POST("/upload/image", h.Upload.UploadImage)
	}

	return router
}
