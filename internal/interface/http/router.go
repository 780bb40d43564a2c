package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agriconnect/agriconnect/internal/domain/auth"
	"github.com/agriconnect/agriconnect/internal/infra/config"
)

// Handlers groups the transport handlers for router construction.
type Handlers struct {
	AI        *AIHandler
	Auth      *AuthHandler
	Community *CommunityHandler
	Market    *MarketHandler
	Chat      *ChatHandler
	Media     *MediaHandler
}

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handlers Handlers, authSvc auth.Service, logger *slog.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, logger),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		ai := api.Group("/ai")
		{
			ai.POST("/diagnose-crop", handlers.AI.DiagnoseCrop)
			ai.POST("/predict-price", handlers.AI.PredictPrice)
			ai.POST("/weather-advice", handlers.AI.WeatherAdvice)
			ai.POST("/recommend-crop", handlers.AI.RecommendCrop)
		}

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", handlers.Auth.Register)
			authGroup.POST("/login", handlers.Auth.Login)
			authGroup.POST("/refresh", handlers.Auth.Refresh)
			authGroup.GET("/google", handlers.Auth.GoogleLogin)
			authGroup.GET("/google/callback", handlers.Auth.GoogleCallback)
			authGroup.GET("/me", authMiddleware(authSvc), handlers.Auth.Profile)
		}

		communityGroup := api.Group("/community")
		{
			communityGroup.GET("/communities", handlers.Community.ListCommunities)
			communityGroup.GET("/posts", handlers.Community.ListPosts)
			communityGroup.GET("/posts/:id", handlers.Community.GetPost)
			communityGroup.GET("/posts/:id/comments", handlers.Community.ListComments)
			communityGroup.GET("/posts/:id/related", handlers.Community.RelatedPosts)
			communityGroup.GET("/trending", handlers.Community.TrendingSearches)

			authed := communityGroup.Group("", authMiddleware(authSvc))
			{
				authed.POST("/posts", handlers.Community.CreatePost)
				authed.POST("/posts/:id/vote", handlers.Community.VotePost)
				authed.POST("/posts/:id/comments", handlers.Community.AddComment)
			}
		}

		marketGroup := api.Group("/market")
		{
			marketGroup.GET("/products", handlers.Market.ListProducts)
			marketGroup.GET("/products/:id", handlers.Market.GetProduct)

			authed := marketGroup.Group("", authMiddleware(authSvc))
			{
				authed.POST("/products", handlers.Market.CreateProduct)
				authed.POST("/orders", handlers.Market.PlaceOrder)
				authed.GET("/orders", handlers.Market.ListOrders)
				authed.PATCH("/orders/:id", handlers.Market.UpdateOrderStatus)
			}
		}

		chatGroup := api.Group("/chat", authMiddleware(authSvc))
		{
			chatGroup.POST("/messages", handlers.Chat.SendMessage)
			chatGroup.GET("/conversations", handlers.Chat.ListConversations)
			chatGroup.GET("/conversations/:id/messages", handlers.Chat.ListMessages)
		}

		api.POST("/media", authMiddleware(authSvc), handlers.Media.Upload)
		api.GET("/media/*key", handlers.Media.Fetch)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
