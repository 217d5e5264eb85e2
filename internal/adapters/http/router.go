package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GuideNet/GuideNet/internal/adapters/rest"
	"github.com/GuideNet/GuideNet/internal/adapters/signal"
	"github.com/GuideNet/GuideNet/internal/config"
	"github.com/GuideNet/GuideNet/internal/services"
)

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = uuid.NewString()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

type Handlers struct {
	Signal  *signal.Controller
	Auth    *rest.AuthHandler
	Users   *rest.UserHandler
	Posts   *rest.PostHandler
	Mentors *rest.MentorHandler
	Chats   *rest.ChatHandler
	Tokens  *services.TokenService
}

func SetupRouter(ctx context.Context, cfg *config.Config, h Handlers) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("GuideNetSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	api.GET("/ws", func(c *gin.Context) {
		h.Signal.Handle(ctx, c)
	})

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.GET("/verify/:token", h.Auth.Verify)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/forgot-password", h.Auth.ForgotPassword)
	auth.POST("/reset-password/:token", h.Auth.ResetPassword)

	authed := api.Group("", rest.AuthRequired(h.Tokens))

	profile := authed.Group("/profile")
	profile.GET("", h.Users.Me)
	profile.PUT("", h.Users.UpdateMe)
	profile.POST("/avatar", h.Users.UploadAvatar)

	users := authed.Group("/users")
	users.GET("/:id", h.Users.Get)
	users.GET("/:id/avatar", h.Users.Avatar)
	users.GET("/:id/online", h.Users.Online)

	posts := authed.Group("/posts")
	posts.GET("", h.Posts.List)
	posts.POST("", h.Posts.Create)
	posts.DELETE("/:id", h.Posts.Delete)
	posts.POST("/:id/comments", h.Posts.Comment)
	posts.PUT("/:id/like", h.Posts.Like)
	posts.PUT("/:id/unlike", h.Posts.Unlike)

	mentors := authed.Group("/mentors")
	mentors.POST("", h.Mentors.Upsert)
	mentors.GET("", h.Mentors.List)
	mentors.GET("/user/:userId", h.Mentors.GetByUser)

	chats := authed.Group("/chats")
	chats.GET("", h.Chats.List)
	chats.POST("", h.Chats.Create)
	chats.GET("/:id/messages", h.Chats.Messages)
	chats.POST("/:id/messages", h.Chats.SendMessage)

	return r
}
