package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/GuideNet/GuideNet/internal/adapters/http"
	"github.com/GuideNet/GuideNet/internal/adapters/rest"
	signaladapter "github.com/GuideNet/GuideNet/internal/adapters/signal"
	"github.com/GuideNet/GuideNet/internal/app"
	"github.com/GuideNet/GuideNet/internal/config"
	"github.com/GuideNet/GuideNet/internal/services"
	"github.com/GuideNet/GuideNet/internal/store/postgres"
	redisstore "github.com/GuideNet/GuideNet/internal/store/redis"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer db.Close()

	tokenStore, err := redisstore.NewTokenStore(ctx, cfg.Redis, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer tokenStore.Close()

	users := postgres.NewUserRepo(db)
	mentors := postgres.NewMentorRepo(db)
	posts := postgres.NewPostRepo(db)
	chats := postgres.NewChatRepo(db)

	jwtSvc := services.NewTokenService(cfg.JWTSecret, cfg.AccessTokTTL)
	authSvc := services.NewAuthService(users, tokenStore, jwtSvc, services.LogMailer{})

	board := app.NewSwitchboard()

	// Calls with no signaling activity get force-ended.
	go func() {
		ticker := time.NewTicker(cfg.CallIdleMax / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := board.ReapIdleCalls(cfg.CallIdleMax); n > 0 {
					log.Warn().Int("calls", n).Msg("reaped idle calls")
				}
			}
		}
	}()

	h := router.Handlers{
		Signal:  signaladapter.NewController(board, cfg),
		Auth:    &rest.AuthHandler{Auth: authSvc},
		Users:   &rest.UserHandler{Users: users, Board: board},
		Posts:   &rest.PostHandler{Posts: posts},
		Mentors: &rest.MentorHandler{Mentors: mentors},
		Chats:   &rest.ChatHandler{Chats: chats},
		Tokens:  jwtSvc,
	}

	r := router.SetupRouter(ctx, cfg, h)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("GuideNet server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
