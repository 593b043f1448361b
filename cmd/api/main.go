package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/discord-verifier/internal/application/join"
	"github.com/discord-verifier/internal/application/verify"
	"github.com/discord-verifier/internal/config"
	"github.com/discord-verifier/internal/infrastructure/discord"
	"github.com/discord-verifier/internal/infrastructure/ipapi"
	"github.com/discord-verifier/internal/infrastructure/webhook"
	"github.com/discord-verifier/internal/pkg/taskpool"
	"github.com/discord-verifier/internal/runtime"
	"github.com/discord-verifier/internal/store"
	transporthttp "github.com/discord-verifier/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	logger.Info("starting verification service",
		"guild_id", cfg.GuildID,
		"verified_role_id", cfg.VerifiedRoleID,
		"log_channel_id", cfg.LogChannelID)
	if cfg.VerificationURL == "" {
		logger.Warn("VERIFICATION_URL not configured, join messages will not include a button/link")
	}

	// The event runtime is the single consumer loop all Discord operations
	// run on; the pool absorbs blocking collaborator calls.
	rt := runtime.New(logger, 256)
	go rt.Run()
	pool := taskpool.New(logger, 4, 128)

	tokens := store.NewMemoryStore()

	gw, err := discord.NewGateway(logger, cfg, rt)
	if err != nil {
		log.Fatalf("discord gateway setup: %v", err)
	}
	joinHandler := join.NewHandler(logger, cfg, tokens, gw)
	gw.OnMemberJoin(joinHandler.HandleMemberJoin)

	svc := verify.NewService(verify.ServiceDeps{
		Config:   cfg,
		Logger:   logger,
		Tokens:   tokens,
		Runtime:  rt,
		Pool:     pool,
		Gateway:  gw,
		Enricher: ipapi.NewClient(logger),
		Webhook:  webhook.NewDispatcher(cfg.WebhookURL),
	})

	// A failed login is not fatal: the HTTP surface keeps serving, the bot
	// features stay disabled and scheduled work is dropped with warnings.
	if cfg.BotToken != "" {
		if err := gw.Open(); err != nil {
			logger.Error("DISCORD AUTHENTICATION FAILED, continuing without bot features",
				"err", err,
				"hint", "check the token in the Discord Developer Portal and strip surrounding whitespace")
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, svc),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down", "pending_verifications", tokens.Len())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	_ = gw.Close()
	rt.Stop()
	pool.Stop()
	logger.Info("server stopped")
}
