package main

import (
	"log"
	"spotfinder/auth"
	"spotfinder/broker"
	"spotfinder/config"
	"spotfinder/handlers"
	"spotfinder/logging"
	"spotfinder/middleware"
	"spotfinder/server"
	"spotfinder/services"
	"spotfinder/store"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load("identity")
	logger, err := logging.New(cfg.Service, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer logger.Sync()

	if err := cfg.Require("JWT_SECRET", "INTERNAL_API_KEY"); err != nil {
		logger.Fatal("Missing configuration", zap.Error(err))
	}

	ctx, stop := server.SignalContext()
	defer stop()

	conn, err := server.OpenDatabase(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	logger.Info("features",
		zap.Bool("welcome", cfg.Features.WelcomeNotifications),
		zap.Bool("rewards", cfg.Features.RewardNotifications),
	)

	users := store.NewUserStore(conn)
	notifier := services.NewNotifier(broker.NewPublisher(cfg.AMQPURL, cfg.QueueName), 10*time.Second, logger)
	rewards := services.NewRewards(users, notifier, cfg.Features, logger)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	r := server.NewEngine(cfg, logger)
	r.GET("/health", handlers.Health(cfg.Service, conn, logger))
	handlers.NewAuthHandler(users, rewards, tokens, logger).Routes(r,
		middleware.AuthRequired(tokens),
		middleware.ServiceKey(cfg.InternalAPIKey),
		middleware.RateLimit(cfg.AuthRateLimit, cfg.RateLimitWindow),
	)

	if err := server.Run(ctx, cfg.Addr(), r, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
	notifier.Wait()
}
