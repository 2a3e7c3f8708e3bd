package main

import (
	"log"
	"spotfinder/auth"
	"spotfinder/config"
	"spotfinder/handlers"
	"spotfinder/logging"
	"spotfinder/middleware"
	"spotfinder/server"
	"spotfinder/spotclient"
	"spotfinder/store"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load("catalogue")
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

	identity := spotclient.NewIdentityClient(cfg.IdentityURL, cfg.InternalAPIKey, cfg.IdentityTimeout)
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	r := server.NewEngine(cfg, logger)
	r.GET("/health", handlers.Health(cfg.Service, conn, logger))
	handlers.NewSpotsHandler(store.NewSpotStore(conn), identity, cfg.SpotRewardPoints, logger).
		Routes(r, middleware.AuthRequired(tokens))

	if err := server.Run(ctx, cfg.Addr(), r, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
