package main

import (
	"log"
	"spotfinder/auth"
	"spotfinder/config"
	"spotfinder/handlers"
	"spotfinder/imagehost"
	"spotfinder/logging"
	"spotfinder/middleware"
	"spotfinder/server"
	"spotfinder/store"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load("media")
	logger, err := logging.New(cfg.Service, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer logger.Sync()

	if err := cfg.Require("JWT_SECRET"); err != nil {
		logger.Fatal("Missing configuration", zap.Error(err))
	}

	ctx, stop := server.SignalContext()
	defer stop()

	conn, err := server.OpenDatabase(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	hostOpts := imagehost.Options{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PublicURL: cfg.MediaPublicURL,
	}
	s3Client, err := imagehost.NewClient(ctx, hostOpts)
	if err != nil {
		logger.Fatal("Failed to configure image host", zap.Error(err))
	}
	host := imagehost.New(s3Client, hostOpts)
	logger.Info("image host", zap.String("bucket", cfg.S3Bucket), zap.String("public_url", imagehost.PublicBase(hostOpts)))

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)

	r := server.NewEngine(cfg, logger)
	r.GET("/health", handlers.Health(cfg.Service, conn, logger))
	handlers.NewMediaHandler(store.NewMediaStore(conn), host, cfg.MediaFolder, cfg.MaxUploadBytes, logger).Routes(r,
		middleware.AuthRequired(tokens),
		middleware.RateLimit(cfg.UploadRateLimit, cfg.RateLimitWindow),
	)

	if err := server.Run(ctx, cfg.Addr(), r, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
