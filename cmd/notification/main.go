package main

import (
	"log"
	"net/http"
	"spotfinder/broker"
	"spotfinder/config"
	"spotfinder/handlers"
	"spotfinder/logging"
	"spotfinder/server"
	"spotfinder/services"
	"spotfinder/store"
	"sync"
	"time"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load("notification")
	logger, err := logging.New(cfg.Service, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer logger.Sync()

	ctx, stop := server.SignalContext()
	defer stop()

	conn, err := server.OpenDatabase(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	notifications, err := store.OpenNotificationStore(conn)
	if err != nil {
		logger.Fatal("Failed to open notification store", zap.Error(err))
	}

	inbox := services.NewInbox(notifications, deliverers(cfg, logger), logger)
	consumer := broker.NewConsumer(cfg.AMQPURL, cfg.QueueName, cfg.ReconnectDelay, inbox.HandleMessage, logger)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		consumer.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		services.RunRetention(ctx, notifications, cfg.RetentionPeriod, cfg.RetentionTick, logger)
	}()

	r := server.NewEngine(cfg, logger)
	r.GET("/health", handlers.Health(cfg.Service, notifications, logger))
	handlers.NewNotificationsHandler(notifications, logger).Routes(r)

	if err := server.Run(ctx, cfg.Addr(), r, logger); err != nil {
		logger.Error("server stopped", zap.Error(err))
		stop()
	}
	wg.Wait()
	inbox.Wait()
}

// deliverers returns the enabled outside channels, or nil when none are.
func deliverers(cfg *config.Config, logger *zap.Logger) services.Deliverer {
	var out services.Fanout
	if cfg.Features.EmailDelivery {
		if cfg.SendGridAPIKey == "" {
			logger.Warn("email delivery enabled but SENDGRID_API_KEY not set, skipping")
		} else {
			out = append(out, services.NewMailer(cfg.SendGridAPIKey, cfg.MailFrom))
		}
	}
	if cfg.Features.SlackDelivery {
		if cfg.SlackWebhookURL == "" {
			logger.Warn("slack delivery enabled but SLACK_WEBHOOK_URL not set, skipping")
		} else {
			out = append(out, services.NewSlack(cfg.SlackWebhookURL, &http.Client{Timeout: 10 * time.Second}))
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
