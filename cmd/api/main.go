package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/chef-site-api/internal/config"
	"github.com/noah-isme/chef-site-api/internal/contactform"
	"github.com/noah-isme/chef-site-api/internal/handler"
	"github.com/noah-isme/chef-site-api/internal/middleware"
	"github.com/noah-isme/chef-site-api/internal/router"
	"github.com/noah-isme/chef-site-api/internal/service"
)

const verifyTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	if cfg.AppEnv == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	form, err := contactform.New(validate)
	if err != nil {
		log.Fatalf("failed to build contact validator: %v", err)
	}

	sender, err := service.NewContactDelivery(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("failed to configure mail provider: %v", err)
	}

	verifyCtx, cancel := context.WithTimeout(context.Background(), verifyTimeout)
	if err := sender.Verify(verifyCtx); err != nil {
		logger.Warn().Err(err).Str("provider", sender.Provider()).Msg("mail provider verification failed")
	} else {
		logger.Info().Str("provider", sender.Provider()).Msg("mail provider ready")
	}
	cancel()

	contactService := service.NewContactService(form, sender, service.ContactConfig{
		From:    cfg.MailSender(),
		To:      cfg.MailTo,
		Site:    cfg.AppName,
		Timeout: cfg.MailTimeout,
	}, logger)
	contactHandler := handler.NewContactHandler(contactService, form.Schema(), logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger, AllowOrigins: cfg.CORSOrigins})
	router.Register(app, cfg, router.Dependencies{
		ContactHandler: contactHandler,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
