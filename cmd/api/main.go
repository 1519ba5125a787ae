package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/firmsite-api/internal/config"
	"github.com/noah-isme/firmsite-api/internal/database"
	"github.com/noah-isme/firmsite-api/internal/handler"
	"github.com/noah-isme/firmsite-api/internal/locale"
	"github.com/noah-isme/firmsite-api/internal/middleware"
	"github.com/noah-isme/firmsite-api/internal/repository"
	"github.com/noah-isme/firmsite-api/internal/router"
	"github.com/noah-isme/firmsite-api/internal/service"
	"github.com/noah-isme/firmsite-api/pkg/events"
	"github.com/noah-isme/firmsite-api/pkg/mailer"
)

const contactBurstWindow = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	locales, err := locale.NewSet(cfg.Locales, cfg.DefaultLocale)
	if err != nil {
		log.Fatalf("invalid locale configuration: %v", err)
	}

	var redisClient *redis.Client
	var cooldownStore repository.CooldownStore = repository.NewMemoryCooldownStore()
	if cfg.ContactStore == config.ContactStoreRedis {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		cooldownStore = repository.NewRedisCooldownStore(redisClient, cfg.ContactCooldown)
	}

	var probes []handler.HealthProbe
	if redisClient != nil {
		probes = append(probes, handler.HealthProbe{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}

	contactOpts := []service.ContactOption{
		service.WithContactCooldown(cfg.ContactCooldown),
		service.WithDeliveryTimeout(cfg.DeliveryTimeout),
	}

	if cfg.DatabaseURL != "" {
		db, err := database.OpenArchive(cfg.DatabaseURL, cfg.AppEnv == "development")
		if err != nil {
			log.Fatalf("failed to open submission archive: %v", err)
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
			probes = append(probes, handler.HealthProbe{Name: "archive", Check: sqlDB.PingContext})
		}
		contactOpts = append(contactOpts, service.WithContactArchive(repository.NewContactRepository(db)))
	}

	if cfg.NATSURL != "" {
		conn, err := events.Connect(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer conn.Drain()
		probes = append(probes, handler.HealthProbe{Name: "nats", Check: func(context.Context) error {
			if !conn.IsConnected() {
				return fmt.Errorf("nats connection %s", conn.Status())
			}
			return nil
		}})
		contactOpts = append(contactOpts, service.WithContactEvents(events.NewNATSPublisher(conn, cfg.NATSSubject)))
	}

	var delivery service.ContactDelivery = service.NewLogContactDelivery(logger)
	if cfg.SMTPHost != "" {
		smtpMailer, err := mailer.NewSMTPMailer(mailer.Config{
			Host:      cfg.SMTPHost,
			Port:      cfg.SMTPPort,
			User:      cfg.SMTPUser,
			Pass:      cfg.SMTPPass,
			From:      cfg.SMTPFrom,
			HelloName: cfg.SMTPHelloName,
		}, logger)
		if err != nil {
			log.Fatalf("failed to configure smtp mailer: %v", err)
		}
		delivery = service.NewEmailContactDelivery(smtpMailer, cfg.ContactInbox, cfg.SiteName, logger)
	} else {
		logger.Warn().Msg("smtp host not configured, contact submissions are only logged")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	contactService := service.NewContactService(cooldownStore, locales, validate, delivery, logger, contactOpts...)
	siteService := service.NewSiteService(locales, cfg.SiteBaseURL, cfg.SiteName, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:    cfg.AppEnv == "development",
	})
	router.Register(app, cfg, router.Dependencies{
		ContactHandler: handler.NewContactHandler(contactService, logger),
		SiteHandler:    handler.NewSiteHandler(siteService, locales, logger),
		ContactLimiter: middleware.RateLimit(middleware.RateLimitConfig{
			Identifier:   "contact",
			Max:          cfg.ContactBurstMax,
			Window:       contactBurstWindow,
			LimitReached: handler.ContactBurstReached(contactBurstWindow),
		}),
		HealthProbes: probes,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	logger.Info().Str("address", cfg.HTTPAddress()).Strs("locales", locales.Codes()).Str("contact_store", cfg.ContactStore).Msg("server started")
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
