package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contactdesk-bot/internal/auth"
	"contactdesk-bot/internal/config"
	"contactdesk-bot/internal/database"
	"contactdesk-bot/internal/events"
	"contactdesk-bot/internal/handlers"
	"contactdesk-bot/internal/health"
	"contactdesk-bot/internal/locales"
	"contactdesk-bot/internal/mediagroups"
	"contactdesk-bot/internal/relay"
	"contactdesk-bot/internal/session"

	telegoBot "contactdesk-bot/bot"

	sentry "github.com/getsentry/sentry-go"
	telego "github.com/mymmrac/telego"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	locales.Init(cfg.DefaultLanguage)

	// Initialize Sentry (if DSN is provided)
	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		Release:          cfg.Version,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	client, db, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
			sentry.CaptureException(err)
		} else {
			log.Println("Disconnected from MongoDB.")
		}
	}()
	if err := database.EnsureSchema(ctx, db); err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to prepare MongoDB schema: %v", err)
	}
	store := database.NewMongoStore(db)
	tracker := session.NewTracker()

	var bot *telego.Bot
	if cfg.Debug {
		bot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultDebugLogger())
	} else {
		bot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultLogger(false, false))
	}
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create telego bot: %v", err)
	}

	operator, err := relay.NewOperator(bot, store, cfg.AdminID)
	if err != nil {
		log.Fatalf("Failed to create operator relay: %v", err)
	}
	broadcaster := relay.NewBroadcaster(operator, cfg.BroadcastRate)

	gate, err := auth.NewGate(cfg.AdminID, store, cfg.AdminPassword, cfg.AdminPasswordHash)
	if err != nil {
		log.Fatalf("Failed to create admin gate: %v", err)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL)
		if err != nil {
			log.Fatalf("Failed to create event publisher: %v", err)
		}
		publisher = amqpPublisher
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Printf("Error closing event publisher: %v", err)
		}
	}()

	messageHandler, err := handlers.NewMessageHandler(handlers.Deps{
		Bot:         bot,
		Store:       store,
		Tracker:     tracker,
		Relay:       operator,
		Broadcaster: broadcaster,
		Gate:        gate,
		Events:      publisher,
		ChannelURL:  cfg.ChannelURL,
		Debug:       cfg.Debug,
		BaseContext: ctx,
	})
	if err != nil {
		log.Fatalf("Failed to create message handler: %v", err)
	}

	albums, err := mediagroups.NewManager(ctx, messageHandler.HandleAlbum, mediagroups.DefaultProcessDelay, mediagroups.DefaultMaxGroupSize)
	if err != nil {
		log.Fatalf("Failed to create media group manager: %v", err)
	}

	if cfg.HealthAddr != "" {
		healthServer, err := health.NewServer(cfg.HealthAddr, store, tracker)
		if err != nil {
			log.Fatalf("Failed to create health server: %v", err)
		}
		go func() {
			if err := healthServer.Start(); err != nil {
				log.Printf("Health server stopped: %v", err)
				sentry.CaptureException(err)
			}
		}()
		defer func() {
			if err := healthServer.Shutdown(context.Background()); err != nil {
				log.Printf("Error shutting down health server: %v", err)
			}
		}()
	}

	updates, err := bot.UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to start long polling: %v", err)
	}

	appBot, err := telegoBot.New(telegoBot.Deps{
		Bot:         bot,
		UpdatesChan: updates,
		Handler:     messageHandler,
		Albums:      albums,
		Debug:       cfg.Debug,
		UpdatesRate: cfg.UpdatesRate,
	})
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}
	if err := appBot.SetupCommands(ctx); err != nil {
		log.Printf("Warning: %v", err)
	}

	// Blocks until the signal context is cancelled and in-flight updates finish.
	appBot.Start(ctx)

	log.Println("Shutting down bot...")
	albums.Shutdown()
	log.Println("Bot shutdown complete.")
}
