package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"

	"github.com/KirkDiggler/creaturemon/internal/catalog"
	"github.com/KirkDiggler/creaturemon/internal/clients/dnd5e"
	"github.com/KirkDiggler/creaturemon/internal/config"
	"github.com/KirkDiggler/creaturemon/internal/handlers/discord"
	"github.com/KirkDiggler/creaturemon/internal/observable"
	"github.com/KirkDiggler/creaturemon/internal/services"
	"github.com/KirkDiggler/creaturemon/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Bot stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.Log)

	if err := cfg.Discord.Validate(); err != nil {
		return err
	}
	slog.Info("Starting bot", "app_id", cfg.Discord.AppID, "guild_id", cfg.Discord.GuildID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeStorage, err := storage.Open(ctx, cfg.Storage, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeStorage(); closeErr != nil {
			slog.Error("Failed to close storage", "error", closeErr)
		}
	}()

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		if cat, err = catalog.LoadFile(cfg.CatalogPath); err != nil {
			return err
		}
		slog.Info("Loaded catalog", "path", cfg.CatalogPath)
	}

	providerConfig := &services.ProviderConfig{
		CreatureRepository: repo,
		Catalog:            cat,
	}

	if cfg.DND5E.Enabled {
		dndClient, dndErr := dnd5e.New(&dnd5e.Config{
			HttpClient: &http.Client{
				Timeout: 30 * time.Second,
			},
		})
		if dndErr != nil {
			slog.Warn("Name suggestions disabled", "error", dndErr)
		} else {
			providerConfig.DNDClient = dndClient
		}
	}

	// observers run off the interaction goroutines
	dispatcher := observable.NewDispatcher(64)
	defer dispatcher.Close()
	providerConfig.Executor = dispatcher

	serviceProvider := services.NewProvider(providerConfig)

	handler := discord.NewHandler(&discord.HandlerConfig{
		ServiceProvider: serviceProvider,
	})

	dg, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return err
	}
	dg.AddHandler(handler.HandleInteraction)

	if err := dg.Open(); err != nil {
		return err
	}
	defer func() {
		if closeErr := dg.Close(); closeErr != nil {
			slog.Error("Failed to close Discord connection", "error", closeErr)
		}
	}()

	// Use empty string for global commands, or set a specific guild ID for testing
	if err := handler.RegisterCommands(dg, cfg.Discord.AppID, cfg.Discord.GuildID); err != nil {
		return err
	}
	if cfg.Discord.GuildID == "" {
		slog.Info("Registered global commands (may take up to 1 hour to propagate)")
	}

	go pruneDrafts(ctx, serviceProvider, cfg.DraftTTL)

	slog.Info("Bot is now running. Press CTRL-C to exit.")
	<-ctx.Done()
	slog.Info("Shutting down...")
	return nil
}

// pruneDrafts drops idle creation drafts until ctx is cancelled
func pruneDrafts(ctx context.Context, provider *services.Provider, ttl time.Duration) {
	ticker := time.NewTicker(max(ttl/2, config.MinDraftTTL/2))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := provider.CreatureService.PruneDrafts(ttl); n > 0 {
				slog.Info("Pruned idle drafts", "count", n)
			}
		}
	}
}

func setupLogging(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
