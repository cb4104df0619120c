package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/KirkDiggler/creaturemon/internal/config"
	"github.com/KirkDiggler/creaturemon/internal/storage"
	"github.com/KirkDiggler/creaturemon/internal/viewmodel"
)

func main() {
	owner := flag.String("owner", "", "Discord user ID whose roster to show")
	clearRoster := flag.Bool("clear", false, "delete the roster instead of listing it")
	flag.Parse()

	if *owner == "" {
		fmt.Fprintln(os.Stderr, "usage: list-creatures -owner <user id> [-clear]")
		os.Exit(2)
	}

	_ = godotenv.Load()

	if err := run(*owner, *clearRoster); err != nil {
		slog.Error("list-creatures failed", "owner_id", *owner, "error", err)
		os.Exit(1)
	}
}

func run(owner string, clearRoster bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeStorage, err := storage.Open(ctx, cfg.Storage, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeStorage()

	list := viewmodel.NewList(&viewmodel.ListConfig{Repository: repo, OwnerID: owner})

	if clearRoster {
		if err := list.ClearAll(ctx); err != nil {
			return err
		}
		fmt.Printf("Cleared roster for %s\n", owner)
		return nil
	}

	roster, err := list.FetchAll(ctx)
	if err != nil {
		return err
	}
	creatures, _ := roster.Get()

	fmt.Printf("Found %d creatures for %s (%s storage):\n", len(creatures), owner, cfg.Storage.Driver)
	for _, c := range creatures {
		fmt.Printf("  %s  %-20s HP %-4d INT %-3d STR %-3d END %-3d avatar %d  %s\n",
			c.ID, c.DisplayName(), c.HitPoints,
			c.Attributes.Intelligence, c.Attributes.Strength, c.Attributes.Endurance,
			c.Avatar, c.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
