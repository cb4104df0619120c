package services

import (
	"github.com/KirkDiggler/creaturemon/internal/catalog"
	"github.com/KirkDiggler/creaturemon/internal/clients/dnd5e"
	"github.com/KirkDiggler/creaturemon/internal/events"
	"github.com/KirkDiggler/creaturemon/internal/observable"
	"github.com/KirkDiggler/creaturemon/internal/repositories/creatures"
	creatureService "github.com/KirkDiggler/creaturemon/internal/services/creature"
)

// Provider holds all service instances
type Provider struct {
	CreatureService creatureService.Service
	Bus             *events.Bus
}

// ProviderConfig holds configuration for creating services
type ProviderConfig struct {
	DNDClient          dnd5e.Client
	CreatureRepository creatures.Repository
	Catalog            *catalog.Catalog
	Executor           observable.Executor
}

// NewProvider creates a new service provider with all services initialized
func NewProvider(cfg *ProviderConfig) *Provider {
	// Use in-memory repository if none provided
	repo := cfg.CreatureRepository
	if repo == nil {
		repo = creatures.NewInMemoryRepository()
	}

	bus := events.NewBus()

	svc := creatureService.NewService(&creatureService.ServiceConfig{
		Repository: repo,
		Catalog:    cfg.Catalog,
		Bestiary:   cfg.DNDClient,
		Bus:        bus,
		Executor:   cfg.Executor,
	})

	return &Provider{
		CreatureService: svc,
		Bus:             bus,
	}
}
