package creatures

import (
	"context"
	"sync"

	"github.com/KirkDiggler/creaturemon/internal/entities"
	apperr "github.com/KirkDiggler/creaturemon/internal/errors"
)

// InMemoryRepository is an in-memory implementation of the creature repository.
// Useful for testing and development
type InMemoryRepository struct {
	mu        sync.RWMutex
	creatures map[string]*entities.Creature
	clock     TimeProvider
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() Repository {
	return NewInMemoryRepositoryWithClock(RealClock())
}

// NewInMemoryRepositoryWithClock creates an in-memory repository with a custom clock
func NewInMemoryRepositoryWithClock(clock TimeProvider) Repository {
	return &InMemoryRepository{
		creatures: make(map[string]*entities.Creature),
		clock:     clock,
	}
}

// Save stores a copy of the creature
func (r *InMemoryRepository) Save(ctx context.Context, creature *entities.Creature) error {
	stored, err := prepare(creature, r.clock)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.creatures[stored.ID] = stored
	return nil
}

// Get retrieves a creature by ID
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*entities.Creature, error) {
	if id == "" {
		return nil, apperr.InvalidArgument("creature ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	creature, exists := r.creatures[id]
	if !exists {
		return nil, notFound(id)
	}

	return creature.Clone(), nil
}

// FetchAll returns the roster for an owner, oldest first
func (r *InMemoryRepository) FetchAll(ctx context.Context, ownerID string) ([]*entities.Creature, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*entities.Creature, 0)
	for _, creature := range r.creatures {
		if creature.OwnerID == ownerID {
			result = append(result, creature.Clone())
		}
	}

	sortByCreation(result)
	return result, nil
}

// ClearAll removes every creature in an owner's roster
func (r *InMemoryRepository) ClearAll(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return apperr.InvalidArgument("owner ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, creature := range r.creatures {
		if creature.OwnerID == ownerID {
			delete(r.creatures, id)
		}
	}
	return nil
}
