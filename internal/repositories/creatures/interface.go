package creatures

//go:generate mockgen -destination=mock/mock.go -package=mockcreatures -source=interface.go

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/KirkDiggler/creaturemon/internal/entities"
	apperr "github.com/KirkDiggler/creaturemon/internal/errors"
)

// Repository is the persistence boundary for creatures. Creatures are grouped into
// rosters by OwnerID; FetchAll and ClearAll act on one roster.
type Repository interface {
	// Save stores a creature, replacing any creature with the same ID
	Save(ctx context.Context, creature *entities.Creature) error

	// Get retrieves a creature by ID
	Get(ctx context.Context, id string) (*entities.Creature, error)

	// FetchAll returns every creature in a roster, oldest first
	FetchAll(ctx context.Context, ownerID string) ([]*entities.Creature, error)

	// ClearAll deletes every creature in a roster
	ClearAll(ctx context.Context, ownerID string) error
}

// TimeProvider stamps CreatedAt on creatures saved without one
type TimeProvider interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// RealClock returns the wall clock in UTC
func RealClock() TimeProvider { return realClock{} }

// prepare validates a creature and returns a copy ready to be stored
func prepare(creature *entities.Creature, clock TimeProvider) (*entities.Creature, error) {
	if creature == nil {
		return nil, apperr.InvalidArgument("creature cannot be nil")
	}
	if creature.ID == "" {
		return nil, apperr.InvalidArgument("creature ID is required")
	}
	if creature.OwnerID == "" {
		return nil, apperr.InvalidArgument("creature owner ID is required").
			WithMeta("creature_id", creature.ID)
	}

	stored := creature.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = clock.Now()
	}
	// stores keep millisecond precision
	stored.CreatedAt = stored.CreatedAt.UTC().Truncate(time.Millisecond)
	return stored, nil
}

func notFound(id string) error {
	return apperr.NotFoundf("creature with ID '%s' not found", id).
		WithMeta("creature_id", id)
}

// sortByCreation orders oldest first, breaking ties by ID
func sortByCreation(list []*entities.Creature) {
	slices.SortFunc(list, func(a, b *entities.Creature) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}
