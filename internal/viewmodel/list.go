package viewmodel

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/KirkDiggler/creaturemon/internal/entities"
	apperr "github.com/KirkDiggler/creaturemon/internal/errors"
	"github.com/KirkDiggler/creaturemon/internal/events"
	"github.com/KirkDiggler/creaturemon/internal/observable"
	"github.com/KirkDiggler/creaturemon/internal/repositories/creatures"
	"github.com/KirkDiggler/creaturemon/internal/uuid"
)

const refreshTimeout = 5 * time.Second

// ListConfig holds the dependencies for a list view-model
type ListConfig struct {
	Repository creatures.Repository
	OwnerID    string
	Bus        *events.Bus         // optional; enables refresh on save and clear
	Executor   observable.Executor // optional, defaults to observable.Immediate
}

// List exposes one owner's roster as an observable collection
type List struct {
	repo       creatures.Repository
	ownerID    string
	bus        *events.Bus
	creatures  *observable.Value[[]*entities.Creature]
	listenerID string
	closeOnce  sync.Once
}

// NewList creates a list view-model. When a bus is configured the list re-fetches after
// creatures are saved or cleared for its owner.
func NewList(cfg *ListConfig) *List {
	if cfg == nil {
		panic("ListConfig cannot be nil")
	}
	if cfg.Repository == nil {
		panic("Repository is required")
	}
	if cfg.OwnerID == "" {
		panic("OwnerID is required")
	}

	l := &List{
		repo:      cfg.Repository,
		ownerID:   cfg.OwnerID,
		bus:       cfg.Bus,
		creatures: observable.NewValue[[]*entities.Creature](cfg.Executor),
	}

	if l.bus != nil {
		l.listenerID = "creature-list:" + l.ownerID + ":" + uuid.NewGoogleUUIDGenerator().New()
		listener := &events.ListenerFunc{
			ListenerID:       l.listenerID,
			ListenerPriority: 100,
			Fn:               l.handleEvent,
		}
		l.bus.Subscribe(events.EventTypeCreatureSaved, listener)
		l.bus.Subscribe(events.EventTypeCreaturesCleared, listener)
	}

	return l
}

// OwnerID returns the roster this list shows
func (l *List) OwnerID() string { return l.ownerID }

// Creatures returns the observable collection without fetching
func (l *List) Creatures() *observable.Value[[]*entities.Creature] { return l.creatures }

// FetchAll loads the roster, publishes it and returns the observable handle
func (l *List) FetchAll(ctx context.Context) (*observable.Value[[]*entities.Creature], error) {
	list, err := l.repo.FetchAll(ctx, l.ownerID)
	if err != nil {
		return nil, apperr.Wrap(err, "failed to fetch creatures").
			WithMeta("owner_id", l.ownerID)
	}

	l.creatures.Post(list)
	return l.creatures, nil
}

// ClearAll deletes the roster and publishes an empty collection
func (l *List) ClearAll(ctx context.Context) error {
	if err := l.repo.ClearAll(ctx, l.ownerID); err != nil {
		return apperr.Wrap(err, "failed to clear creatures").
			WithMeta("owner_id", l.ownerID)
	}

	l.creatures.Post([]*entities.Creature{})

	if l.bus != nil {
		if err := l.bus.Emit(events.NewCreaturesCleared(l.ownerID)); err != nil {
			slog.Warn("Event listener failed", "event", events.EventTypeCreaturesCleared, "owner_id", l.ownerID, "error", err)
		}
	}
	return nil
}

// Close stops listening for roster changes
func (l *List) Close() {
	l.closeOnce.Do(func() {
		if l.bus == nil {
			return
		}
		l.bus.Unsubscribe(events.EventTypeCreatureSaved, l.listenerID)
		l.bus.Unsubscribe(events.EventTypeCreaturesCleared, l.listenerID)
	})
}

func (l *List) handleEvent(e events.Event) error {
	if e.GetOwnerID() != l.ownerID {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if _, err := l.FetchAll(ctx); err != nil {
		slog.Warn("Failed to refresh creature list", "owner_id", l.ownerID, "event", e.GetType(), "error", err)
	}
	return nil
}
