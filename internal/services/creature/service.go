package creature

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/KirkDiggler/creaturemon/internal/catalog"
	"github.com/KirkDiggler/creaturemon/internal/clients/dnd5e"
	"github.com/KirkDiggler/creaturemon/internal/entities"
	apperr "github.com/KirkDiggler/creaturemon/internal/errors"
	"github.com/KirkDiggler/creaturemon/internal/events"
	"github.com/KirkDiggler/creaturemon/internal/generator"
	"github.com/KirkDiggler/creaturemon/internal/observable"
	"github.com/KirkDiggler/creaturemon/internal/repositories/creatures"
	"github.com/KirkDiggler/creaturemon/internal/uuid"
	"github.com/KirkDiggler/creaturemon/internal/viewmodel"
)

// Service manages creation drafts and rosters for Discord users
type Service interface {
	// StartDraft begins a fresh creation draft for a user, replacing any existing one
	StartDraft(userID string) (*viewmodel.Creation, error)

	// Draft returns the user's current draft
	Draft(userID string) (*viewmodel.Creation, error)

	// DiscardDraft drops the user's draft, if any
	DiscardDraft(userID string)

	// Save persists the user's draft
	Save(ctx context.Context, userID string) (viewmodel.SaveResult, error)

	// List returns the user's roster, oldest first. A recently refreshed roster is served
	// without reading storage.
	List(ctx context.Context, userID string) ([]*entities.Creature, error)

	// Clear deletes the user's roster
	Clear(ctx context.Context, userID string) error

	// SuggestName picks a monster name matching the draft's hit points and applies it
	SuggestName(userID string) (string, error)

	// PruneDrafts drops drafts and rosters idle for longer than ttl and reports how many drafts were removed
	PruneDrafts(ttl time.Duration) int

	// Catalog returns the option table drafts select from
	Catalog() *catalog.Catalog
}

// DefaultRosterMaxAge bounds how long a roster is served without re-reading storage
const DefaultRosterMaxAge = time.Minute

type draft struct {
	creation      *viewmodel.Creation
	lastTouched   time.Time
	stopObserving func()
}

// roster keeps a user's list view-model subscribed to the bus between commands
type roster struct {
	list          *viewmodel.List
	refreshedAt   time.Time
	lastTouched   time.Time
	stopObserving func()
}

func (r *roster) close() {
	r.stopObserving()
	r.list.Close()
}

type service struct {
	repository    creatures.Repository
	generator     generator.Generator
	catalog       *catalog.Catalog
	bestiary      dnd5e.Client
	bus           *events.Bus
	executor      observable.Executor
	uuidGenerator uuid.Generator
	clock         creatures.TimeProvider
	pick          func(n int) int
	rosterMaxAge  time.Duration

	mu      sync.Mutex
	drafts  map[string]*draft
	rosters map[string]*roster
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Repository    creatures.Repository   // Required
	Generator     generator.Generator    // Optional, defaults to generator.New()
	Catalog       *catalog.Catalog       // Optional, defaults to catalog.Default()
	Bestiary      dnd5e.Client           // Optional, name suggestions are unavailable without it
	Bus           *events.Bus            // Optional, a private bus is created when nil
	Executor      observable.Executor    // Optional
	UUIDGenerator uuid.Generator         // Optional
	TimeProvider  creatures.TimeProvider // Optional
	Pick          func(n int) int        // Optional, chooses a suggestion index in [0,n)
	RosterMaxAge  time.Duration          // Optional, defaults to DefaultRosterMaxAge
}

// NewService creates a new creature service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		panic("ServiceConfig cannot be nil")
	}
	if cfg.Repository == nil {
		panic("repository is required")
	}

	svc := &service{
		repository:    cfg.Repository,
		generator:     cfg.Generator,
		catalog:       cfg.Catalog,
		bestiary:      cfg.Bestiary,
		bus:           cfg.Bus,
		executor:      cfg.Executor,
		uuidGenerator: cfg.UUIDGenerator,
		clock:         cfg.TimeProvider,
		pick:          cfg.Pick,
		rosterMaxAge:  cfg.RosterMaxAge,
		drafts:        make(map[string]*draft),
		rosters:       make(map[string]*roster),
	}

	if svc.generator == nil {
		svc.generator = generator.New()
	}
	if svc.catalog == nil {
		svc.catalog = catalog.Default()
	}
	if svc.uuidGenerator == nil {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if svc.clock == nil {
		svc.clock = creatures.RealClock()
	}
	if svc.pick == nil {
		svc.pick = rand.IntN
	}
	if svc.bus == nil {
		svc.bus = events.NewBus()
	}
	if svc.rosterMaxAge <= 0 {
		svc.rosterMaxAge = DefaultRosterMaxAge
	}

	return svc
}

func (s *service) Catalog() *catalog.Catalog { return s.catalog }

func (s *service) StartDraft(userID string) (*viewmodel.Creation, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.InvalidArgument("user ID is required")
	}

	creation := viewmodel.NewCreation(&viewmodel.CreationConfig{
		Generator:     s.generator,
		Repository:    s.repository,
		OwnerID:       userID,
		Catalog:       s.catalog,
		Bus:           s.bus,
		Executor:      s.executor,
		UUIDGenerator: s.uuidGenerator,
		TimeProvider:  s.clock,
	})

	stop := creation.SaveResults().Observe(logSaveResult(userID))

	s.mu.Lock()
	previous := s.drafts[userID]
	s.drafts[userID] = &draft{creation: creation, lastTouched: s.clock.Now(), stopObserving: stop}
	s.mu.Unlock()

	if previous != nil {
		previous.stopObserving()
	}

	slog.Debug("Started creature draft", "user_id", userID)
	return creation, nil
}

func (s *service) Draft(userID string) (*viewmodel.Creation, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.InvalidArgument("user ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[userID]
	if !ok {
		return nil, apperr.NotFound("no creature draft in progress").
			WithMeta("user_id", userID)
	}
	d.lastTouched = s.clock.Now()
	return d.creation, nil
}

func (s *service) DiscardDraft(userID string) {
	s.mu.Lock()
	d, ok := s.drafts[userID]
	delete(s.drafts, userID)
	s.mu.Unlock()

	if ok {
		d.stopObserving()
	}
}

func (s *service) Save(ctx context.Context, userID string) (viewmodel.SaveResult, error) {
	creation, err := s.Draft(userID)
	if err != nil {
		return viewmodel.SaveResult{}, err
	}

	// keep a roster subscribed so the save refreshes it
	s.roster(userID)

	return creation.Save(ctx), nil
}

// logSaveResult observes a draft's save outcomes
func logSaveResult(userID string) func(viewmodel.SaveResult) {
	return func(result viewmodel.SaveResult) {
		switch {
		case result.Saved:
			slog.Info("Creature saved",
				"user_id", userID,
				"creature_id", result.Creature.ID,
				"name", result.Creature.Name,
				"hit_points", result.Creature.HitPoints)
		case apperr.IsValidation(result.Err):
			slog.Debug("Creature save rejected",
				"user_id", userID,
				"missing", apperr.GetMeta(result.Err)["missing"])
		default:
			slog.Warn("Creature save failed", "user_id", userID, "error", result.Err)
		}
	}
}

// roster returns the user's subscribed list view-model, creating it on first use
func (s *service) roster(userID string) *roster {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.rosters[userID]; ok {
		r.lastTouched = s.clock.Now()
		return r
	}

	list := viewmodel.NewList(&viewmodel.ListConfig{
		Repository: s.repository,
		OwnerID:    userID,
		Bus:        s.bus,
		Executor:   s.executor,
	})
	r := &roster{list: list, lastTouched: s.clock.Now()}
	r.stopObserving = list.Creatures().Observe(func([]*entities.Creature) {
		s.markRefreshed(userID, list)
	})
	s.rosters[userID] = r
	return r
}

func (s *service) markRefreshed(userID string, list *viewmodel.List) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rosters[userID]; ok && r.list == list {
		r.refreshedAt = s.clock.Now()
	}
}

// cached returns the roster's published creatures when they are recent enough
func (s *service) cached(r *roster) ([]*entities.Creature, bool) {
	s.mu.Lock()
	fresh := !r.refreshedAt.IsZero() && s.clock.Now().Sub(r.refreshedAt) < s.rosterMaxAge
	s.mu.Unlock()
	if !fresh {
		return nil, false
	}
	return r.list.Creatures().Get()
}

func (s *service) List(ctx context.Context, userID string) ([]*entities.Creature, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, apperr.InvalidArgument("user ID is required")
	}

	r := s.roster(userID)
	if creatures, ok := s.cached(r); ok {
		return creatures, nil
	}

	handle, err := r.list.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	creatures, _ := handle.Get()
	return creatures, nil
}

func (s *service) Clear(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperr.InvalidArgument("user ID is required")
	}

	if err := s.roster(userID).list.ClearAll(ctx); err != nil {
		return err
	}

	slog.Info("Roster cleared", "user_id", userID)
	return nil
}

func (s *service) SuggestName(userID string) (string, error) {
	if s.bestiary == nil {
		return "", apperr.New(apperr.CodeUnavailable, "name suggestions are not configured")
	}

	creation, err := s.Draft(userID)
	if err != nil {
		return "", err
	}

	hitPoints := generator.HitPoints(creation.Attributes())
	if current := creation.Current(); current != nil {
		hitPoints = current.HitPoints
	}
	names, err := s.bestiary.SuggestNames(hitPoints)
	if err != nil {
		return "", apperr.Wrap(err, "failed to suggest a name").
			WithMeta("hit_points", hitPoints)
	}

	// avoid suggesting the name already chosen
	current := creation.Name()
	candidates := make([]string, 0, len(names))
	for _, n := range names {
		if n != current {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return "", apperr.NotFoundf("no monster names for %d hit points", hitPoints).
			WithMeta("hit_points", hitPoints)
	}

	name := candidates[s.pick(len(candidates))]
	creation.SetName(name)
	return name, nil
}

func (s *service) PruneDrafts(ttl time.Duration) int {
	cutoff := s.clock.Now().Add(-ttl)

	var stale []func()

	s.mu.Lock()
	removed := 0
	for userID, d := range s.drafts {
		if d.lastTouched.Before(cutoff) {
			delete(s.drafts, userID)
			stale = append(stale, d.stopObserving)
			removed++
		}
	}
	for userID, r := range s.rosters {
		if r.lastTouched.Before(cutoff) {
			delete(s.rosters, userID)
			stale = append(stale, r.close)
		}
	}
	remaining := len(s.drafts)
	s.mu.Unlock()

	// unsubscribe outside s.mu
	for _, stop := range stale {
		stop()
	}

	if removed > 0 {
		slog.Info("Pruned idle creature drafts", "removed", removed, "remaining", remaining)
	}
	return removed
}
