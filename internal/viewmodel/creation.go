package viewmodel

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/KirkDiggler/creaturemon/internal/catalog"
	"github.com/KirkDiggler/creaturemon/internal/entities"
	apperr "github.com/KirkDiggler/creaturemon/internal/errors"
	"github.com/KirkDiggler/creaturemon/internal/events"
	"github.com/KirkDiggler/creaturemon/internal/generator"
	"github.com/KirkDiggler/creaturemon/internal/observable"
	"github.com/KirkDiggler/creaturemon/internal/repositories/creatures"
	"github.com/KirkDiggler/creaturemon/internal/uuid"
)

// Required field names reported by Missing
const (
	FieldName   = "name"
	FieldAvatar = "avatar"
)

// SaveResult is published after every save attempt. Err is a validation error when the
// creature was incomplete and an internal error when persistence failed.
type SaveResult struct {
	Saved    bool
	Creature *entities.Creature
	Err      error
}

// CreationConfig holds the dependencies for a creation view-model
type CreationConfig struct {
	Generator     generator.Generator
	Repository    creatures.Repository
	OwnerID       string
	Catalog       *catalog.Catalog       // optional, defaults to catalog.Default()
	Bus           *events.Bus            // optional
	Executor      observable.Executor    // optional, defaults to observable.Immediate
	UUIDGenerator uuid.Generator         // optional
	TimeProvider  creatures.TimeProvider // optional
}

// Creation holds one in-progress creature and the selections that produce it
type Creation struct {
	generator generator.Generator
	repo      creatures.Repository
	ownerID   string
	catalog   *catalog.Catalog
	bus       *events.Bus
	uuidGen   uuid.Generator
	clock     creatures.TimeProvider

	mu         sync.Mutex
	name       string
	attributes entities.CreatureAttributes
	avatar     int
	current    *entities.Creature
	dirty      bool // selections changed without regenerating

	creature    *observable.Value[*entities.Creature]
	saveResults *observable.Value[SaveResult]
}

// NewCreation creates a creation view-model with empty selections
func NewCreation(cfg *CreationConfig) *Creation {
	if cfg == nil {
		panic("CreationConfig cannot be nil")
	}
	if cfg.Generator == nil {
		panic("Generator is required")
	}
	if cfg.Repository == nil {
		panic("Repository is required")
	}
	if cfg.OwnerID == "" {
		panic("OwnerID is required")
	}

	vm := &Creation{
		generator:   cfg.Generator,
		repo:        cfg.Repository,
		ownerID:     cfg.OwnerID,
		catalog:     cfg.Catalog,
		bus:         cfg.Bus,
		uuidGen:     cfg.UUIDGenerator,
		clock:       cfg.TimeProvider,
		creature:    observable.NewValue[*entities.Creature](cfg.Executor),
		saveResults: observable.NewValue[SaveResult](cfg.Executor),
	}
	if vm.catalog == nil {
		vm.catalog = catalog.Default()
	}
	if vm.uuidGen == nil {
		vm.uuidGen = uuid.NewGoogleUUIDGenerator()
	}
	if vm.clock == nil {
		vm.clock = creatures.RealClock()
	}
	return vm
}

// OwnerID returns the roster this view-model saves into
func (vm *Creation) OwnerID() string { return vm.ownerID }

// Catalog returns the option table used for selections
func (vm *Creation) Catalog() *catalog.Catalog { return vm.catalog }

// Creature is the observable holding the most recently generated creature
func (vm *Creation) Creature() *observable.Value[*entities.Creature] { return vm.creature }

// SaveResults is the observable receiving every save outcome
func (vm *Creation) SaveResults() *observable.Value[SaveResult] { return vm.saveResults }

// Current returns a copy of the most recently generated creature, or nil
func (vm *Creation) Current() *entities.Creature {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.current.Clone()
}

// Name returns the entered name
func (vm *Creation) Name() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.name
}

// Attributes returns the selected attribute values
func (vm *Creation) Attributes() entities.CreatureAttributes {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.attributes
}

// Avatar returns the selected avatar ID, 0 when unset
func (vm *Creation) Avatar() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.avatar
}

// SelectAttribute stores the catalog value at index for t and regenerates.
// An unknown type or out of range index leaves the state untouched.
func (vm *Creation) SelectAttribute(t entities.AttributeType, index int) error {
	option, err := vm.catalog.Attributes.Option(t, index)
	if err != nil {
		return err
	}

	vm.mu.Lock()
	vm.attributes.Set(t, option.Value)
	vm.mu.Unlock()

	vm.Regenerate()
	return nil
}

// SelectAvatar stores the avatar and regenerates. 0 clears the selection.
func (vm *Creation) SelectAvatar(id int) error {
	if id != 0 {
		if _, ok := vm.catalog.Avatar(id); !ok {
			return apperr.InvalidArgumentf("unknown avatar %d", id).
				WithMeta("avatar", id)
		}
	}

	vm.mu.Lock()
	vm.avatar = id
	vm.mu.Unlock()

	vm.Regenerate()
	return nil
}

// SetName stores the trimmed name and regenerates
func (vm *Creation) SetName(name string) {
	vm.mu.Lock()
	vm.name = strings.TrimSpace(name)
	vm.mu.Unlock()

	vm.Regenerate()
}

// SetAttributes replaces all three attribute values without regenerating. The next Save
// regenerates first.
func (vm *Creation) SetAttributes(attributes entities.CreatureAttributes) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.attributes = attributes
	vm.dirty = true
}

// Regenerate asks the generator for a creature from the current selections and publishes it
func (vm *Creation) Regenerate() {
	vm.mu.Lock()
	created := vm.regenerateLocked()
	vm.mu.Unlock()

	vm.creature.Post(created.Clone())
}

func (vm *Creation) regenerateLocked() *entities.Creature {
	vm.current = vm.generator.Generate(vm.attributes, vm.name, vm.avatar)
	vm.dirty = false
	return vm.current
}

// CanSave reports whether every required field is set
func (vm *Creation) CanSave() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.canSaveLocked()
}

// Missing lists the required fields that are still unset
func (vm *Creation) Missing() []string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.missingLocked()
}

func (vm *Creation) canSaveLocked() bool {
	return vm.attributes.Complete() && vm.name != "" && vm.avatar != 0
}

func (vm *Creation) missingLocked() []string {
	missing := make([]string, 0)
	for _, t := range entities.AttributeTypes {
		if vm.attributes.Get(t) == 0 {
			missing = append(missing, string(t))
		}
	}
	if vm.name == "" {
		missing = append(missing, FieldName)
	}
	if vm.avatar == 0 {
		missing = append(missing, FieldAvatar)
	}
	return missing
}

// Save persists a fresh copy of the current creature. Every successful call creates a new
// record. The outcome is returned and published to SaveResults.
func (vm *Creation) Save(ctx context.Context) SaveResult {
	vm.mu.Lock()
	if !vm.canSaveLocked() {
		missing := vm.missingLocked()
		vm.mu.Unlock()

		result := SaveResult{
			Err: apperr.Validation("creature is incomplete: missing " + strings.Join(missing, ", ")).
				WithMeta("missing", missing),
		}
		vm.saveResults.Post(result)
		vm.emit(events.NewSaveRejected(vm.ownerID, missing))
		return result
	}

	current := vm.current
	regenerated := vm.dirty || current == nil
	if regenerated {
		current = vm.regenerateLocked()
	}
	record := current.Clone()
	vm.mu.Unlock()

	if regenerated {
		vm.creature.Post(current.Clone())
	}

	record.ID = vm.uuidGen.New()
	record.OwnerID = vm.ownerID
	record.CreatedAt = vm.clock.Now()

	if err := vm.repo.Save(ctx, record); err != nil {
		slog.Error("Failed to save creature", "owner_id", vm.ownerID, "error", err)
		result := SaveResult{
			Err: apperr.WrapWithCode(err, apperr.CodeInternal, "failed to save creature").
				WithMeta("owner_id", vm.ownerID),
		}
		vm.saveResults.Post(result)
		return result
	}

	result := SaveResult{Saved: true, Creature: record}
	vm.saveResults.Post(result)
	vm.emit(events.NewCreatureSaved(record.Clone()))
	return result
}

func (vm *Creation) emit(event events.Event) {
	if vm.bus == nil {
		return
	}
	if err := vm.bus.Emit(event); err != nil {
		slog.Warn("Event listener failed", "event", event.GetType(), "owner_id", vm.ownerID, "error", err)
	}
}
