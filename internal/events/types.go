package events

import (
	"github.com/KirkDiggler/creaturemon/internal/entities"
)

// EventType names a roster event
type EventType string

const (
	// EventTypeCreatureSaved fires after a creature is persisted
	EventTypeCreatureSaved EventType = "creature.saved"

	// EventTypeSaveRejected fires when a save is attempted on an incomplete creature
	EventTypeSaveRejected EventType = "creature.save_rejected"

	// EventTypeCreaturesCleared fires after a roster is cleared
	EventTypeCreaturesCleared EventType = "creatures.cleared"
)

// Event is the base interface for all roster events
type Event interface {
	GetType() EventType
	GetOwnerID() string
	IsCancelled() bool
	Cancel()
}

// BaseEvent provides common implementation for all events
type BaseEvent struct {
	Type      EventType
	OwnerID   string
	Cancelled bool
}

func (e *BaseEvent) GetType() EventType { return e.Type }
func (e *BaseEvent) GetOwnerID() string { return e.OwnerID }
func (e *BaseEvent) IsCancelled() bool  { return e.Cancelled }
func (e *BaseEvent) Cancel()            { e.Cancelled = true }

// CreatureSavedEvent carries the creature as persisted
type CreatureSavedEvent struct {
	BaseEvent
	Creature *entities.Creature
}

// NewCreatureSaved builds a saved event for the creature's owner
func NewCreatureSaved(creature *entities.Creature) *CreatureSavedEvent {
	return &CreatureSavedEvent{
		BaseEvent: BaseEvent{Type: EventTypeCreatureSaved, OwnerID: creature.OwnerID},
		Creature:  creature,
	}
}

// SaveRejectedEvent lists the fields that blocked a save
type SaveRejectedEvent struct {
	BaseEvent
	Missing []string
}

// NewSaveRejected builds a rejected event
func NewSaveRejected(ownerID string, missing []string) *SaveRejectedEvent {
	return &SaveRejectedEvent{
		BaseEvent: BaseEvent{Type: EventTypeSaveRejected, OwnerID: ownerID},
		Missing:   missing,
	}
}

// CreaturesClearedEvent signals a roster was emptied
type CreaturesClearedEvent struct {
	BaseEvent
}

// NewCreaturesCleared builds a cleared event
func NewCreaturesCleared(ownerID string) *CreaturesClearedEvent {
	return &CreaturesClearedEvent{
		BaseEvent: BaseEvent{Type: EventTypeCreaturesCleared, OwnerID: ownerID},
	}
}
