package testutils

import (
	"time"

	"github.com/KirkDiggler/creaturemon/internal/entities"
	"github.com/KirkDiggler/creaturemon/internal/generator"
)

// CreateTestCreature creates a complete creature with derived hit points
func CreateTestCreature(id, ownerID, name string) *entities.Creature {
	attrs := entities.CreatureAttributes{
		Intelligence: 10,
		Strength:     3,
		Endurance:    7,
	}
	return &entities.Creature{
		ID:         id,
		OwnerID:    ownerID,
		Name:       name,
		Attributes: attrs,
		HitPoints:  generator.HitPoints(attrs),
		Avatar:     3,
		CreatedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}
