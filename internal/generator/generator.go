package generator

//go:generate mockgen -destination=mock/mock_generator.go -package=mockgenerator -source=generator.go

import (
	"github.com/KirkDiggler/creaturemon/internal/entities"
)

// Hit point weights per attribute point
const (
	IntelligenceWeight = 5
	StrengthWeight     = 3
	EnduranceWeight    = 4
)

// Generator maps an attribute selection, name and avatar into a creature
type Generator interface {
	Generate(attributes entities.CreatureAttributes, name string, avatar int) *entities.Creature
}

type generator struct{}

// New returns the default deterministic generator
func New() Generator {
	return &generator{}
}

// Generate builds an unsaved creature; ID, owner and creation time are left for the caller to stamp
func (g *generator) Generate(attributes entities.CreatureAttributes, name string, avatar int) *entities.Creature {
	return &entities.Creature{
		Name:       name,
		Attributes: attributes,
		HitPoints:  HitPoints(attributes),
		Avatar:     avatar,
	}
}

// HitPoints derives hit points from an attribute triple
func HitPoints(attributes entities.CreatureAttributes) int {
	return IntelligenceWeight*attributes.Intelligence +
		StrengthWeight*attributes.Strength +
		EnduranceWeight*attributes.Endurance
}
