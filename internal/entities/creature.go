package entities

import (
	"fmt"
	"strings"
	"time"
)

// AttributeType routes a selection to one of the three creature attributes
type AttributeType string

const (
	AttributeIntelligence AttributeType = "intelligence"
	AttributeStrength     AttributeType = "strength"
	AttributeEndurance    AttributeType = "endurance"
)

// AttributeTypes lists every attribute in display order
var AttributeTypes = []AttributeType{
	AttributeIntelligence,
	AttributeStrength,
	AttributeEndurance,
}

// ParseAttributeType converts a string (from YAML or a Discord custom ID) into an AttributeType
func ParseAttributeType(s string) (AttributeType, error) {
	switch t := AttributeType(strings.ToLower(strings.TrimSpace(s))); t {
	case AttributeIntelligence, AttributeStrength, AttributeEndurance:
		return t, nil
	default:
		return "", fmt.Errorf("unknown attribute type %q", s)
	}
}

// DisplayName returns the capitalized attribute name
func (t AttributeType) DisplayName() string {
	switch t {
	case AttributeIntelligence:
		return "Intelligence"
	case AttributeStrength:
		return "Strength"
	case AttributeEndurance:
		return "Endurance"
	default:
		return string(t)
	}
}

// CreatureAttributes is the attribute triple a creature is generated from
type CreatureAttributes struct {
	Intelligence int `json:"intelligence"`
	Strength     int `json:"strength"`
	Endurance    int `json:"endurance"`
}

// Get returns the value of a single attribute
func (a CreatureAttributes) Get(t AttributeType) int {
	switch t {
	case AttributeIntelligence:
		return a.Intelligence
	case AttributeStrength:
		return a.Strength
	case AttributeEndurance:
		return a.Endurance
	default:
		return 0
	}
}

// Set stores v in the attribute named by t; unknown types are ignored
func (a *CreatureAttributes) Set(t AttributeType, v int) {
	switch t {
	case AttributeIntelligence:
		a.Intelligence = v
	case AttributeStrength:
		a.Strength = v
	case AttributeEndurance:
		a.Endurance = v
	}
}

// Complete reports whether every attribute has been chosen
func (a CreatureAttributes) Complete() bool {
	return a.Intelligence != 0 && a.Strength != 0 && a.Endurance != 0
}

// Creature is a generated, optionally persisted creature.
// Treat values as immutable once generated; copy before changing.
type Creature struct {
	ID         string             `json:"id"`
	OwnerID    string             `json:"owner_id"`
	Name       string             `json:"name"`
	Attributes CreatureAttributes `json:"attributes"`
	HitPoints  int                `json:"hit_points"`
	Avatar     int                `json:"avatar"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Clone returns a copy that can be stamped without touching the original
func (c *Creature) Clone() *Creature {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// DisplayName returns the creature name or a placeholder for unnamed drafts
func (c *Creature) DisplayName() string {
	if c == nil || c.Name == "" {
		return "Unnamed creature"
	}
	return c.Name
}
