// Package catalog holds the selectable attribute options and avatars a creature is built from.
package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/creaturemon/internal/entities"
	apperr "github.com/KirkDiggler/creaturemon/internal/errors"
)

// Option is a single selectable attribute value
type Option struct {
	Label string `yaml:"label"`
	Value int    `yaml:"value"`
}

// Table maps each attribute type to its ordered options
type Table map[entities.AttributeType][]Option

// Option looks up the option at index for the attribute type
func (t Table) Option(attr entities.AttributeType, index int) (Option, error) {
	options, ok := t[attr]
	if !ok {
		return Option{}, apperr.InvalidArgumentf("no options for attribute %q", attr).
			WithMeta("attribute", string(attr))
	}
	if index < 0 || index >= len(options) {
		return Option{}, apperr.InvalidArgumentf("option %d out of range for %s (0-%d)", index, attr, len(options)-1).
			WithMeta("attribute", string(attr)).
			WithMeta("index", index)
	}
	return options[index], nil
}

// IndexOf returns the position of the first option with the given value, or -1
func (t Table) IndexOf(attr entities.AttributeType, value int) int {
	for i, opt := range t[attr] {
		if opt.Value == value {
			return i
		}
	}
	return -1
}

// Avatar is a selectable creature image. ID 0 is reserved for "no avatar".
type Avatar struct {
	ID       int    `yaml:"id"`
	Name     string `yaml:"name"`
	ImageURL string `yaml:"image_url"`
}

// Catalog bundles the attribute table and the avatar list
type Catalog struct {
	Attributes Table    `yaml:"attributes"`
	Avatars    []Avatar `yaml:"avatars"`
}

// Avatar finds an avatar by ID
func (c *Catalog) Avatar(id int) (Avatar, bool) {
	for _, a := range c.Avatars {
		if a.ID == id {
			return a, true
		}
	}
	return Avatar{}, false
}

// MaxOptions is the most entries a Discord select menu accepts
const MaxOptions = 25

// Selectable counts the options shown for attr. A leading zero-value option is a hint, not a choice.
func (t Table) Selectable(attr entities.AttributeType) int {
	options := t[attr]
	if len(options) > 0 && options[0].Value == 0 {
		return len(options) - 1
	}
	return len(options)
}

// Validate checks every attribute and the avatar list have between 1 and MaxOptions choices,
// and avatar IDs are positive and unique
func (c *Catalog) Validate() error {
	for _, attr := range entities.AttributeTypes {
		n := c.Attributes.Selectable(attr)
		if n == 0 {
			return apperr.InvalidArgumentf("catalog has no options for %s", attr)
		}
		if n > MaxOptions {
			return apperr.InvalidArgumentf("catalog has %d options for %s, at most %d allowed", n, attr, MaxOptions).
				WithMeta("attribute", string(attr))
		}
	}
	for attr := range c.Attributes {
		if _, err := entities.ParseAttributeType(string(attr)); err != nil {
			return apperr.WrapWithCode(err, apperr.CodeInvalidArgument, "invalid catalog")
		}
	}

	if len(c.Avatars) == 0 {
		return apperr.InvalidArgument("catalog has no avatars")
	}
	if len(c.Avatars) > MaxOptions {
		return apperr.InvalidArgumentf("catalog has %d avatars, at most %d allowed", len(c.Avatars), MaxOptions)
	}

	seen := make(map[int]bool, len(c.Avatars))
	for _, a := range c.Avatars {
		if a.ID <= 0 {
			return apperr.InvalidArgumentf("avatar %q must have a positive id", a.Name)
		}
		if seen[a.ID] {
			return apperr.InvalidArgumentf("duplicate avatar id %d", a.ID)
		}
		seen[a.ID] = true
	}
	return nil
}

// Default returns the built-in catalog
func Default() *Catalog {
	return &Catalog{
		Attributes: Table{
			entities.AttributeIntelligence: {
				{Label: "Select intelligence", Value: 0},
				{Label: "Guppy", Value: 1},
				{Label: "Dolphin", Value: 3},
				{Label: "Human", Value: 10},
			},
			entities.AttributeStrength: {
				{Label: "Select strength", Value: 0},
				{Label: "Ant", Value: 1},
				{Label: "Tiger", Value: 3},
				{Label: "Gorilla", Value: 7},
			},
			entities.AttributeEndurance: {
				{Label: "Select endurance", Value: 0},
				{Label: "Mayfly", Value: 1},
				{Label: "Bear", Value: 3},
				{Label: "Elephant", Value: 7},
			},
		},
		Avatars: []Avatar{
			{ID: 1, Name: "Bug"},
			{ID: 2, Name: "Cow"},
			{ID: 3, Name: "Dragon"},
			{ID: 4, Name: "Fish"},
			{ID: 5, Name: "Ghost"},
			{ID: 6, Name: "Owl"},
			{ID: 7, Name: "Penguin"},
			{ID: 8, Name: "Rabbit"},
		},
	}
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads a YAML catalog from disk. An empty path returns Default().
func LoadFile(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return Parse(data)
}
