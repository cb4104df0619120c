package dnd5e

import (
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"

	apperr "github.com/KirkDiggler/creaturemon/internal/errors"
)

// TODO: add context to functions once the upstream client accepts one
type client struct {
	client dnd5e.Interface

	mu    sync.RWMutex
	cache map[float64][]string
}

type Config struct {
	HttpClient *http.Client
}

func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, apperr.InvalidArgument("dnd5e client config is required")
	}

	dndClient, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{
		Client: cfg.HttpClient,
	})
	if err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeUnavailable, "failed to create dnd5e client")
	}

	return &client{
		client: dndClient,
		cache:  make(map[float64][]string),
	}, nil
}

// MonsterNames lists monsters for one challenge rating. Results are cached for the life of the client.
func (c *client) MonsterNames(challengeRating float64) ([]string, error) {
	c.mu.RLock()
	names, ok := c.cache[challengeRating]
	c.mu.RUnlock()
	if ok {
		return slices.Clone(names), nil
	}

	cr := challengeRating
	monsterRefs, err := c.client.ListMonstersWithFilter(&dnd5e.ListMonstersInput{
		ChallengeRating: &cr,
	})
	if err != nil {
		slog.Warn("Failed to list monsters", "challenge_rating", challengeRating, "error", err)
		return nil, apperr.WrapWithCode(err, apperr.CodeUnavailable, "failed to list monsters").
			WithMeta("challenge_rating", challengeRating)
	}

	names = make([]string, 0, len(monsterRefs))
	seen := make(map[string]bool, len(monsterRefs))
	for _, ref := range monsterRefs {
		if ref == nil || ref.Key == "" || seen[ref.Key] {
			continue
		}
		seen[ref.Key] = true
		names = append(names, ref.Name)
	}
	slices.Sort(names)

	c.mu.Lock()
	c.cache[challengeRating] = names
	c.mu.Unlock()

	return slices.Clone(names), nil
}

// SuggestNames maps hit points to a challenge rating and lists monsters at it
func (c *client) SuggestNames(hitPoints int) ([]string, error) {
	return c.MonsterNames(ChallengeRatingForHitPoints(hitPoints))
}
