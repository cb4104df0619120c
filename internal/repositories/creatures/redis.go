package creatures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/KirkDiggler/creaturemon/internal/entities"
	apperr "github.com/KirkDiggler/creaturemon/internal/errors"
)

// CreatureData is the serialized form of a creature in Redis
type CreatureData struct {
	ID           string `json:"id"`
	OwnerID      string `json:"owner_id"`
	Name         string `json:"name"`
	Intelligence int    `json:"intelligence"`
	Strength     int    `json:"strength"`
	Endurance    int    `json:"endurance"`
	HitPoints    int    `json:"hit_points"`
	Avatar       int    `json:"avatar"`
	CreatedAt    int64  `json:"created_at"` // unix millis
}

// redisRepo implements the Repository interface using Redis
type redisRepo struct {
	client redis.UniversalClient
	clock  TimeProvider
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client       redis.UniversalClient
	TimeProvider TimeProvider
}

// NewRedisRepository creates a new Redis-backed creature repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil {
		panic("RedisRepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("Redis client cannot be nil")
	}

	clock := cfg.TimeProvider
	if clock == nil {
		clock = RealClock()
	}

	return &redisRepo{
		client: cfg.Client,
		clock:  clock,
	}
}

// key generates the Redis key for a creature
func (r *redisRepo) key(id string) string {
	return fmt.Sprintf("creature:%s", id)
}

// ownerCreaturesKey generates the Redis key for an owner's roster index
func (r *redisRepo) ownerCreaturesKey(ownerID string) string {
	return fmt.Sprintf("owner:%s:creatures", ownerID)
}

// Save stores the creature JSON and indexes it in the owner's roster. A creature re-saved
// under a new owner is removed from the previous owner's roster.
func (r *redisRepo) Save(ctx context.Context, creature *entities.Creature) error {
	stored, err := prepare(creature, r.clock)
	if err != nil {
		return err
	}

	previousOwner, err := r.previousOwner(ctx, stored.ID)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(toCreatureData(stored))
	if err != nil {
		return apperr.WrapWithCode(err, apperr.CodeInternal, "failed to marshal creature")
	}

	pipe := r.client.Pipeline()
	if previousOwner != "" && previousOwner != stored.OwnerID {
		pipe.SRem(ctx, r.ownerCreaturesKey(previousOwner), stored.ID)
	}
	pipe.Set(ctx, r.key(stored.ID), string(payload), 0)
	pipe.SAdd(ctx, r.ownerCreaturesKey(stored.OwnerID), stored.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.WrapWithCode(err, apperr.CodeInternal, "failed to save creature in Redis").
			WithMeta("creature_id", stored.ID)
	}

	return nil
}

// previousOwner returns the owner of the stored creature with id, or "" when there is none
func (r *redisRepo) previousOwner(ctx context.Context, id string) (string, error) {
	payload, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", apperr.WrapWithCode(err, apperr.CodeInternal, "failed to read creature from Redis").
			WithMeta("creature_id", id)
	}

	var data CreatureData
	if err := json.Unmarshal(payload, &data); err != nil {
		slog.Warn("Overwriting unreadable creature", "creature_id", id, "error", err)
		return "", nil
	}
	return data.OwnerID, nil
}

// Get retrieves a creature by ID
func (r *redisRepo) Get(ctx context.Context, id string) (*entities.Creature, error) {
	if id == "" {
		return nil, apperr.InvalidArgument("creature ID is required")
	}

	payload, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound(id)
		}
		return nil, apperr.WrapWithCode(err, apperr.CodeInternal, "failed to get creature from Redis").
			WithMeta("creature_id", id)
	}

	var data CreatureData
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInternal, "failed to unmarshal creature").
			WithMeta("creature_id", id)
	}

	return fromCreatureData(&data), nil
}

// FetchAll loads every creature in the roster concurrently. Index entries whose
// creature key has disappeared are skipped.
func (r *redisRepo) FetchAll(ctx context.Context, ownerID string) ([]*entities.Creature, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}

	ids, err := r.client.SMembers(ctx, r.ownerCreaturesKey(ownerID)).Result()
	if err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInternal, "failed to get roster from Redis").
			WithMeta("owner_id", ownerID)
	}

	found := make([]*entities.Creature, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			creature, err := r.Get(gctx, id)
			if err != nil {
				if apperr.IsNotFound(err) {
					slog.Warn("Roster index points at missing creature", "owner_id", ownerID, "creature_id", id)
					return nil
				}
				return err
			}
			found[i] = creature
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]*entities.Creature, 0, len(found))
	for _, c := range found {
		if c != nil {
			result = append(result, c)
		}
	}

	sortByCreation(result)
	return result, nil
}

// ClearAll deletes every creature key in the roster and the roster index itself
func (r *redisRepo) ClearAll(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return apperr.InvalidArgument("owner ID is required")
	}

	ownerKey := r.ownerCreaturesKey(ownerID)
	ids, err := r.client.SMembers(ctx, ownerKey).Result()
	if err != nil {
		return apperr.WrapWithCode(err, apperr.CodeInternal, "failed to get roster from Redis").
			WithMeta("owner_id", ownerID)
	}

	pipe := r.client.Pipeline()
	if len(ids) > 0 {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = r.key(id)
		}
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, ownerKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.WrapWithCode(err, apperr.CodeInternal, "failed to clear roster in Redis").
			WithMeta("owner_id", ownerID)
	}

	return nil
}

func toCreatureData(c *entities.Creature) *CreatureData {
	return &CreatureData{
		ID:           c.ID,
		OwnerID:      c.OwnerID,
		Name:         c.Name,
		Intelligence: c.Attributes.Intelligence,
		Strength:     c.Attributes.Strength,
		Endurance:    c.Attributes.Endurance,
		HitPoints:    c.HitPoints,
		Avatar:       c.Avatar,
		CreatedAt:    toMillis(c.CreatedAt),
	}
}

func fromCreatureData(data *CreatureData) *entities.Creature {
	return &entities.Creature{
		ID:      data.ID,
		OwnerID: data.OwnerID,
		Name:    data.Name,
		Attributes: entities.CreatureAttributes{
			Intelligence: data.Intelligence,
			Strength:     data.Strength,
			Endurance:    data.Endurance,
		},
		HitPoints: data.HitPoints,
		Avatar:    data.Avatar,
		CreatedAt: fromMillis(data.CreatedAt),
	}
}
