package creatures

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/KirkDiggler/creaturemon/internal/entities"
	apperr "github.com/KirkDiggler/creaturemon/internal/errors"
	"github.com/KirkDiggler/creaturemon/internal/repositories/creatures/migrations"
)

// PostgresStore persists creatures in PostgreSQL through a pgx pool
type PostgresStore struct {
	pool  *pgxpool.Pool
	clock TimeProvider
}

// OpenPostgres connects to PostgreSQL, runs migrations and returns a store
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := migratePostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return NewPostgresStore(pool), nil
}

// NewPostgresStore wraps an existing, migrated pool
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, clock: RealClock()}
}

// WithTimeProvider replaces the clock used to stamp CreatedAt
func (s *PostgresStore) WithTimeProvider(clock TimeProvider) *PostgresStore {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// Pool exposes the underlying pgx pool
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func migratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	// goose needs *sql.DB
	connStr := stdlib.RegisterConnConfig(pool.Config().ConnConfig)
	defer stdlib.UnregisterConnConfig(connStr)

	sqlDB, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	return runMigrations(ctx, sqlDB, goose.DialectPostgres, migrations.Postgres, "postgres")
}

// Save upserts a creature
func (s *PostgresStore) Save(ctx context.Context, creature *entities.Creature) error {
	stored, err := prepare(creature, s.clock)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO creatures (id, owner_id, name, intelligence, strength, endurance, hit_points, avatar, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE SET
		   owner_id = EXCLUDED.owner_id,
		   name = EXCLUDED.name,
		   intelligence = EXCLUDED.intelligence,
		   strength = EXCLUDED.strength,
		   endurance = EXCLUDED.endurance,
		   hit_points = EXCLUDED.hit_points,
		   avatar = EXCLUDED.avatar,
		   created_at = EXCLUDED.created_at`,
		stored.ID, stored.OwnerID, stored.Name,
		stored.Attributes.Intelligence, stored.Attributes.Strength, stored.Attributes.Endurance,
		stored.HitPoints, stored.Avatar, stored.CreatedAt,
	)
	if err != nil {
		return apperr.WrapWithCode(err, apperr.CodeInternal, fmt.Sprintf("saving creature %q", stored.ID))
	}
	return nil
}

// Get returns one creature by ID
func (s *PostgresStore) Get(ctx context.Context, id string) (*entities.Creature, error) {
	if id == "" {
		return nil, apperr.InvalidArgument("creature ID is required")
	}

	row := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, name, intelligence, strength, endurance, hit_points, avatar, created_at
		 FROM creatures WHERE id = $1`, id)

	creature, err := scanPostgresCreature(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInternal, fmt.Sprintf("querying creature %q", id))
	}
	return creature, nil
}

// FetchAll returns an owner's roster, oldest first
func (s *PostgresStore) FetchAll(ctx context.Context, ownerID string) ([]*entities.Creature, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, name, intelligence, strength, endurance, hit_points, avatar, created_at
		 FROM creatures WHERE owner_id = $1
		 ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInternal, fmt.Sprintf("querying roster %q", ownerID))
	}
	defer rows.Close()

	result := make([]*entities.Creature, 0)
	for rows.Next() {
		creature, err := scanPostgresCreature(rows)
		if err != nil {
			return nil, apperr.WrapWithCode(err, apperr.CodeInternal, "scanning creature")
		}
		result = append(result, creature)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInternal, "iterating roster")
	}
	return result, nil
}

// ClearAll deletes an owner's roster
func (s *PostgresStore) ClearAll(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return apperr.InvalidArgument("owner ID is required")
	}

	if _, err := s.pool.Exec(ctx, `DELETE FROM creatures WHERE owner_id = $1`, ownerID); err != nil {
		return apperr.WrapWithCode(err, apperr.CodeInternal, fmt.Sprintf("clearing roster %q", ownerID))
	}
	return nil
}

func scanPostgresCreature(row pgx.Row) (*entities.Creature, error) {
	var c entities.Creature
	if err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.Name,
		&c.Attributes.Intelligence,
		&c.Attributes.Strength,
		&c.Attributes.Endurance,
		&c.HitPoints,
		&c.Avatar,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}
