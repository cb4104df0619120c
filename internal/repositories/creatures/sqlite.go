package creatures

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/KirkDiggler/creaturemon/internal/entities"
	apperr "github.com/KirkDiggler/creaturemon/internal/errors"
	"github.com/KirkDiggler/creaturemon/internal/repositories/creatures/migrations"
)

// SQLiteStore persists creatures in a local SQLite database
type SQLiteStore struct {
	sqlDB *sql.DB
	clock TimeProvider
}

// OpenSQLite opens a SQLite creature store at path and applies embedded migrations
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := runMigrations(ctx, sqlDB, goose.DialectSQLite3, migrations.SQLite, "sqlite"); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &SQLiteStore{sqlDB: sqlDB, clock: RealClock()}, nil
}

// WithTimeProvider replaces the clock used to stamp CreatedAt
func (s *SQLiteStore) WithTimeProvider(clock TimeProvider) *SQLiteStore {
	if clock != nil {
		s.clock = clock
	}
	return s
}

// Close closes the SQLite handle
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save upserts a creature
func (s *SQLiteStore) Save(ctx context.Context, creature *entities.Creature) error {
	stored, err := prepare(creature, s.clock)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO creatures (
		   id, owner_id, name, intelligence, strength, endurance, hit_points, avatar, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   owner_id = excluded.owner_id,
		   name = excluded.name,
		   intelligence = excluded.intelligence,
		   strength = excluded.strength,
		   endurance = excluded.endurance,
		   hit_points = excluded.hit_points,
		   avatar = excluded.avatar,
		   created_at = excluded.created_at`,
		stored.ID,
		stored.OwnerID,
		stored.Name,
		stored.Attributes.Intelligence,
		stored.Attributes.Strength,
		stored.Attributes.Endurance,
		stored.HitPoints,
		stored.Avatar,
		toMillis(stored.CreatedAt),
	)
	if err != nil {
		return apperr.WrapWithCode(err, apperr.CodeInternal, "save creature").
			WithMeta("creature_id", stored.ID)
	}
	return nil
}

// Get returns one creature by ID
func (s *SQLiteStore) Get(ctx context.Context, id string) (*entities.Creature, error) {
	if id == "" {
		return nil, apperr.InvalidArgument("creature ID is required")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, owner_id, name, intelligence, strength, endurance, hit_points, avatar, created_at
		 FROM creatures WHERE id = ?`, id)

	creature, err := scanSQLiteCreature(row)
	if err == sql.ErrNoRows {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInternal, "get creature").
			WithMeta("creature_id", id)
	}
	return creature, nil
}

// FetchAll returns an owner's roster, oldest first
func (s *SQLiteStore) FetchAll(ctx context.Context, ownerID string) ([]*entities.Creature, error) {
	if ownerID == "" {
		return nil, apperr.InvalidArgument("owner ID is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, owner_id, name, intelligence, strength, endurance, hit_points, avatar, created_at
		 FROM creatures WHERE owner_id = ?
		 ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInternal, "list creatures").
			WithMeta("owner_id", ownerID)
	}
	defer rows.Close()

	result := make([]*entities.Creature, 0)
	for rows.Next() {
		creature, err := scanSQLiteCreature(rows)
		if err != nil {
			return nil, apperr.WrapWithCode(err, apperr.CodeInternal, "scan creature")
		}
		result = append(result, creature)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.WrapWithCode(err, apperr.CodeInternal, "iterate creatures")
	}
	return result, nil
}

// ClearAll deletes an owner's roster
func (s *SQLiteStore) ClearAll(ctx context.Context, ownerID string) error {
	if ownerID == "" {
		return apperr.InvalidArgument("owner ID is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM creatures WHERE owner_id = ?`, ownerID); err != nil {
		return apperr.WrapWithCode(err, apperr.CodeInternal, "clear creatures").
			WithMeta("owner_id", ownerID)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteCreature(row rowScanner) (*entities.Creature, error) {
	var (
		c         entities.Creature
		createdAt int64
	)
	if err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.Name,
		&c.Attributes.Intelligence,
		&c.Attributes.Strength,
		&c.Attributes.Endurance,
		&c.HitPoints,
		&c.Avatar,
		&createdAt,
	); err != nil {
		return nil, err
	}
	c.CreatedAt = fromMillis(createdAt)
	return &c, nil
}
