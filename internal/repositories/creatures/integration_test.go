//go:build integration

package creatures_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/creaturemon/internal/repositories/creatures"
	"github.com/KirkDiggler/creaturemon/internal/testutils"
)

func TestRedisRepositorySuite_Integration(t *testing.T) {
	client := testutils.StartRedisContainer(t)

	suite.Run(t, &RepositoryTestSuite{
		newRepo: func(t *testing.T, clock creatures.TimeProvider) creatures.Repository {
			if err := client.FlushDB(context.Background()).Err(); err != nil {
				t.Fatalf("flush redis: %v", err)
			}
			return creatures.NewRedisRepository(&creatures.RedisRepoConfig{
				Client:       client,
				TimeProvider: clock,
			})
		},
	})
}

func TestPostgresRepositorySuite_Integration(t *testing.T) {
	dsn := testutils.StartPostgresContainer(t)

	store, err := creatures.OpenPostgres(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	suite.Run(t, &RepositoryTestSuite{
		newRepo: func(t *testing.T, clock creatures.TimeProvider) creatures.Repository {
			if _, err := store.Pool().Exec(context.Background(), "TRUNCATE creatures"); err != nil {
				t.Fatalf("truncate creatures: %v", err)
			}
			return store.WithTimeProvider(clock)
		},
	})
}
