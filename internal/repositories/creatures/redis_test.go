package creatures

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/creaturemon/internal/entities"
	apperr "github.com/KirkDiggler/creaturemon/internal/errors"
	mockcreatures "github.com/KirkDiggler/creaturemon/internal/repositories/creatures/mock"
)

type RedisRepoTestSuite struct {
	suite.Suite
	mockClient   *redis.Client
	mock         redismock.ClientMock
	repo         Repository
	mockCtrl     *gomock.Controller
	timeProvider *mockcreatures.MockTimeProvider
}

func (s *RedisRepoTestSuite) SetupTest() {
	s.mockClient, s.mock = redismock.NewClientMock()
	s.mockCtrl = gomock.NewController(s.T())
	s.timeProvider = mockcreatures.NewMockTimeProvider(s.mockCtrl)
	s.repo = NewRedisRepository(&RedisRepoConfig{
		Client:       s.mockClient,
		TimeProvider: s.timeProvider,
	})
}

func (s *RedisRepoTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
	s.NoError(s.mock.ExpectationsWereMet())
}

func TestRedisRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepoTestSuite))
}

func (s *RedisRepoTestSuite) creature(id string, createdAt time.Time) *entities.Creature {
	return &entities.Creature{
		ID:      id,
		OwnerID: "owner-1",
		Name:    "Rex",
		Attributes: entities.CreatureAttributes{
			Intelligence: 10,
			Strength:     3,
			Endurance:    7,
		},
		HitPoints: 87,
		Avatar:    3,
		CreatedAt: createdAt,
	}
}

func (s *RedisRepoTestSuite) payload(c *entities.Creature) string {
	data, err := json.Marshal(toCreatureData(c))
	s.Require().NoError(err)
	return string(data)
}

func (s *RedisRepoTestSuite) TestNewRedisRepository_PanicsWithoutClient() {
	s.Panics(func() { NewRedisRepository(nil) })
	s.Panics(func() { NewRedisRepository(&RedisRepoConfig{}) })
}

func (s *RedisRepoTestSuite) TestSave() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	c := s.creature("c-1", now)

	// Happy path
	s.mock.ExpectGet("creature:c-1").RedisNil()
	s.mock.ExpectSet("creature:c-1", s.payload(c), 0).SetVal("OK")
	s.mock.ExpectSAdd("owner:owner-1:creatures", "c-1").SetVal(1)

	s.NoError(s.repo.Save(ctx, c))
	s.NoError(s.mock.ExpectationsWereMet())

	// Dependency error
	s.mock.ExpectGet("creature:c-1").RedisNil()
	s.mock.ExpectSet("creature:c-1", s.payload(c), 0).SetErr(errors.New("redis error"))

	err := s.repo.Save(ctx, c)
	s.Error(err)
	s.Equal(apperr.CodeInternal, apperr.GetCode(err))

	// Previous owner lookup error
	s.mock.ExpectGet("creature:c-1").SetErr(errors.New("redis error"))

	err = s.repo.Save(ctx, c)
	s.Equal(apperr.CodeInternal, apperr.GetCode(err))

	// Input validation
	s.True(apperr.IsInvalidArgument(s.repo.Save(ctx, nil)))
	s.True(apperr.IsInvalidArgument(s.repo.Save(ctx, s.creature("", now))))
}

func (s *RedisRepoTestSuite) TestSave_StampsCreatedAt() {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.timeProvider.EXPECT().Now().Return(now)

	c := s.creature("c-1", time.Time{})
	expected := c.Clone()
	expected.CreatedAt = now

	s.mock.ExpectGet("creature:c-1").RedisNil()
	s.mock.ExpectSet("creature:c-1", s.payload(expected), 0).SetVal("OK")
	s.mock.ExpectSAdd("owner:owner-1:creatures", "c-1").SetVal(1)

	s.NoError(s.repo.Save(ctx, c))
	s.True(c.CreatedAt.IsZero())
}

func (s *RedisRepoTestSuite) TestSave_SameOwnerKeepsIndex() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	c := s.creature("c-1", now)

	s.mock.ExpectGet("creature:c-1").SetVal(s.payload(c))
	s.mock.ExpectSet("creature:c-1", s.payload(c), 0).SetVal("OK")
	s.mock.ExpectSAdd("owner:owner-1:creatures", "c-1").SetVal(0)

	s.NoError(s.repo.Save(ctx, c))
}

func (s *RedisRepoTestSuite) TestSave_NewOwnerLeavesPreviousRoster() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	previous := s.creature("c-1", now)
	moved := previous.Clone()
	moved.OwnerID = "owner-2"

	s.mock.ExpectGet("creature:c-1").SetVal(s.payload(previous))
	s.mock.ExpectSRem("owner:owner-1:creatures", "c-1").SetVal(1)
	s.mock.ExpectSet("creature:c-1", s.payload(moved), 0).SetVal("OK")
	s.mock.ExpectSAdd("owner:owner-2:creatures", "c-1").SetVal(1)

	s.NoError(s.repo.Save(ctx, moved))
}

func (s *RedisRepoTestSuite) TestGet() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	c := s.creature("c-1", now)

	// Happy path
	s.mock.ExpectGet("creature:c-1").SetVal(s.payload(c))

	got, err := s.repo.Get(ctx, "c-1")
	s.Require().NoError(err)
	s.Equal(c, got)

	// Not found
	s.mock.ExpectGet("creature:c-2").RedisNil()

	_, err = s.repo.Get(ctx, "c-2")
	s.True(apperr.IsNotFound(err))

	// Dependency error
	s.mock.ExpectGet("creature:c-1").SetErr(errors.New("redis error"))

	_, err = s.repo.Get(ctx, "c-1")
	s.Error(err)
	s.False(apperr.IsNotFound(err))

	// Corrupt payload
	s.mock.ExpectGet("creature:c-1").SetVal("{not json")

	_, err = s.repo.Get(ctx, "c-1")
	s.Equal(apperr.CodeInternal, apperr.GetCode(err))
}

func (s *RedisRepoTestSuite) TestFetchAll() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	older := s.creature("c-1", now.Add(-time.Minute))
	newer := s.creature("c-2", now)

	s.mock.MatchExpectationsInOrder(false)
	s.mock.ExpectSMembers("owner:owner-1:creatures").SetVal([]string{"c-2", "c-1", "c-gone"})
	s.mock.ExpectGet("creature:c-1").SetVal(s.payload(older))
	s.mock.ExpectGet("creature:c-2").SetVal(s.payload(newer))
	s.mock.ExpectGet("creature:c-gone").RedisNil()

	list, err := s.repo.FetchAll(ctx, "owner-1")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("c-1", list[0].ID)
	s.Equal("c-2", list[1].ID)
}

func (s *RedisRepoTestSuite) TestFetchAll_Errors() {
	ctx := context.Background()

	s.mock.ExpectSMembers("owner:owner-1:creatures").SetErr(errors.New("redis error"))

	_, err := s.repo.FetchAll(ctx, "owner-1")
	s.Error(err)

	_, err = s.repo.FetchAll(ctx, "")
	s.True(apperr.IsInvalidArgument(err))
}

func (s *RedisRepoTestSuite) TestClearAll() {
	ctx := context.Background()

	s.mock.ExpectSMembers("owner:owner-1:creatures").SetVal([]string{"c-1", "c-2"})
	s.mock.ExpectDel("creature:c-1", "creature:c-2").SetVal(2)
	s.mock.ExpectDel("owner:owner-1:creatures").SetVal(1)

	s.NoError(s.repo.ClearAll(ctx, "owner-1"))
}

func (s *RedisRepoTestSuite) TestClearAll_EmptyRoster() {
	ctx := context.Background()

	s.mock.ExpectSMembers("owner:owner-1:creatures").SetVal([]string{})
	s.mock.ExpectDel("owner:owner-1:creatures").SetVal(0)

	s.NoError(s.repo.ClearAll(ctx, "owner-1"))
}

func (s *RedisRepoTestSuite) TestClearAll_DependencyError() {
	ctx := context.Background()

	s.mock.ExpectSMembers("owner:owner-1:creatures").SetVal([]string{"c-1"})
	s.mock.ExpectDel("creature:c-1").SetErr(errors.New("redis error"))

	err := s.repo.ClearAll(ctx, "owner-1")
	s.Error(err)
	s.Equal(apperr.CodeInternal, apperr.GetCode(err))
}
