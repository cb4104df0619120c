package creature_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	mockdnd5e "github.com/KirkDiggler/creaturemon/internal/clients/dnd5e/mock"
	mockgenerator "github.com/KirkDiggler/creaturemon/internal/generator/mock"
	"github.com/KirkDiggler/creaturemon/internal/entities"
	apperr "github.com/KirkDiggler/creaturemon/internal/errors"
	"github.com/KirkDiggler/creaturemon/internal/events"
	"github.com/KirkDiggler/creaturemon/internal/repositories/creatures"
	"github.com/KirkDiggler/creaturemon/internal/services/creature"
)

// manualClock is advanced explicitly by tests
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type ServiceTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	bestiary *mockdnd5e.MockClient
	repo     creatures.Repository
	bus      *events.Bus
	clock    *manualClock
	svc      creature.Service
	ctx      context.Context
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.bestiary = mockdnd5e.NewMockClient(s.ctrl)
	s.clock = &manualClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	s.repo = creatures.NewInMemoryRepositoryWithClock(s.clock)
	s.bus = events.NewBus()
	s.ctx = context.Background()
	s.svc = creature.NewService(&creature.ServiceConfig{
		Repository:   s.repo,
		Bestiary:     s.bestiary,
		Bus:          s.bus,
		TimeProvider: s.clock,
		Pick:         func(int) int { return 0 },
	})
}

func (s *ServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) completeDraft(userID, name string) {
	draft, err := s.svc.StartDraft(userID)
	s.Require().NoError(err)
	s.Require().NoError(draft.SelectAttribute(entities.AttributeIntelligence, 3))
	s.Require().NoError(draft.SelectAttribute(entities.AttributeStrength, 2))
	s.Require().NoError(draft.SelectAttribute(entities.AttributeEndurance, 3))
	s.Require().NoError(draft.SelectAvatar(3))
	draft.SetName(name)
}

func (s *ServiceTestSuite) TestNewService_RequiresRepository() {
	s.Panics(func() { creature.NewService(nil) })
	s.Panics(func() { creature.NewService(&creature.ServiceConfig{}) })
}

func (s *ServiceTestSuite) TestStartDraft_ReplacesExisting() {
	first, err := s.svc.StartDraft("user-1")
	s.Require().NoError(err)
	first.SetName("Old")

	second, err := s.svc.StartDraft("user-1")
	s.Require().NoError(err)
	s.NotSame(first, second)

	current, err := s.svc.Draft("user-1")
	s.Require().NoError(err)
	s.Same(second, current)
	s.Equal("", current.Name())
	s.Equal("user-1", current.OwnerID())

	_, err = s.svc.StartDraft(" ")
	s.True(apperr.IsInvalidArgument(err))
}

func (s *ServiceTestSuite) TestDraft_NotFound() {
	_, err := s.svc.Draft("user-1")
	s.True(apperr.IsNotFound(err))

	_, err = s.svc.StartDraft("user-1")
	s.Require().NoError(err)
	s.svc.DiscardDraft("user-1")

	_, err = s.svc.Draft("user-1")
	s.True(apperr.IsNotFound(err))
}

func (s *ServiceTestSuite) TestSaveAndList() {
	s.completeDraft("user-1", "Rex")
	s.completeDraft("user-2", "Other")

	result, err := s.svc.Save(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().True(result.Saved)

	s.clock.Advance(time.Second)
	result, err = s.svc.Save(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().True(result.Saved)

	roster, err := s.svc.List(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(roster, 2)
	s.NotEqual(roster[0].ID, roster[1].ID)
	s.Equal("Rex", roster[0].Name)
	s.Equal(10*5+3*3+7*4, roster[0].HitPoints)

	empty, err := s.svc.List(s.ctx, "user-2")
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *ServiceTestSuite) TestSave_Incomplete() {
	_, err := s.svc.StartDraft("user-1")
	s.Require().NoError(err)

	result, err := s.svc.Save(s.ctx, "user-1")
	s.Require().NoError(err)
	s.False(result.Saved)
	s.True(apperr.IsValidation(result.Err))

	_, err = s.svc.Save(s.ctx, "user-2")
	s.True(apperr.IsNotFound(err))
}

func (s *ServiceTestSuite) TestClear_EmitsEvent() {
	s.completeDraft("user-1", "Rex")
	_, err := s.svc.Save(s.ctx, "user-1")
	s.Require().NoError(err)

	var cleared []string
	s.bus.Subscribe(events.EventTypeCreaturesCleared, &events.ListenerFunc{
		ListenerID: "test",
		Fn: func(e events.Event) error {
			cleared = append(cleared, e.GetOwnerID())
			return nil
		},
	})

	s.Require().NoError(s.svc.Clear(s.ctx, "user-1"))
	s.Equal([]string{"user-1"}, cleared)

	roster, err := s.svc.List(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Empty(roster)

	// the roster stays subscribed until it goes idle
	s.Equal(2, s.bus.ListenerCount(events.EventTypeCreaturesCleared))

	s.clock.Advance(31 * time.Minute)
	s.svc.PruneDrafts(30 * time.Minute)
	s.Equal(1, s.bus.ListenerCount(events.EventTypeCreaturesCleared))
}

// countingRepo counts storage reads
type countingRepo struct {
	creatures.Repository
	mu      sync.Mutex
	fetches int
}

func (r *countingRepo) FetchAll(ctx context.Context, ownerID string) ([]*entities.Creature, error) {
	r.mu.Lock()
	r.fetches++
	r.mu.Unlock()
	return r.Repository.FetchAll(ctx, ownerID)
}

func (r *countingRepo) Fetches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetches
}

func (s *ServiceTestSuite) TestList_RosterRefreshedByBus() {
	repo := &countingRepo{Repository: creatures.NewInMemoryRepositoryWithClock(s.clock)}
	svc := creature.NewService(&creature.ServiceConfig{
		Repository:   repo,
		TimeProvider: s.clock,
	})

	roster, err := svc.List(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Empty(roster)
	s.Equal(1, repo.Fetches())

	draft, err := svc.StartDraft("user-1")
	s.Require().NoError(err)
	s.Require().NoError(draft.SelectAttribute(entities.AttributeIntelligence, 1))
	s.Require().NoError(draft.SelectAttribute(entities.AttributeStrength, 1))
	s.Require().NoError(draft.SelectAttribute(entities.AttributeEndurance, 1))
	s.Require().NoError(draft.SelectAvatar(2))
	draft.SetName("Nemo")

	result, err := svc.Save(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().True(result.Saved)
	s.Equal(2, repo.Fetches(), "the saved event refreshes the roster")

	roster, err = svc.List(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Require().Len(roster, 1)
	s.Equal("Nemo", roster[0].Name)
	s.Equal(2, repo.Fetches(), "a fresh roster is served without reading storage")

	s.clock.Advance(creature.DefaultRosterMaxAge)
	_, err = svc.List(s.ctx, "user-1")
	s.Require().NoError(err)
	s.Equal(3, repo.Fetches())
}

func (s *ServiceTestSuite) TestDraft_SaveResultsObservedUntilDiscarded() {
	first, err := s.svc.StartDraft("user-1")
	s.Require().NoError(err)
	s.Equal(1, first.SaveResults().ObserverCount())

	second, err := s.svc.StartDraft("user-1")
	s.Require().NoError(err)
	s.Equal(0, first.SaveResults().ObserverCount())
	s.Equal(1, second.SaveResults().ObserverCount())

	s.svc.DiscardDraft("user-1")
	s.Equal(0, second.SaveResults().ObserverCount())
}

func (s *ServiceTestSuite) TestSuggestName() {
	s.completeDraft("user-1", "Ogre")

	// Human / Tiger / Elephant: 50 + 9 + 28 = 87 hit points
	s.bestiary.EXPECT().SuggestNames(87).Return([]string{"Ogre", "Centaur"}, nil)

	name, err := s.svc.SuggestName("user-1")
	s.Require().NoError(err)
	s.Equal("Centaur", name)

	draft, err := s.svc.Draft("user-1")
	s.Require().NoError(err)
	s.Equal("Centaur", draft.Name())
	s.Equal("Centaur", draft.Current().Name)
}

func (s *ServiceTestSuite) TestSuggestName_UsesGeneratedHitPoints() {
	gen := mockgenerator.NewMockGenerator(s.ctrl)
	gen.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(attrs entities.CreatureAttributes, name string, avatar int) *entities.Creature {
			return &entities.Creature{Name: name, Attributes: attrs, Avatar: avatar, HitPoints: 42}
		}).AnyTimes()

	svc := creature.NewService(&creature.ServiceConfig{
		Repository: s.repo,
		Generator:  gen,
		Bestiary:   s.bestiary,
		Pick:       func(int) int { return 0 },
	})
	draft, err := svc.StartDraft("user-1")
	s.Require().NoError(err)
	s.Require().NoError(draft.SelectAvatar(1))

	s.bestiary.EXPECT().SuggestNames(42).Return([]string{"Owlbear"}, nil)

	name, err := svc.SuggestName("user-1")
	s.Require().NoError(err)
	s.Equal("Owlbear", name)
}

func (s *ServiceTestSuite) TestSuggestName_Errors() {
	_, err := s.svc.SuggestName("user-1")
	s.True(apperr.IsNotFound(err))

	_, err = s.svc.StartDraft("user-1")
	s.Require().NoError(err)

	s.bestiary.EXPECT().SuggestNames(0).Return(nil, apperr.New(apperr.CodeUnavailable, "api down"))
	_, err = s.svc.SuggestName("user-1")
	s.Equal(apperr.CodeUnavailable, apperr.GetCode(err))

	s.bestiary.EXPECT().SuggestNames(0).Return([]string{}, nil)
	_, err = s.svc.SuggestName("user-1")
	s.True(apperr.IsNotFound(err))

	s.bestiary.EXPECT().SuggestNames(0).Return(nil, errors.New("boom"))
	_, err = s.svc.SuggestName("user-1")
	s.Error(err)
}

func (s *ServiceTestSuite) TestSuggestName_WithoutBestiary() {
	svc := creature.NewService(&creature.ServiceConfig{Repository: s.repo})
	_, err := svc.StartDraft("user-1")
	s.Require().NoError(err)

	_, err = svc.SuggestName("user-1")
	s.Equal(apperr.CodeUnavailable, apperr.GetCode(err))
}

func (s *ServiceTestSuite) TestPruneDrafts() {
	_, err := s.svc.StartDraft("idle")
	s.Require().NoError(err)
	_, err = s.svc.StartDraft("active")
	s.Require().NoError(err)

	s.clock.Advance(20 * time.Minute)
	_, err = s.svc.Draft("active")
	s.Require().NoError(err)

	s.clock.Advance(15 * time.Minute)
	s.Equal(1, s.svc.PruneDrafts(30*time.Minute))

	_, err = s.svc.Draft("idle")
	s.True(apperr.IsNotFound(err))
	_, err = s.svc.Draft("active")
	s.NoError(err)

	s.Equal(0, s.svc.PruneDrafts(30*time.Minute))
}

func (s *ServiceTestSuite) TestCatalogDefaults() {
	s.NotNil(s.svc.Catalog())
	s.Len(s.svc.Catalog().Avatars, 8)
}
