package creation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
	"github.com/KirkDiggler/dune-bot-discord/internal/repositories/characters"
	mocksessions "github.com/KirkDiggler/dune-bot-discord/internal/repositories/sessions/mock"
	"github.com/KirkDiggler/dune-bot-discord/internal/repositories/sessions/mocks"
	"github.com/KirkDiggler/dune-bot-discord/internal/rules"
	"github.com/KirkDiggler/dune-bot-discord/internal/services/creation"
	"github.com/KirkDiggler/dune-bot-discord/internal/testutils"
	mockuuid "github.com/KirkDiggler/dune-bot-discord/internal/uuid/mock"
)

const (
	userID  = "user-123"
	guildID = "guild-456"
)

type CreationServiceTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	sessionRepo *mocksessions.MockRepository
	charRepo    characters.Repository
	uuids       *mockuuid.MockGenerator
	clock       *mocks.MockTimeProvider
	logs        *observer.ObservedLogs
	now         time.Time
	ctx         context.Context
	svc         creation.Service
}

func (s *CreationServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.sessionRepo = mocksessions.NewMockRepository(s.ctrl)
	s.charRepo = characters.NewInMemoryRepository()
	s.uuids = mockuuid.NewMockGenerator(s.ctrl)
	s.clock = mocks.NewMockTimeProvider(s.ctrl)
	s.now = time.Date(2025, 7, 4, 10, 0, 0, 0, time.UTC)
	s.ctx = context.Background()

	s.clock.EXPECT().Now().DoAndReturn(func() time.Time { return s.now }).AnyTimes()

	core, logs := observer.New(zapcore.DebugLevel)
	s.logs = logs

	s.svc = creation.NewService(&creation.ServiceConfig{
		Ruleset:       rules.MustDefault(),
		CharacterRepo: s.charRepo,
		SessionRepo:   s.sessionRepo,
		UUIDGenerator: s.uuids,
		TimeProvider:  s.clock,
		TTL:           time.Hour,
		Logger:        zap.New(core),
	})
}

func (s *CreationServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestCreationServiceSuite(t *testing.T) {
	suite.Run(t, new(CreationServiceTestSuite))
}

func (s *CreationServiceTestSuite) allowPersistence() {
	s.sessionRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	s.sessionRepo.EXPECT().Delete(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

// submitThrough submits every step before stop with the complete fixture
func (s *CreationServiceTestSuite) submitThrough(stop entities.CreationStep) *entities.CreationSession {
	data := testutils.CompleteCreationData()
	var session *entities.CreationSession
	for _, step := range entities.CreationSteps {
		if !step.Before(stop) {
			break
		}
		var err error
		session, err = s.svc.Submit(s.ctx, userID, guildID, step, &data)
		s.Require().NoError(err, "step %s", step)
	}
	return session
}

func (s *CreationServiceTestSuite) TestStart_NewSession() {
	s.sessionRepo.EXPECT().Save(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, session *entities.CreationSession) error {
			s.Equal(userID, session.UserID)
			s.Equal(entities.StepName, session.CurrentStep)
			return nil
		})

	session, err := s.svc.Start(s.ctx, userID, guildID)
	s.Require().NoError(err)
	s.Equal(entities.StepName, session.CurrentStep)
	s.Equal(guildID, session.GuildID)
	s.Equal(s.now, session.CreatedAt)
	s.False(session.Completed)
}

func (s *CreationServiceTestSuite) TestStart_Idempotent() {
	s.allowPersistence()

	s.svc.Start(s.ctx, userID, guildID)
	first := s.submitThrough(entities.StepArchetype)

	s.now = s.now.Add(5 * time.Minute)
	again, err := s.svc.Start(s.ctx, userID, guildID)
	s.Require().NoError(err)
	s.Equal(first, again)
	s.Equal(entities.StepArchetype, again.CurrentStep)
}

func (s *CreationServiceTestSuite) TestStart_MissingKeys() {
	_, err := s.svc.Start(s.ctx, "", guildID)
	s.True(dnderr.IsInvalidArgument(err))

	_, err = s.svc.Start(s.ctx, userID, "")
	s.True(dnderr.IsInvalidArgument(err))
}

func (s *CreationServiceTestSuite) TestSubmit_NoSession() {
	_, err := s.svc.Submit(s.ctx, userID, guildID, entities.StepName, &entities.CreationData{Name: "Chani"})
	s.True(dnderr.IsState(err))
}

func (s *CreationServiceTestSuite) TestSubmit_StepBeforePrerequisites() {
	s.allowPersistence()
	s.svc.Start(s.ctx, userID, guildID)
	before, err := s.svc.Get(s.ctx, userID, guildID)
	s.Require().NoError(err)

	data := testutils.CompleteCreationData()
	_, err = s.svc.Submit(s.ctx, userID, guildID, entities.StepSkills, &data)
	s.Require().Error(err)
	s.True(dnderr.IsState(err))
	s.Equal(string(entities.StepName), dnderr.GetMeta(err)["current_step"])

	after, err := s.svc.Get(s.ctx, userID, guildID)
	s.Require().NoError(err)
	s.Equal(before, after)
}

func (s *CreationServiceTestSuite) TestSubmit_InvalidPayload() {
	s.allowPersistence()
	s.svc.Start(s.ctx, userID, guildID)
	before := s.submitThrough(entities.StepSkills)

	s.now = s.now.Add(time.Minute)
	_, err := s.svc.Submit(s.ctx, userID, guildID, entities.StepSkills, &entities.CreationData{
		Skills: map[string]int{"Battle": 9, "Communicate": 9, "Discipline": 6, "Move": 5, "Understand": 4},
	})
	s.Require().Error(err)
	s.True(dnderr.IsValidation(err))
	s.Contains(err.Error(), "9 used by [Battle Communicate]")

	after, err := s.svc.Get(s.ctx, userID, guildID)
	s.Require().NoError(err)
	s.Equal(before, after)
}

func (s *CreationServiceTestSuite) TestSubmit_SameSkillTwiceInDifferentCase() {
	s.allowPersistence()
	s.svc.Start(s.ctx, userID, guildID)
	before := s.submitThrough(entities.StepSkills)

	_, err := s.svc.Submit(s.ctx, userID, guildID, entities.StepSkills, &entities.CreationData{
		Skills: map[string]int{"Battle": 9, "battle": 8, "Communicate": 7, "Discipline": 6, "Move": 5, "Understand": 4},
	})
	s.Require().Error(err)
	s.True(dnderr.IsValidation(err))
	s.Contains(err.Error(), "Battle is listed twice")

	after, err := s.svc.Get(s.ctx, userID, guildID)
	s.Require().NoError(err)
	s.Equal(before, after)
}

func (s *CreationServiceTestSuite) TestSubmit_AdvancesAndCanonicalizes() {
	s.allowPersistence()
	s.svc.Start(s.ctx, userID, guildID)
	s.submitThrough(entities.StepArchetype)

	s.now = s.now.Add(time.Minute)
	session, err := s.svc.Submit(s.ctx, userID, guildID, entities.StepArchetype,
		&entities.CreationData{Archetypes: []string{"fremen"}})
	s.Require().NoError(err)
	s.Equal([]string{"Fremen"}, session.Data.Archetypes)
	s.Equal(entities.StepSkills, session.CurrentStep)
	s.Equal(s.now, session.LastUpdated)

	session, err = s.svc.Submit(s.ctx, userID, guildID, entities.StepSkills, &entities.CreationData{
		Skills: map[string]int{"battle": 9, "COMMUNICATE": 7, "discipline": 6, "move": 5, "understand": 4},
	})
	s.Require().NoError(err)
	s.Equal(9, session.Data.Skills["Battle"])
	s.Equal(entities.StepFocuses, session.CurrentStep)
}

func (s *CreationServiceTestSuite) TestSubmit_ReEditDoesNotRewind() {
	s.allowPersistence()
	s.svc.Start(s.ctx, userID, guildID)
	s.submitThrough(entities.StepTalents)

	session, err := s.svc.Submit(s.ctx, userID, guildID, entities.StepName, &entities.CreationData{Name: "Chani Kynes"})
	s.Require().NoError(err)
	s.Equal("Chani Kynes", session.Data.Name)
	s.Equal(entities.StepTalents, session.CurrentStep)
}

func (s *CreationServiceTestSuite) TestSubmit_EarlierStepInvalidated() {
	s.allowPersistence()
	s.svc.Start(s.ctx, userID, guildID)
	s.submitThrough(entities.StepFocuses)

	// Fremen plus Swordmaster takes Battle 9 to 13, past the range
	_, err := s.svc.Submit(s.ctx, userID, guildID, entities.StepArchetype,
		&entities.CreationData{Archetypes: []string{"Fremen", "Swordmaster"}})
	s.Require().NoError(err)

	_, err = s.svc.Submit(s.ctx, userID, guildID, entities.StepFocuses,
		&entities.CreationData{Focuses: map[string][]string{"Battle": {"Knives"}}})
	s.Require().Error(err)
	s.True(dnderr.IsState(err))
	s.Equal(string(entities.StepSkills), dnderr.GetMeta(err)["step"])
}

func (s *CreationServiceTestSuite) TestSubmit_StartingPoolsDefault() {
	s.allowPersistence()
	s.svc.Start(s.ctx, userID, guildID)
	s.submitThrough(entities.StepStartingPools)

	session, err := s.svc.Submit(s.ctx, userID, guildID, entities.StepStartingPools, &entities.CreationData{})
	s.Require().NoError(err)
	s.Require().NotNil(session.Data.Determination)
	s.Equal(1, *session.Data.Determination)
	s.Equal(entities.StepSummary, session.CurrentStep)

	tooMany := 4
	_, err = s.svc.Submit(s.ctx, userID, guildID, entities.StepStartingPools, &entities.CreationData{Determination: &tooMany})
	s.True(dnderr.IsValidation(err))
}

func (s *CreationServiceTestSuite) TestFinalize() {
	s.allowPersistence()
	s.svc.Start(s.ctx, userID, guildID)
	s.submitThrough(entities.StepFinalize)

	s.uuids.EXPECT().New().Return("char-1")

	char, err := s.svc.Finalize(s.ctx, userID, guildID)
	s.Require().NoError(err)
	s.Equal("char-1", char.ID)
	s.Equal(userID, char.OwnerID)
	s.Equal(guildID, char.RealmID)
	s.Equal("Chani", char.Name)
	s.True(char.IsActive())

	// Fremen adds one to Battle, Discipline and Move
	s.Equal(map[string]int{"Battle": 10, "Communicate": 5, "Discipline": 7, "Move": 8, "Understand": 4}, char.Skills)
	s.Equal(8, char.Drives["Faith"])
	s.Equal(entities.CharacterResources{Determination: 1, MaxDetermination: 3}, char.Resources)

	stored, err := s.charRepo.Get(s.ctx, "char-1")
	s.Require().NoError(err)
	s.Equal("Chani", stored.Name)

	_, err = s.svc.Get(s.ctx, userID, guildID)
	s.True(dnderr.IsNotFound(err))

	_, err = s.svc.Finalize(s.ctx, userID, guildID)
	s.True(dnderr.IsNotFound(err))
}

func (s *CreationServiceTestSuite) TestFinalize_Incomplete() {
	s.allowPersistence()
	s.svc.Start(s.ctx, userID, guildID)
	s.submitThrough(entities.StepTalents)

	_, err := s.svc.Finalize(s.ctx, userID, guildID)
	s.Require().Error(err)
	s.True(dnderr.IsValidation(err))
	s.Equal("talents", dnderr.GetMeta(err)[dnderr.MetaField])

	_, err = s.svc.Get(s.ctx, userID, guildID)
	s.NoError(err)
}

func (s *CreationServiceTestSuite) TestCancel_Idempotent() {
	s.allowPersistence()
	s.svc.Start(s.ctx, userID, guildID)

	s.NoError(s.svc.Cancel(s.ctx, userID, guildID))
	s.NoError(s.svc.Cancel(s.ctx, userID, guildID))

	_, err := s.svc.Get(s.ctx, userID, guildID)
	s.True(dnderr.IsNotFound(err))
}

func (s *CreationServiceTestSuite) TestPersistenceFailureIsLogged() {
	s.sessionRepo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	session, err := s.svc.Start(s.ctx, userID, guildID)
	s.Require().NoError(err)
	s.Equal(entities.StepName, session.CurrentStep)

	failures := s.logs.FilterMessage("failed to persist creation session").All()
	s.Require().Len(failures, 1)
	s.Equal(zapcore.ErrorLevel, failures[0].Level)
}

func (s *CreationServiceTestSuite) TestExpiry() {
	s.allowPersistence()
	s.svc.Start(s.ctx, userID, guildID)

	s.now = s.now.Add(2 * time.Hour)
	_, err := s.svc.Get(s.ctx, userID, guildID)
	s.True(dnderr.IsNotFound(err))

	_, err = s.svc.Submit(s.ctx, userID, guildID, entities.StepName, &entities.CreationData{Name: "Chani"})
	s.True(dnderr.IsState(err))
}

func (s *CreationServiceTestSuite) TestCleanupExpired() {
	s.allowPersistence()
	s.svc.Start(s.ctx, "old-user", guildID)

	s.now = s.now.Add(50 * time.Minute)
	s.svc.Start(s.ctx, userID, guildID)

	s.now = s.now.Add(20 * time.Minute)
	s.Equal(1, s.svc.CleanupExpired(s.ctx))

	_, err := s.svc.Get(s.ctx, userID, guildID)
	s.NoError(err)
	_, err = s.svc.Get(s.ctx, "old-user", guildID)
	s.True(dnderr.IsNotFound(err))
}

func (s *CreationServiceTestSuite) TestRestore() {
	fresh := testutils.CreateTestSession(userID, guildID, entities.StepSkills, s.now.Add(-10*time.Minute))
	fresh.Data.Name = "Chani"
	stale := testutils.CreateTestSession("stale", guildID, entities.StepName, s.now.Add(-3*time.Hour))
	done := testutils.CreateTestSession("done", guildID, entities.StepFinalize, s.now)
	done.Completed = true

	s.sessionRepo.EXPECT().List(gomock.Any()).Return([]*entities.CreationSession{fresh, stale, done}, nil)

	restored, err := s.svc.Restore(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, restored)

	session, err := s.svc.Get(s.ctx, userID, guildID)
	s.Require().NoError(err)
	s.Equal("Chani", session.Data.Name)
	s.Equal(entities.StepSkills, session.CurrentStep)
}

func (s *CreationServiceTestSuite) TestRestore_RepositoryError() {
	s.sessionRepo.EXPECT().List(gomock.Any()).Return(nil, errors.New("redis down"))

	_, err := s.svc.Restore(s.ctx)
	s.Error(err)
}

func (s *CreationServiceTestSuite) TestProgress() {
	s.allowPersistence()
	s.svc.Start(s.ctx, userID, guildID)
	s.submitThrough(entities.StepFocuses)

	progress, err := s.svc.Progress(s.ctx, userID, guildID)
	s.Require().NoError(err)
	s.Equal(entities.StepFocuses, progress.Next)
	s.Error(progress.Blocker)
	s.Equal([]entities.CreationStep{
		entities.StepName, entities.StepConcept, entities.StepArchetype, entities.StepSkills,
	}, progress.Completed)
	s.Len(progress.Remaining, len(entities.CreationSteps)-4)
	s.Equal(4*100/len(entities.CreationSteps), progress.Percent)
}

func (s *CreationServiceTestSuite) TestBlendedBuildPicksOnePerArchetype() {
	s.allowPersistence()
	s.svc.Start(s.ctx, userID, guildID)
	s.submitThrough(entities.StepArchetype)

	data := testutils.CompleteCreationData()
	data.Archetypes = []string{"Fremen", "Mentat"}
	data.Talents = []string{"Sandwalker", "Logic Engine"}
	data.Assets = []string{"Crysknife", "Mentat Notebooks"}

	for _, step := range entities.CreationSteps {
		if step.Before(entities.StepArchetype) {
			continue
		}
		if step == entities.StepFinalize {
			break
		}
		_, err := s.svc.Submit(s.ctx, userID, guildID, step, &data)
		s.Require().NoError(err, "step %s", step)
	}

	s.uuids.EXPECT().New().Return("char-2")
	char, err := s.svc.Finalize(s.ctx, userID, guildID)
	s.Require().NoError(err)
	s.Equal([]string{"Fremen", "Mentat"}, char.Archetypes)
	// Discipline 6 + 1 (Fremen) + 1 (Mentat)
	s.Equal(8, char.Skills["Discipline"])
	s.Len(char.Talents, 2)
}
