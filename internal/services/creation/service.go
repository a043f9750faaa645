package creation

//go:generate mockgen -destination=mock/mock_service.go -package=mockcreation -source=service.go

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/KirkDiggler/dune-bot-discord/internal/entities"
	dnderr "github.com/KirkDiggler/dune-bot-discord/internal/errors"
	"github.com/KirkDiggler/dune-bot-discord/internal/keylock"
	"github.com/KirkDiggler/dune-bot-discord/internal/repositories/characters"
	"github.com/KirkDiggler/dune-bot-discord/internal/repositories/sessions"
	"github.com/KirkDiggler/dune-bot-discord/internal/rules"
	"github.com/KirkDiggler/dune-bot-discord/internal/uuid"
)

// DefaultTTL is how long an idle session survives
const DefaultTTL = 24 * time.Hour

// Service runs the step-by-step character builder
type Service interface {
	// Start returns the open session of the user or begins a new one at NAME
	Start(ctx context.Context, userID, guildID string) (*entities.CreationSession, error)

	// Submit merges the payload fields owned by step into the session
	Submit(ctx context.Context, userID, guildID string, step entities.CreationStep, payload *entities.CreationData) (*entities.CreationSession, error)

	// Finalize turns a complete session into a stored character
	Finalize(ctx context.Context, userID, guildID string) (*entities.Character, error)

	// Cancel drops the session; it is not an error when none exists
	Cancel(ctx context.Context, userID, guildID string) error

	// Get returns the open session
	Get(ctx context.Context, userID, guildID string) (*entities.CreationSession, error)

	// Progress summarizes which steps are done
	Progress(ctx context.Context, userID, guildID string) (*Progress, error)

	// CleanupExpired drops idle sessions and returns how many were removed
	CleanupExpired(ctx context.Context) int

	// Restore loads persisted sessions into the working set
	Restore(ctx context.Context) (int, error)
}

// Progress reports where a session stands
type Progress struct {
	Session   *entities.CreationSession
	Completed []entities.CreationStep
	Remaining []entities.CreationStep

	// Next is the earliest step that still fails its check
	Next entities.CreationStep

	// Blocker explains why Next fails, nil once the build is complete
	Blocker error
	Percent int
}

// ServiceConfig holds configuration for the service
type ServiceConfig struct {
	Ruleset       *rules.Ruleset         // Required
	CharacterRepo characters.Repository  // Required
	SessionRepo   sessions.Repository    // Optional, sessions live only in memory when nil
	UUIDGenerator uuid.Generator         // Optional
	TimeProvider  sessions.TimeProvider  // Optional
	TTL           time.Duration          // Optional, defaults to DefaultTTL
	Logger        *zap.Logger            // Optional
}

type service struct {
	ruleset       *rules.Ruleset
	characterRepo characters.Repository
	sessionRepo   sessions.Repository
	uuidGenerator uuid.Generator
	clock         sessions.TimeProvider
	ttl           time.Duration
	logger        *zap.Logger

	locks *keylock.Locker

	mu       sync.RWMutex
	sessions map[string]*entities.CreationSession
}

// NewService creates a new creation service
func NewService(cfg *ServiceConfig) Service {
	if cfg.Ruleset == nil {
		panic("ruleset is required")
	}
	if cfg.CharacterRepo == nil {
		panic("character repository is required")
	}

	svc := &service{
		ruleset:       cfg.Ruleset,
		characterRepo: cfg.CharacterRepo,
		sessionRepo:   cfg.SessionRepo,
		uuidGenerator: cfg.UUIDGenerator,
		clock:         cfg.TimeProvider,
		ttl:           cfg.TTL,
		logger:        cfg.Logger,
		locks:         keylock.New(),
		sessions:      make(map[string]*entities.CreationSession),
	}

	if svc.uuidGenerator == nil {
		svc.uuidGenerator = uuid.NewGoogleUUIDGenerator()
	}
	if svc.clock == nil {
		svc.clock = &sessions.RealTimeProvider{}
	}
	if svc.ttl <= 0 {
		svc.ttl = DefaultTTL
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}

	return svc
}

func (s *service) Start(ctx context.Context, userID, guildID string) (*entities.CreationSession, error) {
	if err := validateKey(userID, guildID); err != nil {
		return nil, err
	}

	key := entities.SessionKey(userID, guildID)
	unlock := s.locks.Lock(key)
	defer unlock()

	now := s.clock.Now()
	if existing := s.active(ctx, key, now); existing != nil {
		return existing.Clone(), nil
	}

	session := &entities.CreationSession{
		UserID:      userID,
		GuildID:     guildID,
		CurrentStep: entities.StepName,
		CreatedAt:   now,
		LastUpdated: now,
	}
	s.store(ctx, session)

	s.logger.Info("character creation started",
		zap.String("user_id", userID),
		zap.String("guild_id", guildID))

	return session.Clone(), nil
}

func (s *service) Submit(ctx context.Context, userID, guildID string, step entities.CreationStep, payload *entities.CreationData) (*entities.CreationSession, error) {
	if err := validateKey(userID, guildID); err != nil {
		return nil, err
	}
	if step.Index() < 0 {
		return nil, dnderr.InvalidArgumentf("unknown creation step '%s'", step)
	}
	if payload == nil {
		payload = &entities.CreationData{}
	}

	key := entities.SessionKey(userID, guildID)
	unlock := s.locks.Lock(key)
	defer unlock()

	now := s.clock.Now()
	session := s.active(ctx, key, now)
	if session == nil {
		return nil, dnderr.State("no active character creation session").
			WithMeta("user_id", userID).
			WithMeta("guild_id", guildID)
	}

	if session.CurrentStep.Before(step) {
		return nil, dnderr.Statef("complete the %s step before %s", session.CurrentStep, step).
			WithMeta("current_step", string(session.CurrentStep)).
			WithMeta("step", string(step))
	}
	for _, prior := range entities.CreationSteps {
		if !prior.Before(step) {
			break
		}
		if err := CanAdvance(s.ruleset, prior, &session.Data); err != nil {
			return nil, dnderr.WrapWithCode(err, dnderr.CodeFailedPrecondition,
				"the "+string(prior)+" step is no longer satisfied").
				WithMeta("step", string(prior))
		}
	}

	candidate := session.Data.Clone()
	if err := s.merge(step, payload, &candidate); err != nil {
		return nil, err
	}
	if err := CanAdvance(s.ruleset, step, &candidate); err != nil {
		return nil, err
	}

	updated := session.Clone()
	updated.Data = candidate
	if next := step.Next(); updated.CurrentStep.Before(next) {
		updated.CurrentStep = next
	}
	updated.LastUpdated = now
	s.store(ctx, updated)

	s.logger.Debug("creation step submitted",
		zap.String("user_id", userID),
		zap.String("guild_id", guildID),
		zap.String("step", string(step)),
		zap.String("current_step", string(updated.CurrentStep)))

	return updated.Clone(), nil
}

// merge copies the payload fields owned by step into data, in canonical
// spelling where the ruleset knows the name.
func (s *service) merge(step entities.CreationStep, payload *entities.CreationData, data *entities.CreationData) error {
	rs := s.ruleset
	switch step {
	case entities.StepName:
		data.Name = strings.TrimSpace(payload.Name)
	case entities.StepConcept:
		data.Concepts = trimAll(payload.Concepts)
	case entities.StepArchetype:
		data.Archetypes = make([]string, 0, len(payload.Archetypes))
		for _, name := range payload.Archetypes {
			if a, ok := rs.Archetype(name); ok {
				name = a.Name
			}
			data.Archetypes = append(data.Archetypes, name)
		}
	case entities.StepSkills:
		skills, err := rs.CanonicalSkills(payload.Skills)
		if err != nil {
			return err
		}
		data.Skills = skills
	case entities.StepFocuses:
		data.Focuses = make(map[string][]string, len(payload.Focuses))
		for skill, list := range payload.Focuses {
			if canon, ok := rs.SkillName(skill); ok {
				skill = canon
			}
			data.Focuses[skill] = append(data.Focuses[skill], trimAll(list)...)
		}
	case entities.StepDrives:
		drives, err := rs.CanonicalDrives(payload.Drives)
		if err != nil {
			return err
		}
		data.Drives = drives
	case entities.StepDriveStatements:
		data.Statements = make(map[string]string, len(payload.Statements))
		for drive, text := range payload.Statements {
			if canon, ok := rs.DriveName(drive); ok {
				drive = canon
			}
			data.Statements[drive] = strings.TrimSpace(text)
		}
	case entities.StepTalents:
		data.Talents = trimAll(payload.Talents)
	case entities.StepAssets:
		data.Assets = trimAll(payload.Assets)
	case entities.StepTraits:
		data.Traits = trimAll(payload.Traits)
	case entities.StepStartingPools:
		d := rs.Determination.Starting
		if payload.Determination != nil {
			d = *payload.Determination
		}
		data.Determination = &d
	}
	return nil
}

func (s *service) Finalize(ctx context.Context, userID, guildID string) (*entities.Character, error) {
	if err := validateKey(userID, guildID); err != nil {
		return nil, err
	}

	key := entities.SessionKey(userID, guildID)
	unlock := s.locks.Lock(key)
	defer unlock()

	now := s.clock.Now()
	session := s.active(ctx, key, now)
	if session == nil {
		return nil, dnderr.NotFound("no character creation session to finalize").
			WithMeta("user_id", userID).
			WithMeta("guild_id", guildID)
	}

	if err := CanAdvance(s.ruleset, entities.StepFinalize, &session.Data); err != nil {
		return nil, err
	}

	char := s.buildCharacter(session, now)
	if err := s.characterRepo.Create(ctx, char); err != nil {
		return nil, dnderr.Wrap(err, "failed to save character")
	}

	s.remove(ctx, session.UserID, session.GuildID)

	s.logger.Info("character created",
		zap.String("user_id", userID),
		zap.String("guild_id", guildID),
		zap.String("character_id", char.ID),
		zap.String("name", char.Name))

	return char, nil
}

func (s *service) buildCharacter(session *entities.CreationSession, now time.Time) *entities.Character {
	data := session.Data.Clone()
	rs := s.ruleset

	return &entities.Character{
		ID:         s.uuidGenerator.New(),
		OwnerID:    session.UserID,
		RealmID:    session.GuildID,
		Name:       data.Name,
		Concepts:   data.Concepts,
		Archetypes: data.Archetypes,
		Skills:     rs.FinalSkills(data.Skills, data.Archetypes),
		Drives:     rs.FinalDrives(data.Drives, data.Archetypes),
		Statements: data.Statements,
		Focuses:    data.Focuses,
		Talents:    data.Talents,
		Assets:     data.Assets,
		Traits:     data.Traits,
		Resources: entities.CharacterResources{
			Determination:    *data.Determination,
			MaxDetermination: rs.Determination.Max,
		},
		Status:    entities.CharacterStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *service) Cancel(ctx context.Context, userID, guildID string) error {
	if err := validateKey(userID, guildID); err != nil {
		return err
	}

	unlock := s.locks.Lock(entities.SessionKey(userID, guildID))
	defer unlock()

	s.remove(ctx, userID, guildID)

	s.logger.Info("character creation cancelled",
		zap.String("user_id", userID),
		zap.String("guild_id", guildID))

	return nil
}

func (s *service) Get(ctx context.Context, userID, guildID string) (*entities.CreationSession, error) {
	if err := validateKey(userID, guildID); err != nil {
		return nil, err
	}

	key := entities.SessionKey(userID, guildID)
	unlock := s.locks.Lock(key)
	defer unlock()

	session := s.active(ctx, key, s.clock.Now())
	if session == nil {
		return nil, dnderr.NotFound("no active character creation session").
			WithMeta("user_id", userID).
			WithMeta("guild_id", guildID)
	}
	return session.Clone(), nil
}

func (s *service) Progress(ctx context.Context, userID, guildID string) (*Progress, error) {
	session, err := s.Get(ctx, userID, guildID)
	if err != nil {
		return nil, err
	}

	next, blocker := FirstIncomplete(s.ruleset, &session.Data)

	progress := &Progress{
		Session: session,
		Next:    next,
		Blocker: blocker,
	}
	for _, step := range entities.CreationSteps {
		if step.Before(next) {
			progress.Completed = append(progress.Completed, step)
		} else {
			progress.Remaining = append(progress.Remaining, step)
		}
	}
	progress.Percent = len(progress.Completed) * 100 / len(entities.CreationSteps)

	return progress, nil
}

func (s *service) CleanupExpired(ctx context.Context) int {
	now := s.clock.Now()

	s.mu.RLock()
	var expired []*entities.CreationSession
	for _, session := range s.sessions {
		if session.IsExpired(now, s.ttl) {
			expired = append(expired, session)
		}
	}
	s.mu.RUnlock()

	removed := 0
	for _, session := range expired {
		unlock := s.locks.Lock(session.Key())
		// Re-check under the key lock; the session may have been touched
		if current := s.lookup(session.Key()); current != nil && current.IsExpired(now, s.ttl) {
			s.remove(ctx, current.UserID, current.GuildID)
			removed++
		}
		unlock()
	}

	if removed > 0 {
		s.logger.Info("expired creation sessions removed", zap.Int("count", removed))
	}
	return removed
}

func (s *service) Restore(ctx context.Context) (int, error) {
	if s.sessionRepo == nil {
		return 0, nil
	}

	stored, err := s.sessionRepo.List(ctx)
	if err != nil {
		return 0, dnderr.Wrap(err, "failed to load creation sessions")
	}

	now := s.clock.Now()
	restored := 0
	for _, session := range stored {
		if session.Completed || session.IsExpired(now, s.ttl) {
			continue
		}

		unlock := s.locks.Lock(session.Key())
		if s.lookup(session.Key()) == nil {
			s.mu.Lock()
			s.sessions[session.Key()] = session.Clone()
			s.mu.Unlock()
			restored++
		}
		unlock()
	}

	s.logger.Info("creation sessions restored",
		zap.Int("restored", restored),
		zap.Int("stored", len(stored)))

	return restored, nil
}

// active returns the working copy for key, dropping it when idle past the
// TTL. Callers hold the key lock.
func (s *service) active(ctx context.Context, key string, now time.Time) *entities.CreationSession {
	session := s.lookup(key)
	if session == nil {
		return nil
	}
	if session.Completed || session.IsExpired(now, s.ttl) {
		s.remove(ctx, session.UserID, session.GuildID)
		return nil
	}
	return session
}

func (s *service) lookup(key string) *entities.CreationSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[key]
}

// store replaces the working copy and writes it through to the repository
func (s *service) store(ctx context.Context, session *entities.CreationSession) {
	s.mu.Lock()
	s.sessions[session.Key()] = session
	s.mu.Unlock()

	if s.sessionRepo == nil {
		return
	}
	if err := s.sessionRepo.Save(ctx, session.Clone()); err != nil {
		s.logger.Error("failed to persist creation session",
			zap.String("user_id", session.UserID),
			zap.String("guild_id", session.GuildID),
			zap.Error(err))
	}
}

func (s *service) remove(ctx context.Context, userID, guildID string) {
	s.mu.Lock()
	delete(s.sessions, entities.SessionKey(userID, guildID))
	s.mu.Unlock()

	if s.sessionRepo == nil {
		return
	}
	if err := s.sessionRepo.Delete(ctx, userID, guildID); err != nil {
		s.logger.Error("failed to delete persisted creation session",
			zap.String("user_id", userID),
			zap.String("guild_id", guildID),
			zap.Error(err))
	}
}

func validateKey(userID, guildID string) error {
	if userID == "" {
		return dnderr.InvalidArgument("user ID is required")
	}
	if guildID == "" {
		return dnderr.InvalidArgument("guild ID is required")
	}
	return nil
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if t := strings.TrimSpace(item); t != "" {
			out = append(out, t)
		}
	}
	return out
}
