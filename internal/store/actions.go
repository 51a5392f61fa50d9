package store

import (
	"alcyxob/swimtrack/internal/domain"
	"alcyxob/swimtrack/internal/repository"
	"alcyxob/swimtrack/internal/service"
	"alcyxob/swimtrack/internal/stats"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Number of parallel Strava enrichment calls per batch.
const enrichLimit = 4

// Login delegates the credential check to the auth service. Invalid
// credentials return ok=false, never an error; profile hydration happens
// asynchronously through the auth-state observer.
func (s *Store) Login(ctx context.Context, email, password string) (token string, ok bool, err error) {
	token, err = s.auth.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, service.ErrAuthenticationFailed) {
			return "", false, nil
		}
		return "", false, err
	}
	return token, true, nil
}

// Register creates the auth identity and profile. A profile failure after
// the identity succeeded is logged inside the auth service, not surfaced.
func (s *Store) Register(ctx context.Context, name, email, password string, role domain.Role, strava *domain.StravaCredentials) (*domain.Account, error) {
	return s.auth.Register(ctx, name, email, password, role, strava)
}

// FetchUserProfile hydrates the session after an auth event. A missing
// profile is synthesized and persisted; a lookup error falls back to an
// in-memory-only default so the dashboard can still render degraded.
// Strava sessions load detached, with their own error logging, so a slow or
// failing import never blocks hydration.
func (s *Store) FetchUserProfile(ctx context.Context, accountID, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		user = defaultProfile(email)
		if _, createErr := s.userRepo.Create(ctx, user); createErr != nil {
			s.log.Warn().Err(createErr).Str("email", email).Msg("could not persist synthesized profile")
		}
	default:
		s.log.Error().Err(err).Str("email", email).Str("account", accountID).Msg("profile lookup failed, using in-memory default")
		user = defaultProfile(email)
	}
	s.currentUser = user

	if user.Admin || user.IsCoach() {
		s.loadUsersLocked(ctx)
	}
	s.loadGoalsLocked(ctx)
	s.loadSwimsLocked(ctx)

	go func() {
		if err := s.LoadStravaSessions(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn().Err(err).Str("email", email).Msg("background strava session load failed")
		}
	}()

	s.loading = false
	s.bump()
}

// defaultProfile builds the fallback profile for an identity with no
// profile document: name from the email local part, plain swimmer, no admin.
func defaultProfile(email string) *domain.User {
	name := email
	if at := strings.Index(email, "@"); at > 0 {
		name = email[:at]
	}
	return &domain.User{
		Name:  name,
		Email: email,
		Role:  domain.RoleSwimmer,
	}
}

// LoadUsers refreshes the user roster. Only meaningful for admin and coach
// sessions; read failures degrade to the stale roster.
func (s *Store) LoadUsers(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadUsersLocked(ctx)
	s.bump()
}

func (s *Store) loadUsersLocked(ctx context.Context) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("loading user roster failed")
		return
	}
	s.roster = users
}

// LoadSwims replaces the in-memory swim list with a fresh role-scoped
// fetch: admins see everything, coaches their linked swimmers, everyone
// else their own records. Derived metrics are backfilled where absent, and
// the most recent record's attributes become the active filter so the
// dashboard opens pre-filtered to the user's latest context.
func (s *Store) LoadSwims(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadSwimsLocked(ctx)
	s.bump()
}

func (s *Store) loadSwimsLocked(ctx context.Context) {
	user := s.currentUser
	if user == nil {
		return
	}

	var swims []domain.Swim
	var err error
	switch {
	case user.Admin:
		swims, err = s.swimRepo.GetAll(ctx)
	case user.IsCoach():
		swimmers, serr := s.userRepo.GetSwimmersByCoachID(ctx, user.ID)
		if serr != nil {
			s.log.Error().Err(serr).Str("coach", user.ID.Hex()).Msg("loading linked swimmers failed")
			return
		}
		ids := make([]string, 0, len(swimmers))
		for _, sw := range swimmers {
			ids = append(ids, sw.ID.Hex())
		}
		swims, err = s.swimRepo.GetByUserIDs(ctx, ids)
	default:
		swims, err = s.swimRepo.GetByUserIDs(ctx, []string{user.ID.Hex()})
	}
	if err != nil {
		s.log.Error().Err(err).Msg("loading swims failed")
		return
	}

	// Idempotent backfill: only fills derived fields that are absent.
	for i := range swims {
		swims[i].ComputeDerivedMetrics()
	}
	s.swims = swims

	if len(swims) > 0 {
		s.filterFromLatestLocked(&swims[0])
	}
}

// filterFromLatestLocked copies the latest record's attributes into the
// active filter. Deliberate default, not a bug.
func (s *Store) filterFromLatestLocked(latest *domain.Swim) {
	stroke := latest.Stroke
	distance := latest.Distance
	pool := latest.PoolLength
	s.filter.Stroke = &stroke
	s.filter.Distance = &distance
	s.filter.PoolLength = &pool
	s.filter.PaceDistance = latest.PaceDistance
	if len(latest.Gear) == 0 {
		s.filter.Gear = []domain.Gear{domain.GearNone}
	} else {
		s.filter.Gear = append([]domain.Gear(nil), latest.Gear...)
	}
}

// LoadStravaSessions loads the cached third-party sessions and, when both
// an access token and a max heart rate are available, enriches each one
// with a heart-rate-zone breakdown. Enrichment fans out with bounded
// concurrency; a failure on one session keeps that session unenriched and
// never aborts the batch.
func (s *Store) LoadStravaSessions(ctx context.Context) error {
	s.mu.Lock()
	user := s.currentUser
	s.mu.Unlock()
	if user == nil {
		return nil
	}

	sessions, err := s.sessionRepo.GetByEmail(ctx, user.Email)
	if err != nil {
		return err
	}

	maxHr := user.MaxHeartRate(time.Now())
	if user.HasStravaToken() && maxHr != nil {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(enrichLimit)
		for i := range sessions {
			i := i
			g.Go(func() error {
				samples, err := s.strava.HRSamples(gctx, user, sessions[i].ActivityID)
				if err != nil {
					s.log.Warn().Err(err).Int64("activity", sessions[i].ActivityID).Msg("zone enrichment failed, keeping session unenriched")
					return nil
				}
				sessions[i].ZoneTimes = stats.HRZoneTimes(samples, *maxHr, stats.DefaultZones)
				return nil
			})
		}
		_ = g.Wait()
	}

	s.mu.Lock()
	s.sessions = sessions
	s.bump()
	s.mu.Unlock()
	return nil
}

// SyncStravaSessions imports swim activities from Strava into the cache,
// then reloads the session list.
func (s *Store) SyncStravaSessions(ctx context.Context) (int, error) {
	s.mu.Lock()
	user := s.currentUser
	s.mu.Unlock()
	if user == nil {
		return 0, errors.New("no authenticated session")
	}

	imported, err := s.strava.SyncSessions(ctx, user)
	if err != nil {
		return imported, err
	}
	return imported, s.LoadStravaSessions(ctx)
}

// AddSwim computes derived metrics, persists the record and reloads the
// canonical list. The write error propagates to the caller; the in-memory
// list is never patched directly.
func (s *Store) AddSwim(ctx context.Context, swim *domain.Swim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if swim.UserID == "" && s.currentUser != nil {
		swim.UserID = s.currentUser.ID.Hex()
	}
	if swim.Date.IsZero() {
		swim.Date = time.Now().UTC()
	}
	swim.ComputeDerivedMetrics()

	if _, err := s.swimRepo.Create(ctx, swim); err != nil {
		return err
	}
	s.loadSwimsLocked(ctx)
	s.bump()
	return nil
}

// UpdateSwim applies a partial edit and reloads. Derived metrics already on
// the record are kept as-is. Last write wins; concurrent edits are not
// detected.
func (s *Store) UpdateSwim(ctx context.Context, id uuid.UUID, patch domain.SwimPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	swim, err := s.swimRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	patch.Apply(swim)

	if err := s.swimRepo.Update(ctx, swim); err != nil {
		return err
	}
	s.loadSwimsLocked(ctx)
	s.bump()
	return nil
}

// DeleteSwim removes a record by id and reloads.
func (s *Store) DeleteSwim(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.swimRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.loadSwimsLocked(ctx)
	s.bump()
	return nil
}

// LoadGoalTimes refreshes the user's goal times.
func (s *Store) LoadGoalTimes(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadGoalsLocked(ctx)
	s.bump()
}

func (s *Store) loadGoalsLocked(ctx context.Context) {
	user := s.currentUser
	if user == nil {
		return
	}
	goals, err := s.goalRepo.GetByUserID(ctx, user.ID.Hex())
	if err != nil {
		s.log.Error().Err(err).Msg("loading goal times failed")
		return
	}
	s.goals = goals
}

// AddGoalTime persists a goal time and reloads the list.
func (s *Store) AddGoalTime(ctx context.Context, goal *domain.GoalTime) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if goal.UserID == "" && s.currentUser != nil {
		goal.UserID = s.currentUser.ID.Hex()
	}
	if _, err := s.goalRepo.Create(ctx, goal); err != nil {
		return err
	}
	s.loadGoalsLocked(ctx)
	s.bump()
	return nil
}

// DeleteGoalTime removes a goal time and reloads the list.
func (s *Store) DeleteGoalTime(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.goalRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.loadGoalsLocked(ctx)
	s.bump()
	return nil
}

// GoalFor returns the goal time matching the given swim parameters, used
// for target-time scaling when logging new swims. Nil when none matches.
func (s *Store) GoalFor(distance int, stroke domain.Stroke, gear []domain.Gear, pool domain.PoolLength) *domain.GoalTime {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.goals {
		if s.goals[i].Matches(distance, stroke, gear, pool) {
			return &s.goals[i]
		}
	}
	return nil
}

// ApplyFilters merges a partial filter update into the active filter.
// Pure in-memory state change, no backend I/O.
func (s *Store) ApplyFilters(patch domain.FilterPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	patch.Apply(&s.filter)
	s.bump()
}

// ClearFilters resets the filter and display preferences to defaults.
func (s *Store) ClearFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = domain.Filter{SortOrder: domain.SortByDate}
	s.bump()
}
