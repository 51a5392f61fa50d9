package store

import (
	"alcyxob/swimtrack/internal/domain"
	"alcyxob/swimtrack/internal/repository"
	"alcyxob/swimtrack/internal/repository/postgres"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fakeUserRepo is an in-memory stand-in for the profile document store.
type fakeUserRepo struct {
	byEmail map[string]*domain.User
	created []*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	f.byEmail[user.Email] = user
	f.created = append(f.created, user)
	return user.ID, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	for _, user := range f.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, user := range f.byEmail {
		out = append(out, *user)
	}
	return out, nil
}

func (f *fakeUserRepo) GetSwimmersByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	var out []domain.User
	for _, user := range f.byEmail {
		for _, id := range user.CoachIDs {
			if id == coachID {
				out = append(out, *user)
			}
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) UpdateStrava(ctx context.Context, id primitive.ObjectID, creds *domain.StravaCredentials) error {
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	for email, user := range f.byEmail {
		if user.ID == id {
			delete(f.byEmail, email)
			return nil
		}
	}
	return repository.ErrNotFound
}

type testEnv struct {
	store    *Store
	userRepo *fakeUserRepo
	swimRepo repository.SwimRepository
	goalRepo repository.GoalRepository
	user     *domain.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(db))

	userRepo := newFakeUserRepo()
	swimRepo := postgres.NewSwimRepository(db)
	goalRepo := postgres.NewGoalRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)

	st := New(Deps{
		UserRepo:    userRepo,
		SwimRepo:    swimRepo,
		GoalRepo:    goalRepo,
		SessionRepo: sessionRepo,
		Log:         zerolog.Nop(),
	})

	user := &domain.User{
		ID:    primitive.NewObjectID(),
		Name:  "ada",
		Email: "ada@example.com",
		Role:  domain.RoleSwimmer,
	}
	userRepo.byEmail[user.Email] = user

	return &testEnv{store: st, userRepo: userRepo, swimRepo: swimRepo, goalRepo: goalRepo, user: user}
}

// hydrate runs the same profile fetch the auth observer triggers.
func (e *testEnv) hydrate(t *testing.T) {
	t.Helper()
	e.store.FetchUserProfile(context.Background(), uuid.NewString(), e.user.Email)
}

func fptr(v float64) *float64 { return &v }

func seedSwim(t *testing.T, repo repository.SwimRepository, userID string, daysAgo int, duration float64) domain.Swim {
	t.Helper()
	swim := domain.Swim{
		UserID:     userID,
		Date:       time.Now().UTC().AddDate(0, 0, -daysAgo),
		Distance:   100,
		Duration:   duration,
		Stroke:     domain.StrokeFreestyle,
		PoolLength: domain.PoolShort,
	}
	_, err := repo.Create(context.Background(), &swim)
	require.NoError(t, err)
	return swim
}

func TestFetchUserProfileSynthesizesMissingProfile(t *testing.T) {
	env := newTestEnv(t)
	delete(env.userRepo.byEmail, env.user.Email)

	env.store.FetchUserProfile(context.Background(), uuid.NewString(), "new.swimmer@example.com")

	current := env.store.CurrentUser()
	require.NotNil(t, current)
	assert.Equal(t, "new.swimmer", current.Name)
	assert.Equal(t, domain.RoleSwimmer, current.Role)
	assert.False(t, current.Admin)

	// The synthesized profile must also land in the backend.
	require.Len(t, env.userRepo.created, 1)
	assert.Equal(t, "new.swimmer@example.com", env.userRepo.created[0].Email)

	assert.False(t, env.store.Loading())
}

func TestAddSwimComputesAndReloads(t *testing.T) {
	env := newTestEnv(t)
	env.hydrate(t)

	swim := &domain.Swim{
		Distance:   100,
		Duration:   60,
		Stroke:     domain.StrokeFreestyle,
		PoolLength: domain.PoolShort,
		StrokeRate: fptr(30),
	}
	require.NoError(t, env.store.AddSwim(context.Background(), swim))

	swims := env.store.UserSwims()
	require.Len(t, swims, 1)
	assert.Equal(t, env.user.ID.Hex(), swims[0].UserID)

	// Derived metrics computed once at creation and identical after reload.
	require.NotNil(t, swims[0].Velocity)
	assert.InDelta(t, 1.667, *swims[0].Velocity, 0.001)
	require.NotNil(t, swims[0].StrokeIndex)
	assert.InDelta(t, 5.556, *swims[0].StrokeIndex, 0.001)
}

func TestWritesReloadTheCanonicalList(t *testing.T) {
	env := newTestEnv(t)
	env.hydrate(t)

	// A record written behind the store's back becomes visible after the
	// next write, because every write replaces the in-memory list with a
	// fresh fetch instead of patching it.
	seedSwim(t, env.swimRepo, env.user.ID.Hex(), 5, 75)

	swim := &domain.Swim{
		Distance:   100,
		Duration:   62,
		Stroke:     domain.StrokeFreestyle,
		PoolLength: domain.PoolShort,
	}
	require.NoError(t, env.store.AddSwim(context.Background(), swim))

	assert.Len(t, env.store.UserSwims(), 2)
}

func TestLoadSwimsSeedsFilterFromLatest(t *testing.T) {
	env := newTestEnv(t)

	seedSwim(t, env.swimRepo, env.user.ID.Hex(), 10, 70)
	latest := domain.Swim{
		UserID:     env.user.ID.Hex(),
		Date:       time.Now().UTC(),
		Distance:   200,
		Duration:   150,
		Stroke:     domain.StrokeButterfly,
		Gear:       []domain.Gear{domain.GearFins},
		PoolLength: domain.PoolLong,
	}
	_, err := env.swimRepo.Create(context.Background(), &latest)
	require.NoError(t, err)

	env.hydrate(t)

	filter := env.store.Filter()
	require.NotNil(t, filter.Stroke)
	assert.Equal(t, domain.StrokeButterfly, *filter.Stroke)
	require.NotNil(t, filter.Distance)
	assert.Equal(t, 200, *filter.Distance)
	require.NotNil(t, filter.PoolLength)
	assert.Equal(t, domain.PoolLong, *filter.PoolLength)
	assert.Equal(t, []domain.Gear{domain.GearFins}, filter.Gear)
}

func TestLoadSwimsFilterUsesNoGearSentinel(t *testing.T) {
	env := newTestEnv(t)
	seedSwim(t, env.swimRepo, env.user.ID.Hex(), 0, 60)

	env.hydrate(t)

	assert.Equal(t, []domain.Gear{domain.GearNone}, env.store.Filter().Gear)
}

func TestUpdateSwimNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.hydrate(t)

	duration := 59.0
	err := env.store.UpdateSwim(context.Background(), uuid.New(), domain.SwimPatch{Duration: &duration})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAverageAndSDRequiresCompleteFilter(t *testing.T) {
	env := newTestEnv(t)
	seedSwim(t, env.swimRepo, env.user.ID.Hex(), 1, 60)
	seedSwim(t, env.swimRepo, env.user.ID.Hex(), 2, 62)
	env.hydrate(t)

	// Hydration seeded a complete filter from the latest record.
	summary := env.store.AverageAndSD()
	require.NotNil(t, summary)
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 61.0, summary.Average, 1e-9)

	// Dropping gear makes the filter incomplete: no statistics.
	env.store.ApplyFilters(domain.FilterPatch{Gear: []domain.Gear{}})
	assert.Nil(t, env.store.AverageAndSD())
}

func TestOutlierSwims(t *testing.T) {
	env := newTestEnv(t)

	// Historical population around 100s, latest at 120s.
	for i, d := range []float64{100, 101, 99, 100, 102} {
		seedSwim(t, env.swimRepo, env.user.ID.Hex(), i+1, d)
	}
	seedSwim(t, env.swimRepo, env.user.ID.Hex(), 0, 120)
	env.hydrate(t)

	outliers := env.store.OutlierSwims()
	require.Len(t, outliers, 1)
	assert.Equal(t, 120.0, outliers[0].Duration)
}

func TestOutlierSwimsNoneWithinBand(t *testing.T) {
	env := newTestEnv(t)

	for i, d := range []float64{100, 101, 99, 100, 102} {
		seedSwim(t, env.swimRepo, env.user.ID.Hex(), i+1, d)
	}
	seedSwim(t, env.swimRepo, env.user.ID.Hex(), 0, 101)
	env.hydrate(t)

	assert.Empty(t, env.store.OutlierSwims())
}

func TestAchievementZoneBoundaries(t *testing.T) {
	env := newTestEnv(t)

	target := 100.0
	// +0.85% deviation sits inside the first band (boundary inclusive),
	// +0.86% falls into the second.
	for i, duration := range []float64{100.85, 100.86} {
		swim := domain.Swim{
			UserID:     env.user.ID.Hex(),
			Date:       time.Now().UTC().AddDate(0, 0, -i),
			Distance:   100,
			Duration:   duration,
			TargetTime: &target,
			Stroke:     domain.StrokeFreestyle,
			PoolLength: domain.PoolShort,
		}
		_, err := env.swimRepo.Create(context.Background(), &swim)
		require.NoError(t, err)
	}
	env.hydrate(t)

	zones := env.store.AchievementZones()
	require.Len(t, zones, 2)
	assert.Equal(t, "≤0.85%", zones[0].Label)
	assert.Equal(t, 1, zones[0].Count)
	assert.InDelta(t, 50.0, zones[0].Percent, 1e-9)
	assert.Equal(t, "≤1.5%", zones[1].Label)
	assert.Equal(t, 1, zones[1].Count)
}

func TestGoalForMatching(t *testing.T) {
	env := newTestEnv(t)
	env.hydrate(t)

	goal := &domain.GoalTime{
		Distance:   100,
		Stroke:     domain.StrokeFreestyle,
		Gear:       []domain.Gear{domain.GearFins},
		PoolLength: domain.PoolShort,
		TargetTime: 58,
	}
	require.NoError(t, env.store.AddGoalTime(context.Background(), goal))

	found := env.store.GoalFor(100, domain.StrokeFreestyle, []domain.Gear{domain.GearFins}, domain.PoolShort)
	require.NotNil(t, found)
	assert.Equal(t, 58.0, found.TargetTime)

	assert.Nil(t, env.store.GoalFor(100, domain.StrokeFreestyle, nil, domain.PoolShort), "gear sets must match exactly")
	assert.Nil(t, env.store.GoalFor(200, domain.StrokeFreestyle, []domain.Gear{domain.GearFins}, domain.PoolShort))
}

func TestApplyFiltersInvalidatesMemoizedViews(t *testing.T) {
	env := newTestEnv(t)
	seedSwim(t, env.swimRepo, env.user.ID.Hex(), 1, 60)
	latest := domain.Swim{
		UserID:     env.user.ID.Hex(),
		Date:       time.Now().UTC(),
		Distance:   100,
		Duration:   65,
		Stroke:     domain.StrokeBackstroke,
		PoolLength: domain.PoolShort,
	}
	_, err := env.swimRepo.Create(context.Background(), &latest)
	require.NoError(t, err)
	env.hydrate(t)

	// Filter seeded to backstroke from the latest record.
	require.Len(t, env.store.FilteredSwims(), 1)

	stroke := domain.StrokeFreestyle
	env.store.ApplyFilters(domain.FilterPatch{Stroke: &stroke})
	filtered := env.store.FilteredSwims()
	require.Len(t, filtered, 1)
	assert.Equal(t, domain.StrokeFreestyle, filtered[0].Stroke)
}

func TestSortOrder(t *testing.T) {
	env := newTestEnv(t)
	seedSwim(t, env.swimRepo, env.user.ID.Hex(), 2, 70)
	seedSwim(t, env.swimRepo, env.user.ID.Hex(), 1, 50)
	seedSwim(t, env.swimRepo, env.user.ID.Hex(), 0, 60)
	env.hydrate(t)

	byDate := env.store.FilteredSwims()
	require.Len(t, byDate, 3)
	assert.Equal(t, 60.0, byDate[0].Duration, "newest first by default")

	order := domain.SortByDuration
	env.store.ApplyFilters(domain.FilterPatch{SortOrder: &order})
	byDuration := env.store.FilteredSwims()
	assert.Equal(t, 50.0, byDuration[0].Duration, "fastest first")
}

func TestCoachSeesLinkedSwimmerRecords(t *testing.T) {
	env := newTestEnv(t)

	coach := &domain.User{
		ID:    primitive.NewObjectID(),
		Name:  "coach",
		Email: "coach@example.com",
		Role:  domain.RoleCoach,
	}
	env.userRepo.byEmail[coach.Email] = coach
	env.user.CoachIDs = []primitive.ObjectID{coach.ID}

	stranger := &domain.User{
		ID:    primitive.NewObjectID(),
		Name:  "other",
		Email: "other@example.com",
		Role:  domain.RoleSwimmer,
	}
	env.userRepo.byEmail[stranger.Email] = stranger

	seedSwim(t, env.swimRepo, env.user.ID.Hex(), 1, 60)
	seedSwim(t, env.swimRepo, stranger.ID.Hex(), 1, 61)

	env.store.FetchUserProfile(context.Background(), uuid.NewString(), coach.Email)

	swims := env.store.UserSwims()
	require.Len(t, swims, 1)
	assert.Equal(t, env.user.ID.Hex(), swims[0].UserID)
}

func TestClearFiltersResetsToDefaults(t *testing.T) {
	env := newTestEnv(t)
	seedSwim(t, env.swimRepo, env.user.ID.Hex(), 0, 60)
	env.hydrate(t)

	require.NotNil(t, env.store.Filter().Stroke)

	env.store.ClearFilters()
	filter := env.store.Filter()
	assert.Nil(t, filter.Stroke)
	assert.Nil(t, filter.Distance)
	assert.Empty(t, filter.Gear)
	assert.Equal(t, domain.SortByDate, filter.SortOrder)
}

func TestStrokeDistribution(t *testing.T) {
	env := newTestEnv(t)
	for i, stroke := range []domain.Stroke{domain.StrokeFreestyle, domain.StrokeFreestyle, domain.StrokeButterfly} {
		swim := domain.Swim{
			UserID:     env.user.ID.Hex(),
			Date:       time.Now().UTC().AddDate(0, 0, -i),
			Distance:   100,
			Duration:   60,
			Stroke:     stroke,
			PoolLength: domain.PoolShort,
		}
		_, err := env.swimRepo.Create(context.Background(), &swim)
		require.NoError(t, err)
	}
	env.hydrate(t)

	dist := env.store.StrokeDistribution()
	require.Len(t, dist, 2)
	assert.Equal(t, domain.StrokeFreestyle, dist[0].Stroke)
	assert.Equal(t, 2, dist[0].Count)
	assert.Equal(t, domain.StrokeButterfly, dist[1].Stroke)
	assert.Equal(t, 1, dist[1].Count)
}

func TestVelocityDistanceGrouping(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct {
		distance int
		duration float64
	}{
		{100, 60}, {100, 64}, {200, 130},
	} {
		swim := domain.Swim{
			UserID:     env.user.ID.Hex(),
			Date:       time.Now().UTC(),
			Distance:   tc.distance,
			Duration:   tc.duration,
			Stroke:     domain.StrokeFreestyle,
			PoolLength: domain.PoolShort,
		}
		_, err := env.swimRepo.Create(context.Background(), &swim)
		require.NoError(t, err)
	}
	env.hydrate(t)

	series := env.store.VelocityDistanceData()
	require.Len(t, series, 1, "same swimmer, stroke, gear and pool collapse into one series")
	require.Len(t, series[0].Points, 2)
	assert.Equal(t, 100.0, series[0].Points[0].X)
	// Mean of 100/60 and 100/64.
	assert.InDelta(t, (100.0/60+100.0/64)/2, series[0].Points[0].Y, 1e-9)
	assert.Equal(t, 200.0, series[0].Points[1].X)
	assert.InDelta(t, 200.0/130, series[0].Points[1].Y, 1e-9)
}

func TestLoadSwimsBackfillsDerivedMetrics(t *testing.T) {
	env := newTestEnv(t)

	// Row written without derived fields, as an importer would.
	raw := domain.Swim{
		UserID:     env.user.ID.Hex(),
		Date:       time.Now().UTC(),
		Distance:   100,
		Duration:   60,
		Stroke:     domain.StrokeFreestyle,
		PoolLength: domain.PoolShort,
		StrokeRate: fptr(30),
		HeartRate:  fptr(150),
	}
	_, err := env.swimRepo.Create(context.Background(), &raw)
	require.NoError(t, err)

	env.hydrate(t)

	swims := env.store.UserSwims()
	require.Len(t, swims, 1)
	require.NotNil(t, swims[0].Velocity)
	assert.InDelta(t, 1.667, *swims[0].Velocity, 0.001)
	require.NotNil(t, swims[0].StrokeLength)
	assert.InDelta(t, 3.333, *swims[0].StrokeLength, 0.001)
	require.NotNil(t, swims[0].StrokeIndex)
	assert.InDelta(t, 5.556, *swims[0].StrokeIndex, 0.001)
	require.NotNil(t, swims[0].IERatio)
	assert.InDelta(t, 27.0, *swims[0].IERatio, 0.001)
}

func TestSDChartData(t *testing.T) {
	env := newTestEnv(t)
	for i, d := range []float64{60, 62, 64} {
		seedSwim(t, env.swimRepo, env.user.ID.Hex(), i, d)
	}
	env.hydrate(t)

	chart := env.store.SDChartData()
	require.NotNil(t, chart)
	require.Len(t, chart.Points, 3)
	assert.InDelta(t, 62.0, chart.Mean, 1e-9)
	assert.InDelta(t, chart.Mean+2*2, chart.Upper, 1e-9)
	assert.InDelta(t, chart.Mean-2*2, chart.Lower, 1e-9)
}

func TestSubscribeNotifiesOnChange(t *testing.T) {
	env := newTestEnv(t)

	notified := make(chan struct{}, 8)
	env.store.Subscribe(func() { notified <- struct{}{} })

	env.store.ApplyFilters(domain.FilterPatch{})

	select {
	case <-notified:
	case <-time.After(2 * time.Second):
		t.Fatal("listener was not notified")
	}
}
