package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/getmentor/mentorship-api/config"
	"github.com/getmentor/mentorship-api/internal/cache"
	"github.com/getmentor/mentorship-api/internal/models"
	"github.com/getmentor/mentorship-api/internal/repository/memory"
	"github.com/getmentor/mentorship-api/internal/services"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/stretchr/testify/require"
)

func init() {
	// Initialize logger for tests
	if err := logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}

// testEnv wires every service over one in-memory store
type testEnv struct {
	store      *memory.Store
	storage    *MockFileStorage
	directory  *services.MentorDirectoryService
	ledger     *services.RequestLedgerService
	reviews    *services.ReviewService
	engagement *services.EngagementService
}

func testConfig() *config.Config {
	return &config.Config{
		Engagement: config.EngagementConfig{
			LookupRetries:      2,
			LookupInitialDelay: time.Millisecond,
		},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := testConfig()
	store := memory.NewStore()
	fileStorage := new(MockFileStorage)

	ledger := services.NewRequestLedgerService(store, store, nil, cfg)
	env := &testEnv{
		store:      store,
		storage:    fileStorage,
		directory:  services.NewMentorDirectoryService(store, cache.NewLocalProfileCache(60)),
		ledger:     ledger,
		reviews:    services.NewReviewService(store, services.NewRoleResolver(store), fileStorage, nil, cfg),
		engagement: services.NewEngagementService(ledger, cfg),
	}
	return env
}

// acceptedReview creates a mentor profile, a request from mentee and accepts it
func (e *testEnv) acceptedReview(t *testing.T, mentee, mentor string) *models.ResumeReview {
	t.Helper()
	ctx := context.Background()

	if _, found := e.directory.GetProfile(ctx, mentor); !found {
		_, err := e.directory.CreateProfile(ctx, mentor, []string{"resume"}, 5)
		require.NoError(t, err)
	}

	req, err := e.ledger.CreateRequest(ctx, mentee, mentor, nil, nil)
	require.NoError(t, err)

	res, err := e.ledger.Respond(ctx, mentor, req.ID, true)
	require.NoError(t, err)
	require.NotNil(t, res.Review)
	return res.Review
}

func strPtr(s string) *string {
	return &s
}
