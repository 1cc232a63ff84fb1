package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/c4t-hub/botcamp-hub/internal/domain/cohort"
	"github.com/c4t-hub/botcamp-hub/internal/domain/shared"
	"github.com/c4t-hub/botcamp-hub/internal/infrastructure/persistence/postgres"
	"github.com/c4t-hub/botcamp-hub/internal/interface/http/handlers"
	"github.com/c4t-hub/botcamp-hub/pkg/timeutil"
)

// fakeRegistry is an in-memory cohort.Registry for handler tests.
type fakeRegistry struct {
	guildID shared.GuildID
}

func (f *fakeRegistry) ActiveGuild(ctx context.Context) (shared.GuildID, error) {
	if f.guildID == 0 {
		return 0, shared.ErrNoActiveCohort
	}
	return f.guildID, nil
}

func (f *fakeRegistry) SetActiveGuild(ctx context.Context, guildID shared.GuildID) error {
	f.guildID = guildID
	return nil
}

// fakeCohortRepo serves one cohort's settings.
type fakeCohortRepo struct {
	cohort *cohort.Cohort
}

func (f *fakeCohortRepo) Get(ctx context.Context, guildID shared.GuildID) (*cohort.Cohort, error) {
	if f.cohort == nil || f.cohort.GuildID != guildID {
		return nil, shared.ErrCohortNotFound
	}
	return f.cohort, nil
}

func (f *fakeCohortRepo) Save(ctx context.Context, c *cohort.Cohort) error {
	f.cohort = c
	return nil
}

// fakePoolHealth returns a fixed database health report.
type fakePoolHealth struct {
	status *postgres.HealthStatus
}

func (f *fakePoolHealth) Health(ctx context.Context) (*postgres.HealthStatus, error) {
	return f.status, nil
}

func newTestServer(t *testing.T, config Config, deps Dependencies) *Server {
	t.Helper()
	config.Host = "127.0.0.1"
	config.RateLimitPerMinute = 0
	return NewServer(config, deps)
}

func doRequest(s *Server, method, target string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint_DefaultResponse(t *testing.T) {
	s := newTestServer(t, DefaultConfig(), Dependencies{})

	rec := doRequest(s, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestHealthEndpoint_FailingCheckYields503(t *testing.T) {
	checker := handlers.NewCompositeHealthChecker("test")
	checker.AddCheck("database", func(ctx context.Context) error {
		return assert.AnError
	})

	s := newTestServer(t, DefaultConfig(), Dependencies{HealthChecker: checker})

	rec := doRequest(s, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "database")
}

func TestStatsEndpoint_NoActiveCohort(t *testing.T) {
	s := newTestServer(t, DefaultConfig(), Dependencies{Registry: &fakeRegistry{}})

	rec := doRequest(s, http.MethodGet, "/api/v1/stats", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "no_active_cohort")
}

func TestStatsEndpoint_ReportsCohortDayAndPoolHealth(t *testing.T) {
	c, err := cohort.New(42, timeutil.StartOfDay(timeutil.Now().AddDate(0, 0, -2)))
	require.NoError(t, err)
	require.NoError(t, c.MarkInitialized(99))

	s := newTestServer(t, DefaultConfig(), Dependencies{
		Registry:   &fakeRegistry{guildID: 42},
		CohortRepo: &fakeCohortRepo{cohort: c},
		DB: &fakePoolHealth{status: &postgres.HealthStatus{
			Healthy:     true,
			PingLatency: 3 * time.Millisecond,
			TotalConns:  4,
			IdleConns:   2,
		}},
	})

	rec := doRequest(s, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))

	cohortStats, ok := stats["cohort"].(map[string]interface{})
	require.True(t, ok)
	// Started two days ago, so today is day 3.
	assert.EqualValues(t, 3, cohortStats["day"])
	assert.Equal(t, true, cohortStats["initialized"])

	dbStats, ok := stats["database"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, dbStats["healthy"])
	assert.EqualValues(t, 4, dbStats["total_conns"])
}

func TestLeaderboardEndpoint_NotConfigured(t *testing.T) {
	s := newTestServer(t, DefaultConfig(), Dependencies{Registry: &fakeRegistry{guildID: 42}})

	rec := doRequest(s, http.MethodGet, "/api/v1/leaderboard", nil)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestAdminRegistry_RequiresToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sesame"), bcrypt.MinCost)
	require.NoError(t, err)

	config := DefaultConfig()
	config.AdminTokenHash = string(hash)

	registry := &fakeRegistry{guildID: 42}
	s := newTestServer(t, config, Dependencies{Registry: registry})

	// No token
	rec := doRequest(s, http.MethodGet, "/admin/registry", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong token
	rec = doRequest(s, http.MethodGet, "/admin/registry", map[string]string{
		"Authorization": "Bearer wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Correct token
	rec = doRequest(s, http.MethodGet, "/admin/registry", map[string]string{
		"Authorization": "Bearer sesame",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestAdminEndpoints_DisabledWithoutHash(t *testing.T) {
	s := newTestServer(t, DefaultConfig(), Dependencies{Registry: &fakeRegistry{guildID: 42}})

	rec := doRequest(s, http.MethodGet, "/admin/registry", map[string]string{
		"Authorization": "Bearer anything",
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"))
}
