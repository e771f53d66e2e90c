//go:build integration
// +build integration

package integration_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/tejusbharadwaj/clockfeed/internal/clock"
	"github.com/tejusbharadwaj/clockfeed/internal/dashboard"
	server "github.com/tejusbharadwaj/clockfeed/internal/grpc"
	"github.com/tejusbharadwaj/clockfeed/internal/journal"
	"github.com/tejusbharadwaj/clockfeed/internal/loader"
	"github.com/tejusbharadwaj/clockfeed/internal/metrics"
	"github.com/tejusbharadwaj/clockfeed/internal/models"
)

const bufSize = 1024 * 1024

type testEnv struct {
	client  *server.Client
	board   *dashboard.Board
	repo    *journal.SQLRepo
	metrics *metrics.Metrics
	hits    *atomic.Int32
}

func setupMockAPIServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":1,"name":"Leanne Graham"},{"id":2,"name":"Ervin Howell"}]`)
	})
	mux.HandleFunc("/albums", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "upstream down", http.StatusBadGateway)
	})
	mux.HandleFunc("/movies", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("apikey") != "secret" {
			fmt.Fprint(w, `{"Response":"False","Error":"Invalid API key!"}`)
			return
		}
		fmt.Fprint(w, `{"Search":[{"Title":"Guardians of the Galaxy"}],"totalResults":"1","Response":"True"}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func setupTestEnvironment(t *testing.T, rps float64, burst int) *testEnv {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	repo, err := journal.Open(journal.DriverSQLite, filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	var hits atomic.Int32
	api := setupMockAPIServer(t, &hits)
	m := metrics.New()

	board := dashboard.New(logger)
	t.Cleanup(board.Close)

	for _, cfg := range []clock.Config{
		{Country: "Italy", Timezone: "Europe/Rome", Locale: "it-IT", Visible: true},
		{Country: "USA", Timezone: "America/New_York", Locale: "en-US", Visible: true},
	} {
		c, err := clock.Start(cfg, clock.WithLogger(logger), clock.WithMetrics(m))
		require.NoError(t, err)
		board.AddClock(c)
	}

	l := loader.New(loader.WithLogger(logger), loader.WithMetrics(m), loader.WithJournal(repo))
	for _, src := range []loader.Source{
		{Name: "users", Endpoint: api.URL + "/users"},
		{Name: "albums", Endpoint: api.URL + "/albums"},
		{Name: "movies", Endpoint: api.URL + "/movies", Query: map[string]string{"s": "Guardians"}, APIKey: "secret", ItemsField: "Search", TotalField: "totalResults"},
	} {
		board.AddCollection(l.Load(context.Background(), src), "name")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, board.Wait(ctx))

	lis := bufconn.Listen(bufSize)
	srv, _, err := server.SetupServer(board, server.ServerConfig{
		CacheSize:      100,
		RateLimit:      rps,
		RateLimitBurst: burst,
		Logger:         logger,
		Metrics:        m,
	})
	require.NoError(t, err)
	go func() {
		if err := srv.Serve(lis); err != nil {
			logger.Errorf("Error serving: %v", err)
		}
	}()
	t.Cleanup(func() {
		srv.Stop()
		lis.Close()
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &testEnv{
		client:  server.NewClient(conn),
		board:   board,
		repo:    repo,
		metrics: m,
		hits:    &hits,
	}
}

func TestDashboardE2E(t *testing.T) {
	env := setupTestEnvironment(t, 100, 100)
	ctx := context.Background()

	countries, err := env.client.ListClocks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Italy", "USA"}, countries)

	rome, err := env.client.GetClock(ctx, "Italy")
	require.NoError(t, err)
	assert.Equal(t, "Rome", rome.AsMap()["zone_badge"])
	assert.Len(t, rome.AsMap()["time"], len("15:04:05"))

	users, err := env.client.ListCollection(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, "ready", users.AsMap()["status"])
	assert.Len(t, users.AsMap()["items"], 2)

	albums, err := env.client.ListCollection(ctx, "albums")
	require.NoError(t, err)
	assert.Equal(t, "failed", albums.AsMap()["status"])
	assert.Empty(t, albums.AsMap()["items"])
	assert.Contains(t, albums.AsMap()["error"], "502")

	movies, err := env.client.ListCollection(ctx, "movies")
	require.NoError(t, err)
	assert.Equal(t, "ready", movies.AsMap()["status"])
	assert.Equal(t, float64(1), movies.AsMap()["total"])
}

func TestJournalRecordsEveryLoad(t *testing.T) {
	env := setupTestEnvironment(t, 100, 100)

	entries, err := env.repo.RecentLoads(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byName := map[string]models.LoadEntry{}
	for _, e := range entries {
		byName[e.Collection] = e
	}
	assert.Equal(t, models.StatusReady, byName["users"].Status)
	assert.Equal(t, 2, byName["users"].Items)
	assert.Equal(t, models.StatusFailed, byName["albums"].Status)
	assert.NotEmpty(t, byName["albums"].Error)

	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.Loads.WithLabelValues("albums", "failed")))
}

func TestLoadsAreNotRetried(t *testing.T) {
	env := setupTestEnvironment(t, 100, 100)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := env.client.ListCollection(ctx, "albums")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), env.hits.Load(), "each collection is requested exactly once")
}

func TestMiddlewareIntegration(t *testing.T) {
	env := setupTestEnvironment(t, 0.001, 3)
	ctx := context.Background()

	// Test Cache Hit
	resp1, err := env.client.ListCollection(ctx, "users")
	require.NoError(t, err)
	resp2, err := env.client.ListCollection(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, resp1.AsMap(), resp2.AsMap(), "Cache should return same response")

	// Test Rate Limiting
	var limited bool
	for i := 0; i < 5; i++ {
		_, err := env.client.ListCollection(ctx, "users")
		if err != nil {
			assert.Equal(t, codes.ResourceExhausted, status.Code(err))
			limited = true
			break
		}
	}
	assert.True(t, limited, "expected rate limit to kick in")
}

func TestEdgeCases(t *testing.T) {
	env := setupTestEnvironment(t, 100, 100)
	ctx := context.Background()

	testCases := []struct {
		name     string
		call     func() error
		wantCode codes.Code
	}{
		{
			name:     "unknown country",
			call:     func() error { _, err := env.client.GetClock(ctx, "Atlantis"); return err },
			wantCode: codes.NotFound,
		},
		{
			name:     "empty collection name",
			call:     func() error { _, err := env.client.ListCollection(ctx, ""); return err },
			wantCode: codes.InvalidArgument,
		},
		{
			name:     "path-like collection name",
			call:     func() error { _, err := env.client.ListCollection(ctx, "../users"); return err },
			wantCode: codes.InvalidArgument,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call()
			require.Error(t, err)
			assert.Equal(t, tc.wantCode, status.Code(err))
		})
	}
}
