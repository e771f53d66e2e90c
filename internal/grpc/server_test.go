package server_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tejusbharadwaj/clockfeed/internal/clock"
	"github.com/tejusbharadwaj/clockfeed/internal/dashboard"
	server "github.com/tejusbharadwaj/clockfeed/internal/grpc"
	middleware "github.com/tejusbharadwaj/clockfeed/internal/grpc/middlewares"
	"github.com/tejusbharadwaj/clockfeed/internal/loader"
	"github.com/tejusbharadwaj/clockfeed/internal/metrics"
)

var epoch = time.Date(2026, 10, 18, 10, 0, 7, 0, time.UTC)

func newBoard(t *testing.T) *dashboard.Board {
	t.Helper()
	b := dashboard.New(nil)
	t.Cleanup(b.Close)

	fc := clockwork.NewFakeClockAt(epoch)
	for _, cfg := range []clock.Config{
		{Country: "Italy", Timezone: "Europe/Rome", Locale: "it-IT", Visible: true},
		{Country: "USA", Timezone: "America/New_York", Locale: "en-US", Visible: true},
		{Country: "Japan", Timezone: "Asia/Tokyo", Locale: "it-IT", Visible: false},
	} {
		c, err := clock.Start(cfg, clock.WithClock(fc))
		require.NoError(t, err)
		b.AddClock(c)
	}
	return b
}

func addCollection(t *testing.T, b *dashboard.Board, name string, status int, body string) *loader.Collection {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	col := loader.New().Load(context.Background(), loader.Source{Name: name, Endpoint: srv.URL})
	b.AddCollection(col, "title")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, col.Wait(ctx))
	return col
}

func TestGetClock(t *testing.T) {
	svc := server.NewDashboardService(newBoard(t))

	tests := []struct {
		name          string
		country       string
		expectedCode  codes.Code
		expectedError string
	}{
		{name: "Success case", country: "Italy", expectedCode: codes.OK},
		{name: "Unknown country", country: "France", expectedCode: codes.NotFound, expectedError: "unknown country: France"},
		{name: "Missing country", country: "", expectedCode: codes.InvalidArgument, expectedError: "missing country"},
		{name: "Invalid country", country: "Italy;DROP", expectedCode: codes.InvalidArgument, expectedError: "unexpected character"},
		{name: "Hidden clock", country: "Japan", expectedCode: codes.FailedPrecondition, expectedError: "hidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.GetClock(context.Background(), wrapperspb.String(tt.country))

			if tt.expectedCode != codes.OK {
				require.Error(t, err)
				st, ok := status.FromError(err)
				require.True(t, ok)
				assert.Equal(t, tt.expectedCode, st.Code())
				assert.Contains(t, st.Message(), tt.expectedError)
				assert.Nil(t, resp)
				return
			}

			require.NoError(t, err)
			fields := resp.AsMap()
			assert.Equal(t, "Italy", fields["country"])
			assert.Equal(t, "12:00:07", fields["time"])
			assert.Equal(t, "+02:00", fields["utc_offset"])
			assert.Equal(t, "Rome", fields["zone_badge"])
			assert.Equal(t, "0", fields["seconds_first"])
			assert.Equal(t, "7", fields["seconds_second"])
			assert.Equal(t, float64(1), fields["updates"])
			assert.Contains(t, fields["date"], "ottobre")
		})
	}
}

func TestListCollection(t *testing.T) {
	b := newBoard(t)
	addCollection(t, b, "albums", http.StatusOK, `[{"id":1,"title":"quidem molestiae enim"},{"id":2,"title":"sunt qui excepturi"}]`)
	addCollection(t, b, "photos", http.StatusInternalServerError, `boom`)
	svc := server.NewDashboardService(b)

	resp, err := svc.ListCollection(context.Background(), wrapperspb.String("albums"))
	require.NoError(t, err)
	fields := resp.AsMap()
	assert.Equal(t, "albums", fields["name"])
	assert.Equal(t, "ready", fields["status"])
	assert.Equal(t, "", fields["error"])
	assert.Equal(t, float64(2), fields["total"])
	assert.Equal(t, "title", fields["display_field"])
	items := fields["items"].([]interface{})
	require.Len(t, items, 2)
	assert.Equal(t, "quidem molestiae enim", items[0].(map[string]interface{})["title"])

	resp, err = svc.ListCollection(context.Background(), wrapperspb.String("photos"))
	require.NoError(t, err)
	fields = resp.AsMap()
	assert.Equal(t, "failed", fields["status"])
	assert.Contains(t, fields["error"], "500")
	assert.Empty(t, fields["items"])

	_, err = svc.ListCollection(context.Background(), wrapperspb.String("users"))
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = svc.ListCollection(context.Background(), wrapperspb.String(""))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestListClocks(t *testing.T) {
	svc := server.NewDashboardService(newBoard(t))

	resp, err := svc.ListClocks(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"Italy", "USA", "Japan"}, resp.AsSlice())
}

func TestSetupServer(t *testing.T) {
	b := newBoard(t)

	config := server.DefaultServerConfig()
	config.Metrics = metrics.New()
	srv, health, err := server.SetupServer(b, config)
	require.NoError(t, err)
	require.NotNil(t, srv)
	require.NotNil(t, health)

	// Test with invalid config
	invalidConfig := server.ServerConfig{
		CacheSize: -1,
	}
	srv, health, err = server.SetupServer(b, invalidConfig)
	require.Error(t, err)
	require.Nil(t, srv)
	require.Nil(t, health)
}

func startBufconn(t *testing.T, b *dashboard.Board, logger *logrus.Logger) (*server.Client, *server.HealthChecker, *grpc.ClientConn) {
	t.Helper()
	srv, health, err := server.SetupServer(b, server.ServerConfig{
		CacheSize:      16,
		RateLimit:      1000,
		RateLimitBurst: 100,
		Logger:         logger,
		Metrics:        metrics.New(),
	})
	require.NoError(t, err)

	client, conn := serveBufconn(t, srv)
	return client, health, conn
}

func serveBufconn(t *testing.T, srv *grpc.Server) (*server.Client, *grpc.ClientConn) {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
			return lis.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return server.NewClient(conn), conn
}

func TestConfigureGRPCServerWithoutMiddleware(t *testing.T) {
	b := newBoard(t)
	addCollection(t, b, "albums", http.StatusOK, `[{"id":1,"title":"quidem molestiae enim"}]`)

	client, _ := serveBufconn(t, server.ConfigureGRPCServer(b))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var header metadata.MD
	clk, err := client.GetClock(ctx, "Italy", grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, "12:00:07", clk.AsMap()["time"])
	assert.Empty(t, header.Get(middleware.RequestIDHeader))

	resp, err := client.ListCollection(ctx, "albums")
	require.NoError(t, err)
	assert.Equal(t, "ready", resp.AsMap()["status"])

	_, err = client.ListCollection(ctx, "../albums")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestDashboardOverGRPC(t *testing.T) {
	b := newBoard(t)
	logger, hook := logtest.NewNullLogger()
	client, health, conn := startBufconn(t, b, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var header metadata.MD
	clk, err := client.GetClock(ctx, "USA", grpc.Header(&header))
	require.NoError(t, err)
	assert.Equal(t, "06:00:07", clk.AsMap()["time"])
	assert.Equal(t, "Sunday, October 18, 2026", clk.AsMap()["date"])
	require.Len(t, header.Get(middleware.RequestIDHeader), 1)

	countries, err := client.ListClocks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Italy", "USA", "Japan"}, countries)

	_, err = client.GetClock(ctx, "Japan")
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	require.NotEmpty(t, hook.AllEntries())
	assert.Equal(t, server.Dashboard_GetClock_FullMethodName, hook.LastEntry().Data["method"])

	hc := grpc_health_v1.NewHealthClient(conn)
	hr, err := hc.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: server.DashboardServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, hr.Status)

	health.Shutdown()
	hr, err = hc.Check(ctx, &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, hr.Status)
}

func TestLoadingCollectionIsNotCached(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		fmt.Fprint(w, `[{"title":"accusamus beatae"}]`)
	}))
	defer srv.Close()

	b := newBoard(t)
	col := loader.New().Load(context.Background(), loader.Source{Name: "photos", Endpoint: srv.URL})
	b.AddCollection(col, "title")

	client, _, _ := startBufconn(t, b, logrus.New())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.ListCollection(ctx, "photos")
	require.NoError(t, err)
	assert.Equal(t, "loading", resp.AsMap()["status"])
	assert.Empty(t, resp.AsMap()["items"])

	close(release)
	require.NoError(t, col.Wait(ctx))

	resp, err = client.ListCollection(ctx, "photos")
	require.NoError(t, err)
	assert.Equal(t, "ready", resp.AsMap()["status"])
	assert.Len(t, resp.AsMap()["items"], 1)
}
