package server

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/tejusbharadwaj/clockfeed/internal/clock"
	middleware "github.com/tejusbharadwaj/clockfeed/internal/grpc/middlewares"
	"github.com/tejusbharadwaj/clockfeed/internal/loader"
	"github.com/tejusbharadwaj/clockfeed/internal/metrics"
	"github.com/tejusbharadwaj/clockfeed/internal/models"
)

// ServerConfig holds configuration options for the gRPC server
type ServerConfig struct {
	CacheSize      int     // Size of the LRU cache
	RateLimit      float64 // Requests per second
	RateLimitBurst int     // Maximum burst size for rate limiting

	Logger  *logrus.Logger
	Metrics *metrics.Metrics // registered on the default registry when nil
}

// DefaultServerConfig returns a ServerConfig with sensible defaults
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		CacheSize:      1000,
		RateLimit:      5.0, // 5 requests per second
		RateLimitBurst: 10,  // Burst of 10 requests
	}
}

// Board is the read side of the dashboard the service exposes
type Board interface {
	Clock(country string) (*clock.Clock, bool)
	Countries() []string
	Collection(name string) (*loader.Collection, bool)
	DisplayField(name string) string
}

// DashboardService serves clock snapshots and collection contents
type DashboardService struct {
	board     Board
	validator *RequestValidator
}

// NewDashboardService creates a new service instance
func NewDashboardService(board Board) *DashboardService {
	return &DashboardService{
		board:     board,
		validator: NewRequestValidator(),
	}
}

// GetClock returns the latest snapshot of the clock registered for a country.
// Hidden clocks hold no ticker, so their state is stale and not served.
func (s *DashboardService) GetClock(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	country := req.GetValue()
	if err := s.validator.Validate("country", country); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	c, ok := s.board.Clock(country)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "unknown country: %s", country)
	}

	snap, shown := c.Snapshot()
	if !snap.Visible || !shown {
		return nil, status.Errorf(codes.FailedPrecondition, "clock for %s is hidden", country)
	}

	resp, err := structpb.NewStruct(clockFields(snap))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode clock: %v", err)
	}
	return resp, nil
}

// ListCollection returns the state of a collection. A collection that is
// still loading is returned with no items.
func (s *DashboardService) ListCollection(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	name := req.GetValue()
	if err := s.validator.Validate("collection", name); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	col, ok := s.board.Collection(name)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "unknown collection: %s", name)
	}

	resp, err := structpb.NewStruct(collectionFields(col, s.board.DisplayField(name)))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode collection: %v", err)
	}
	return resp, nil
}

func (s *DashboardService) ListClocks(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	countries := s.board.Countries()
	values := make([]interface{}, len(countries))
	for i, c := range countries {
		values[i] = c
	}
	resp, err := structpb.NewList(values)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode clocks: %v", err)
	}
	return resp, nil
}

func clockFields(snap clock.Snapshot) map[string]interface{} {
	return map[string]interface{}{
		"country":        snap.Country,
		"timezone":       snap.Timezone,
		"locale":         snap.Locale,
		"time":           snap.FormattedTime,
		"date":           snap.FormattedDate,
		"seconds_first":  snap.SecondsDigits.First,
		"seconds_second": snap.SecondsDigits.Second,
		"zone_badge":     snap.ZoneBadge,
		"utc_offset":     snap.UTCOffset,
		"instant":        snap.Instant.Format(time.RFC3339Nano),
		"updates":        snap.Updates,
	}
}

func collectionFields(col *loader.Collection, displayField string) map[string]interface{} {
	records := col.Items()
	items := make([]interface{}, len(records))
	for i, r := range records {
		items[i] = map[string]interface{}(r)
	}

	errMsg := ""
	if err := col.Err(); err != nil {
		errMsg = err.Error()
	}

	return map[string]interface{}{
		"name":          col.Name(),
		"status":        col.Status().String(),
		"error":         errMsg,
		"total":         col.Total(),
		"display_field": displayField,
		"items":         items,
	}
}

// cacheable keeps only collections that reached Ready or Failed; neither
// clock readings nor loading collections are final.
func cacheable(method string, resp interface{}) bool {
	if method != Dashboard_ListCollection_FullMethodName {
		return false
	}
	s, ok := resp.(*structpb.Struct)
	if !ok {
		return false
	}
	return models.ParseStatus(s.GetFields()["status"].GetStringValue()).Terminal()
}

// ConfigureGRPCServer creates a server carrying only the dashboard service.
// Without options no middleware runs.
func ConfigureGRPCServer(board Board, opts ...grpc.ServerOption) *grpc.Server {
	srv := grpc.NewServer(opts...)
	RegisterDashboardServer(srv, NewDashboardService(board))
	return srv
}

// SetupServer initializes and configures the gRPC server with all middleware
// and the health service. Both the dashboard and the server as a whole start
// out SERVING.
func SetupServer(board Board, config ServerConfig) (*grpc.Server, *HealthChecker, error) {
	cache, err := middleware.NewCache(config.CacheSize, cacheable)
	if err != nil {
		return nil, nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	m := config.Metrics
	if m == nil {
		m = metrics.New()
		if err := m.Register(prometheus.DefaultRegisterer); err != nil {
			return nil, nil, err
		}
	}

	limiter := middleware.NewRateLimitingInterceptor(config.RateLimit, config.RateLimitBurst)

	server := ConfigureGRPCServer(board,
		grpc.UnaryInterceptor(
			chainUnaryInterceptors(
				middleware.ContextMiddleware,             // Add request ID first
				limiter,                                  // Rate limit early
				middleware.NewLoggingInterceptor(logger), // Log all requests (with request ID)
				middleware.NewMetricsInterceptor(m),      // Collect metrics
				cache.Interceptor,                        // Cache last to avoid caching errors
			),
		),
	)

	health := NewHealthChecker()
	health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	health.SetServingStatus(DashboardServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(server, health)

	return server, health, nil
}

// chainUnaryInterceptors creates a single interceptor from multiple interceptors
func chainUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		chain := handler
		for i := len(interceptors) - 1; i >= 0; i-- {
			interceptor := interceptors[i]
			chainedInterceptor := chain
			chain = func(currentCtx context.Context, currentReq interface{}) (interface{}, error) {
				return interceptor(currentCtx, currentReq, info, chainedInterceptor)
			}
		}
		return chain(ctx, req)
	}
}
