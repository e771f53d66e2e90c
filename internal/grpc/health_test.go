package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

func TestHealthChecker(t *testing.T) {
	ctx := context.Background()
	h := NewHealthChecker()

	_, err := h.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: DashboardServiceName})
	assert.Equal(t, codes.NotFound, status.Code(err))

	h.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	h.SetServingStatus(DashboardServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	for _, service := range []string{"", DashboardServiceName} {
		resp, err := h.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, resp.Status, service)
	}

	h.Shutdown()

	for _, service := range []string{"", DashboardServiceName} {
		resp, err := h.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		assert.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status, service)
	}

	// services unknown before shutdown stay unknown
	_, err = h.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: "grpc.reflection.v1.ServerReflection"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestHealthCheckerWatchUnsupported(t *testing.T) {
	err := NewHealthChecker().Watch(&grpc_health_v1.HealthCheckRequest{}, nil)
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}
