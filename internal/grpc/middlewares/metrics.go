package middleware

import (
	"context"
	"path"
	"time"

	"google.golang.org/grpc"

	"github.com/tejusbharadwaj/clockfeed/internal/metrics"
)

// NewMetricsInterceptor counts requests and observes their latency, labelled
// by the bare method name
func NewMetricsInterceptor(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()

		resp, err := handler(ctx, req)

		duration := time.Since(start).Seconds()
		method := path.Base(info.FullMethod)

		m.Requests.WithLabelValues(method).Inc()
		m.Latency.WithLabelValues(method).Observe(duration)

		return resp, err
	}
}
