package server

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// Metrics counts and times dependency service calls.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the service collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plugindeps_grpc_requests_total",
				Help: "Total number of dependency service calls, by method and status code.",
			},
			[]string{"method", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plugindeps_grpc_request_duration_seconds",
				Help:    "Time spent serving dependency service calls.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// UnaryInterceptor logs failed calls and records metrics when m is not nil.
func UnaryInterceptor(logger logr.Logger, m *Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		if m != nil {
			m.requests.WithLabelValues(info.FullMethod, code.String()).Inc()
			m.duration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())
		}
		if err != nil {
			logger.Error(err, "call failed", "method", info.FullMethod, "code", code.String())
		}
		return resp, err
	}
}
