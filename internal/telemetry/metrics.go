package telemetry

import (
	"bufio"
	"context"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	requestDurationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	requestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_count_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	activeStreamsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_streams_active",
			Help: "Number of connected user-info websocket streams",
		},
	)

	// Stake metrics
	stakeOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stake_operations_total",
			Help: "Total number of staking contract operations",
		},
		[]string{"operation", "status"},
	)

	transactionDurationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stake_transaction_confirmation_seconds",
			Help:    "Time from submission to receipt for staking transactions",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"action", "status"},
	)

	pollCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "user_info_polls_total",
			Help: "Total number of user info polls",
		},
		[]string{"status"},
	)

	stakedGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "user_staked_tokens",
			Help: "Tokens staked by the connected wallet",
		},
	)

	rewardsGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "user_pending_rewards_tokens",
			Help: "Pending rewards of the connected wallet",
		},
	)
)

// MetricsHandler returns an http.Handler that serves the metrics endpoint
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware wraps an http.Handler and records metrics about the request
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}

		next.ServeHTTP(sw, r)

		if sw.status == 0 {
			sw.status = http.StatusOK
		}

		labels := prometheus.Labels{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": fmt.Sprintf("%d", sw.status),
		}

		requestDurationHistogram.With(labels).Observe(time.Since(start).Seconds())
		requestCounter.With(labels).Inc()
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Hijack is needed for websocket upgrades behind the middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// RecordStakeOperation records a contract call or transaction outcome
func RecordStakeOperation(operation string, status string) {
	stakeOperationsCounter.WithLabelValues(operation, status).Inc()
}

// RecordConfirmation records how a submitted transaction ended, on both the
// Prometheus registry and the OTLP meter.
func RecordConfirmation(ctx context.Context, action string, status string, duration time.Duration) {
	transactionDurationHistogram.WithLabelValues(action, status).Observe(duration.Seconds())
	recordActionResult(ctx, action, status, duration)
}

func RecordPoll(status string) {
	pollCounter.WithLabelValues(status).Inc()
}

// RecordUserInfo exports the wei amounts as whole-token floats.
func RecordUserInfo(staked, rewards *big.Int) {
	stakedGauge.Set(weiToFloat(staked))
	rewardsGauge.Set(weiToFloat(rewards))
}

func RecordStream(delta float64) {
	activeStreamsGauge.Add(delta)
}

func weiToFloat(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(1e18)).Float64()
	return f
}
