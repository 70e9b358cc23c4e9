package telemetry

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/edinar-labs/flexible-staking/internal/core/config"
)

func TestInitTelemetry_Disabled(t *testing.T) {
	shutdown, err := InitTelemetry(context.Background(), config.TelemetryConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	ctx, span := StartSpan(context.Background(), "stake")
	defer span.End()
	assert.NotNil(t, ctx)
}

func TestRecordUserInfo(t *testing.T) {
	staked, _ := new(big.Int).SetString("2500000000000000000", 10)
	RecordUserInfo(staked, big.NewInt(0))

	assert.InDelta(t, 2.5, testutil.ToFloat64(stakedGauge), 1e-9)
	assert.InDelta(t, 0, testutil.ToFloat64(rewardsGauge), 1e-9)
}

func TestRecordStakeOperation(t *testing.T) {
	before := testutil.ToFloat64(stakeOperationsCounter.WithLabelValues("claim", "success"))
	RecordStakeOperation("claim", "success")
	after := testutil.ToFloat64(stakeOperationsCounter.WithLabelValues("claim", "success"))
	assert.Equal(t, before+1, after)
}

func TestMetricsMiddleware(t *testing.T) {
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/user-info", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(requestCounter.WithLabelValues("GET", "/api/v1/user-info", "418")))
}

func TestWeiToFloat(t *testing.T) {
	assert.Equal(t, float64(0), weiToFloat(nil))
	assert.Equal(t, float64(1), weiToFloat(big.NewInt(1e18)))
}

func TestRecordConfirmation(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))

	RecordConfirmation(context.Background(), "stake", "success", 1500*time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(transactionDurationHistogram))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var names []string
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			names = append(names, m.Name)
		}
	}
	assert.Contains(t, names, "staking.actions")
	assert.Contains(t, names, "staking.confirmation.duration")
}
