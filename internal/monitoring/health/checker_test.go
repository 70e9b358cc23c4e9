package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blockReader struct {
	block uint64
	err   error
}

func (b blockReader) BlockNumber(ctx context.Context) (uint64, error) {
	return b.block, b.err
}

func TestHealthChecker_CheckAll(t *testing.T) {
	hc := NewHealthChecker(time.Hour)
	hc.Register("rpc", RPCCheck(blockReader{block: 1234}))
	hc.Register("user_info", FreshnessCheck(func() time.Time { return time.Now() }, time.Minute))

	hc.CheckAll(context.Background())

	rpc := hc.GetComponentHealth("rpc")
	require.NotNil(t, rpc)
	assert.Equal(t, StatusOK, rpc.Status)
	assert.Contains(t, rpc.Message, "1234")
	assert.Equal(t, StatusOK, hc.Overall())
	assert.Nil(t, hc.GetComponentHealth("docker"))
}

func TestHealthChecker_Overall(t *testing.T) {
	hc := NewHealthChecker(time.Hour)
	hc.Register("user_info", FreshnessCheck(func() time.Time { return time.Time{} }, time.Minute))
	hc.CheckAll(context.Background())
	assert.Equal(t, StatusWarning, hc.Overall())

	hc.Register("rpc", RPCCheck(blockReader{err: errors.New("connection refused")}))
	hc.CheckAll(context.Background())
	assert.Equal(t, StatusError, hc.Overall())
}

func TestFreshnessCheck_Stale(t *testing.T) {
	check := FreshnessCheck(func() time.Time { return time.Now().Add(-time.Hour) }, time.Minute)
	status, message := check(context.Background())
	assert.Equal(t, StatusWarning, status)
	assert.Contains(t, message, "old")
}

func TestHealthChecker_ServeHTTP(t *testing.T) {
	hc := NewHealthChecker(time.Hour)
	hc.Register("rpc", RPCCheck(blockReader{err: errors.New("connection refused")}))
	hc.CheckAll(context.Background())

	rec := httptest.NewRecorder()
	hc.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var report Report
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, StatusError, report.Status)
	require.Len(t, report.Components, 1)
	assert.Equal(t, "rpc", report.Components[0].Name)
}

func TestHealthChecker_StartStop(t *testing.T) {
	calls := make(chan struct{}, 10)
	hc := NewHealthChecker(10 * time.Millisecond)
	hc.Register("tick", func(ctx context.Context) (Status, string) {
		select {
		case calls <- struct{}{}:
		default:
		}
		return StatusOK, "ok"
	})

	hc.Start(context.Background())
	<-calls
	<-calls
	hc.Stop()
	hc.Stop()
}
