package health

import (
	"context"
	"fmt"
	"time"
)

// BlockNumberReader is satisfied by an RPC client.
type BlockNumberReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// RPCCheck reports whether the node answers and which block it is at.
func RPCCheck(client BlockNumberReader) CheckFunc {
	return func(ctx context.Context) (Status, string) {
		block, err := client.BlockNumber(ctx)
		if err != nil {
			return StatusError, fmt.Sprintf("RPC not responding: %v", err)
		}
		return StatusOK, fmt.Sprintf("RPC at block %d", block)
	}
}

// FreshnessCheck warns when the last successful read is older than maxAge.
func FreshnessCheck(lastUpdate func() time.Time, maxAge time.Duration) CheckFunc {
	return func(ctx context.Context) (Status, string) {
		updated := lastUpdate()
		if updated.IsZero() {
			return StatusWarning, "user info not read yet"
		}
		age := time.Since(updated)
		if age > maxAge {
			return StatusWarning, fmt.Sprintf("user info is %s old", age.Round(time.Second))
		}
		return StatusOK, fmt.Sprintf("user info updated %s ago", age.Round(time.Second))
	}
}
