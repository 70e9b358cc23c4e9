package mocks

import (
	"sync"

	"github.com/edinar-labs/flexible-staking/internal/session"
)

// RecordingNotifier keeps every alert for assertions.
type RecordingNotifier struct {
	mu        sync.Mutex
	Successes []string
	Failures  []error
}

func (n *RecordingNotifier) Success(_ session.Action, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Successes = append(n.Successes, message)
}

func (n *RecordingNotifier) Failure(_ session.Action, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Failures = append(n.Failures, err)
}

func (n *RecordingNotifier) Counts() (successes, failures int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Successes), len(n.Failures)
}
