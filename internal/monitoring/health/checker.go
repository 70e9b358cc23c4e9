package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/edinar-labs/flexible-staking/pkg/logger"
)

// Status represents the health status of a component
type Status string

const (
	// StatusOK indicates the component is healthy
	StatusOK Status = "OK"
	// StatusWarning indicates the component has issues but is still functional
	StatusWarning Status = "WARNING"
	// StatusError indicates the component is not functioning
	StatusError Status = "ERROR"
)

// ComponentHealth represents the health status of a system component
type ComponentHealth struct {
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Message     string    `json:"message"`
	LastChecked time.Time `json:"last_checked"`
}

// CheckFunc probes one component and reports its status and a short message.
type CheckFunc func(ctx context.Context) (Status, string)

// HealthChecker runs registered checks periodically and keeps their last result
type HealthChecker struct {
	checks     map[string]CheckFunc
	components map[string]*ComponentHealth
	mu         sync.RWMutex
	checkFreq  time.Duration
	timeout    time.Duration
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewHealthChecker(checkFreq time.Duration) *HealthChecker {
	if checkFreq == 0 {
		checkFreq = 30 * time.Second
	}

	return &HealthChecker{
		checks:     make(map[string]CheckFunc),
		components: make(map[string]*ComponentHealth),
		checkFreq:  checkFreq,
		timeout:    5 * time.Second,
	}
}

// Register adds a named check. It must be called before Start.
func (hc *HealthChecker) Register(name string, check CheckFunc) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[name] = check
}

// Start runs every check once, then again on each tick until Stop or ctx is done
func (hc *HealthChecker) Start(ctx context.Context) {
	log := logger.WithComponent("health_checker")
	log.Info().Dur("frequency", hc.checkFreq).Msg("Starting health checker")

	ctx, hc.cancel = context.WithCancel(ctx)
	hc.done = make(chan struct{})

	hc.CheckAll(ctx)

	go func() {
		defer close(hc.done)

		ticker := time.NewTicker(hc.checkFreq)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hc.CheckAll(ctx)
			case <-ctx.Done():
				log.Debug().Msg("Health checker stopped")
				return
			}
		}
	}()
}

// Stop halts the health checker
func (hc *HealthChecker) Stop() {
	if hc.cancel != nil {
		hc.cancel()
		<-hc.done
		hc.cancel = nil
	}
}

// CheckAll runs all health checks
func (hc *HealthChecker) CheckAll(ctx context.Context) {
	hc.mu.RLock()
	checks := make(map[string]CheckFunc, len(hc.checks))
	for name, check := range hc.checks {
		checks[name] = check
	}
	hc.mu.RUnlock()

	for name, check := range checks {
		hc.run(ctx, name, check)
	}
}

func (hc *HealthChecker) run(ctx context.Context, name string, check CheckFunc) {
	log := logger.WithComponent("health_checker." + name)

	cctx, cancel := context.WithTimeout(ctx, hc.timeout)
	defer cancel()

	status, message := check(cctx)
	health := &ComponentHealth{
		Name:        name,
		Status:      status,
		Message:     message,
		LastChecked: time.Now(),
	}

	switch status {
	case StatusError:
		log.Error().Msg(message)
	case StatusWarning:
		log.Warn().Msg(message)
	default:
		log.Debug().Msg(message)
	}

	hc.mu.Lock()
	hc.components[name] = health
	hc.mu.Unlock()
}

// GetAllHealth returns the health status of all components
func (hc *HealthChecker) GetAllHealth() map[string]*ComponentHealth {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	result := make(map[string]*ComponentHealth, len(hc.components))
	for k, v := range hc.components {
		componentCopy := *v
		result[k] = &componentCopy
	}

	return result
}

// GetComponentHealth returns the health status of a specific component
func (hc *HealthChecker) GetComponentHealth(name string) *ComponentHealth {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	if component, exists := hc.components[name]; exists {
		componentCopy := *component
		return &componentCopy
	}

	return nil
}

// Overall is the worst status across all components
func (hc *HealthChecker) Overall() Status {
	overall := StatusOK
	for _, c := range hc.GetAllHealth() {
		switch c.Status {
		case StatusError:
			return StatusError
		case StatusWarning:
			overall = StatusWarning
		}
	}
	return overall
}

type Report struct {
	Status     Status             `json:"status"`
	Components []*ComponentHealth `json:"components"`
}

// ServeHTTP reports the last results; it answers 503 when any component is in error
func (hc *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	all := hc.GetAllHealth()
	report := Report{
		Status:     hc.Overall(),
		Components: make([]*ComponentHealth, 0, len(all)),
	}
	for _, c := range all {
		report.Components = append(report.Components, c)
	}
	sort.Slice(report.Components, func(i, j int) bool {
		return report.Components[i].Name < report.Components[j].Name
	})

	status := http.StatusOK
	if report.Status == StatusError {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(report)
}
