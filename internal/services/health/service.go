package health

import (
	"context"
	"sort"
	"time"
)

// Check probes one dependency. A nil error means healthy.
type Check func(ctx context.Context) error

// Service runs the registered dependency checks.
type Service struct {
	Timeout time.Duration
	// Info is copied into every status payload.
	Info   map[string]any
	checks map[string]Check
}

// NewService constructs a health service with a per-check timeout.
func NewService(timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Service{Timeout: timeout, Info: map[string]any{}, checks: map[string]Check{}}
}

// Register adds a named check.
func (s *Service) Register(name string, check Check) {
	s.checks[name] = check
}

// Status runs all checks. ok is false when any check fails; failing checks
// report their error text under "checks".
func (s *Service) Status(ctx context.Context) map[string]any {
	out := make(map[string]any, len(s.Info)+2)
	for k, v := range s.Info {
		out[k] = v
	}

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	ok := true
	results := make(map[string]string, len(names))
	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, s.Timeout)
		err := s.checks[name](cctx)
		cancel()
		if err != nil {
			ok = false
			results[name] = err.Error()
			continue
		}
		results[name] = "ok"
	}
	if len(results) > 0 {
		out["checks"] = results
	}
	out["ok"] = ok
	return out
}
