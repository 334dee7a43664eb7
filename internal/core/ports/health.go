package ports

import "context"

// HealthChecker checks storage and cache health.
type HealthChecker interface {
	// Ping verifies connectivity. Returns nil if healthy.
	Ping(ctx context.Context) error
	// Name returns the dependency name (e.g., "postgresql", "memory", "redis").
	Name() string
}
