package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// DetectorChecker reports whether a corpus snapshot is published.
type DetectorChecker interface {
	HealthCheck(ctx context.Context) error
}
