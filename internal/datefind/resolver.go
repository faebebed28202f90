package datefind

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"snapsort/internal/logging"
	"snapsort/internal/media"
)

// Resolver drives a file through its strategy chain and applies the shared
// acceptance rule. Per file it moves Pending -> Trying(i) -> Accepted or
// Trying(i+1), ending Resolved or, only for unclassified files, Unresolved.
type Resolver struct {
	registry *Registry
	rules    Rules
	timeout  time.Duration
	fs       Strategy
	logger   *slog.Logger
}

// NewResolver constructs a resolver over the given registry. A zero timeout
// disables per-strategy deadlines.
func NewResolver(registry *Registry, rules Rules, timeout time.Duration, logger *slog.Logger) *Resolver {
	return &Resolver{
		registry: registry,
		rules:    rules,
		timeout:  timeout,
		fs:       &fsStrategy{},
		logger:   logging.NewComponentLogger(logger, "resolver"),
	}
}

// Resolve produces the final date decision for one classified file. Files
// the classifier rejected must not reach here; they belong in the Unknown
// bucket with a classification failure result.
func (r *Resolver) Resolve(ctx context.Context, file media.File) Resolved {
	logger := logging.WithContext(ctx, r.logger)

	for _, strategy := range r.registry.StrategiesFor(file.Kind) {
		candidate, err := r.try(ctx, strategy, file)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return Resolved{}
			}
			if !errors.Is(err, ErrNoDate) {
				logger.Debug("strategy failed",
					logging.String(logging.FieldStrategy, strategy.Name()),
					logging.Error(err),
				)
			}
			continue
		}
		if r.rules.Accept(candidate.Time) {
			logger.Debug("date accepted",
				logging.String(logging.FieldStrategy, candidate.Strategy),
				logging.String("date", candidate.Time.Format("2006-01-02 15:04:05")),
			)
			return Resolved{Time: candidate.Time, Strategy: candidate.Strategy, Tier: candidate.Tier, OK: true}
		}
		logger.Debug("date rejected by acceptance rule",
			logging.String(logging.FieldStrategy, candidate.Strategy),
			logging.String("date", candidate.Time.Format("2006-01-02 15:04:05")),
		)
	}

	// Final fallback: the filesystem timestamp is always accepted, even
	// outside the plausible window, so a classified file can never end up
	// unresolved.
	candidate, err := r.fs.TryExtract(ctx, file)
	if err != nil {
		return Resolved{}
	}
	logger.Debug("falling back to filesystem timestamp",
		logging.String("date", candidate.Time.Format("2006-01-02 15:04:05")),
	)
	return Resolved{Time: candidate.Time, Strategy: candidate.Strategy, Tier: candidate.Tier, OK: true}
}

func (r *Resolver) try(ctx context.Context, strategy Strategy, file media.File) (Candidate, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return strategy.TryExtract(ctx, file)
}
