package datefind

import (
	"context"
	"fmt"

	"snapsort/internal/media"
	"snapsort/internal/media/ffprobe"
)

// ffprobeStrategy is the fast path for video containers: one external probe
// call surfaces every creation tag the container carries. When the binary is
// absent or the probe fails, the error is a typed outcome and the resolver
// silently demotes to the in-process parser.
type ffprobeStrategy struct {
	binary string
}

func (s *ffprobeStrategy) Name() string { return "ffprobe" }

func (s *ffprobeStrategy) Tier() Tier { return TierContainer }

func (s *ffprobeStrategy) TryExtract(ctx context.Context, file media.File) (Candidate, error) {
	if !ffprobe.Available(s.binary) {
		return Candidate{}, fmt.Errorf("ffprobe unavailable: %w", ErrNoDate)
	}

	result, err := ffprobe.Inspect(ctx, s.binary, file.Path)
	if err != nil {
		return Candidate{}, err
	}

	raw := result.CreationTime()
	if raw == "" {
		return Candidate{}, ErrNoDate
	}
	parsed, ok := ParseFlexible(raw)
	if !ok {
		return Candidate{}, fmt.Errorf("ffprobe creation tag unparseable: %q", raw)
	}
	return Candidate{Time: parsed, Strategy: s.Name(), Tier: s.Tier()}, nil
}
