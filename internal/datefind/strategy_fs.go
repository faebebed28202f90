package datefind

import (
	"context"

	"snapsort/internal/media"
)

// fsStrategy is the last-resort source: the filesystem birth time when the
// platform records one, otherwise the modification time captured at scan.
// The resolver accepts its candidate unconditionally so every classified
// file resolves.
type fsStrategy struct{}

func (s *fsStrategy) Name() string { return "filesystem" }

func (s *fsStrategy) Tier() Tier { return TierFilesystem }

func (s *fsStrategy) TryExtract(ctx context.Context, file media.File) (Candidate, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}

	when := file.ModTime
	if birth, ok := birthTime(file.Path); ok && birth.Before(when) {
		when = birth
	}
	return Candidate{Time: when, Strategy: s.Name(), Tier: s.Tier()}, nil
}
