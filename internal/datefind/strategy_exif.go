package datefind

import (
	"context"
	"fmt"
	"os"

	"github.com/rwcarlsen/goexif/exif"

	"snapsort/internal/media"
)

// exifDateTags are consulted in trust order: the original capture time, the
// digitization time, then the generic (often edit) timestamp.
var exifDateTags = []exif.FieldName{
	exif.DateTimeOriginal,
	exif.DateTimeDigitized,
	exif.DateTime,
}

// exifStrategy reads embedded EXIF capture tags from JPEG and TIFF-based
// files, including the camera RAW family.
type exifStrategy struct{}

func (s *exifStrategy) Name() string { return "exif" }

func (s *exifStrategy) Tier() Tier { return TierEmbedded }

func (s *exifStrategy) TryExtract(ctx context.Context, file media.File) (cand Candidate, err error) {
	// The EXIF decoder is third-party code fed untrusted bytes; keep its
	// failure modes inside the typed-outcome contract.
	defer func() {
		if r := recover(); r != nil {
			cand, err = Candidate{}, fmt.Errorf("exif decode panic: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return Candidate{}, err
	}
	defer f.Close()

	decoded, err := exif.Decode(f)
	if err != nil {
		return Candidate{}, fmt.Errorf("exif decode: %w", err)
	}

	for _, tagName := range exifDateTags {
		tag, err := decoded.Get(tagName)
		if err != nil {
			continue
		}
		raw, err := tag.StringVal()
		if err != nil {
			continue
		}
		if parsed, ok := ParseFlexible(raw); ok {
			return Candidate{Time: parsed, Strategy: s.Name(), Tier: s.Tier()}, nil
		}
	}
	return Candidate{}, ErrNoDate
}
