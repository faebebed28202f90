package datefind

import (
	"context"
	"errors"
	"time"

	"snapsort/internal/media"
)

// ErrNoDate is the typed outcome for "this source carries no date at all".
// Any other error from a strategy means the source was present but could not
// be read or parsed; the resolver treats both the same way and advances.
var ErrNoDate = errors.New("no date present")

// Strategy is one extraction technique capable of producing a date candidate
// for a file. Implementations must be read-only, must never panic across the
// boundary, and must honor ctx so a corrupt or huge file cannot stall a
// worker.
type Strategy interface {
	Name() string
	Tier() Tier
	TryExtract(ctx context.Context, file media.File) (Candidate, error)
}

// Options configures the built-in strategy set.
type Options struct {
	// FFprobeBinary is the external probe executable; empty means "ffprobe".
	FFprobeBinary string
	// Timeout bounds one strategy's work on one file.
	Timeout time.Duration
}

// Registry maps each media kind to its ordered strategy chain. The ordering
// encodes trust: embedded capture tags, then container metadata, then
// descriptive metadata, then filename patterns. The filesystem fallback is
// owned by the resolver, not listed here.
type Registry struct {
	chains map[media.Kind][]Strategy
}

// NewRegistry builds the default registry. Video kinds try the fast external
// probe first and fall back to the in-process container parser; absence or
// failure of ffprobe silently demotes to the next strategy.
func NewRegistry(opts Options) *Registry {
	exif := &exifStrategy{}
	xmp := &xmpStrategy{}
	pngText := &pngTextStrategy{}
	gifComment := &gifCommentStrategy{}
	filename := &filenameStrategy{}
	probe := &ffprobeStrategy{binary: opts.FFprobeBinary}
	container := &containerStrategy{}

	chains := map[media.Kind][]Strategy{
		media.KindJPEG: {exif, xmp, filename},
		media.KindTIFF: {exif, xmp, filename},
		media.KindRAW:  {exif, xmp, filename},
		media.KindHEIF: {probe, xmp, filename},
		media.KindPNG:  {pngText, xmp, filename},
		media.KindGIF:  {xmp, gifComment, filename},
		media.KindWebP: {xmp, filename},
		media.KindBMP:  {filename},
		media.KindMP4:  {probe, container, filename},
		media.KindMOV:  {probe, container, filename},
		media.KindM4V:  {probe, container, filename},
		media.Kind3GP:  {probe, container, filename},
		media.KindAVI:  {probe, filename},
		media.KindMKV:  {probe, filename},
		media.KindWebM: {probe, filename},
	}
	return &Registry{chains: chains}
}

// StrategiesFor returns the ordered strategy chain for a kind. Unknown kinds
// get an empty chain; the resolver's filesystem fallback still applies.
func (r *Registry) StrategiesFor(kind media.Kind) []Strategy {
	return r.chains[kind]
}
