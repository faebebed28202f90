package datefind

import (
	"context"
	"errors"
	"testing"
	"time"

	"snapsort/internal/logging"
	"snapsort/internal/media"
)

type stubStrategy struct {
	name string
	tier Tier
	t    time.Time
	err  error
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Tier() Tier { return s.tier }

func (s *stubStrategy) TryExtract(context.Context, media.File) (Candidate, error) {
	if s.err != nil {
		return Candidate{}, s.err
	}
	return Candidate{Time: s.t, Strategy: s.name, Tier: s.tier}, nil
}

func testResolver(chain ...Strategy) *Resolver {
	registry := &Registry{chains: map[media.Kind][]Strategy{media.KindJPEG: chain}}
	return NewResolver(registry, DefaultRules(), 0, logging.NewNop())
}

func TestResolverFirstAcceptedWins(t *testing.T) {
	embedded := &stubStrategy{name: "exif", tier: TierEmbedded, t: time.Date(2023, 3, 14, 9, 0, 0, 0, time.Local)}
	filename := &stubStrategy{name: "filename", tier: TierFilename, t: time.Date(2001, 1, 1, 0, 0, 0, 0, time.Local)}

	resolved := testResolver(embedded, filename).Resolve(context.Background(), media.File{Path: "/src/a.jpg", Kind: media.KindJPEG})
	if !resolved.OK {
		t.Fatal("expected resolution")
	}
	if resolved.Strategy != "exif" {
		t.Fatalf("strategy = %q, want exif (embedded tag must beat filename)", resolved.Strategy)
	}
	if resolved.Year() != 2023 {
		t.Fatalf("year = %d", resolved.Year())
	}
}

func TestResolverSkipsFailedAndImplausible(t *testing.T) {
	failing := &stubStrategy{name: "exif", tier: TierEmbedded, err: errors.New("corrupt header")}
	epoch := &stubStrategy{name: "container", tier: TierContainer, t: time.Date(1970, 1, 1, 0, 0, 0, 0, time.Local)}
	good := &stubStrategy{name: "filename", tier: TierFilename, t: time.Date(2022, 1, 1, 12, 0, 0, 0, time.Local)}

	resolved := testResolver(failing, epoch, good).Resolve(context.Background(), media.File{Path: "/src/a.jpg", Kind: media.KindJPEG})
	if resolved.Strategy != "filename" {
		t.Fatalf("strategy = %q, want filename", resolved.Strategy)
	}
}

func TestResolverFilesystemFallbackAlwaysAccepts(t *testing.T) {
	noDate := &stubStrategy{name: "exif", tier: TierEmbedded, err: ErrNoDate}
	// Even a pre-window mtime resolves: the filesystem fallback bypasses the
	// acceptance rule so a classified file can never be unresolved.
	modTime := time.Date(1980, 5, 5, 0, 0, 0, 0, time.Local)

	resolved := testResolver(noDate).Resolve(context.Background(), media.File{Path: "/src/old.jpg", Kind: media.KindJPEG, ModTime: modTime})
	if !resolved.OK {
		t.Fatal("expected resolution via filesystem fallback")
	}
	if resolved.Strategy != "filesystem" || resolved.Tier != TierFilesystem {
		t.Fatalf("provenance = %q/%v", resolved.Strategy, resolved.Tier)
	}
	if !resolved.Time.Equal(modTime) {
		t.Fatalf("time = %v, want %v", resolved.Time, modTime)
	}
}

func TestResolverEmptyChainFallsThrough(t *testing.T) {
	modTime := time.Date(2015, 6, 1, 10, 0, 0, 0, time.Local)
	registry := &Registry{chains: map[media.Kind][]Strategy{}}
	resolver := NewResolver(registry, DefaultRules(), 0, logging.NewNop())

	resolved := resolver.Resolve(context.Background(), media.File{Path: "/src/clip.avi", Kind: media.KindAVI, ModTime: modTime})
	if !resolved.OK || resolved.Strategy != "filesystem" {
		t.Fatalf("resolved = %+v", resolved)
	}
}

func TestResolverCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slow := &stubStrategy{name: "exif", tier: TierEmbedded, err: context.Canceled}
	resolved := testResolver(slow).Resolve(ctx, media.File{Path: "/src/a.jpg", Kind: media.KindJPEG})
	if resolved.OK {
		t.Fatal("cancelled resolve must not claim success")
	}
}

func TestRegistryOrdering(t *testing.T) {
	registry := NewRegistry(Options{})

	jpeg := registry.StrategiesFor(media.KindJPEG)
	if len(jpeg) == 0 || jpeg[0].Name() != "exif" {
		t.Fatalf("jpeg chain should start with exif: %v", names(jpeg))
	}
	mov := registry.StrategiesFor(media.KindMOV)
	if len(mov) < 2 || mov[0].Name() != "ffprobe" || mov[1].Name() != "container" {
		t.Fatalf("mov chain should be probe then container: %v", names(mov))
	}
	for _, chain := range [][]Strategy{jpeg, mov, registry.StrategiesFor(media.KindPNG)} {
		for i := 1; i < len(chain); i++ {
			if chain[i-1].Tier() > chain[i].Tier() {
				t.Fatalf("chain out of trust order: %v", names(chain))
			}
		}
	}
	if got := registry.StrategiesFor(media.KindUnsupported); len(got) != 0 {
		t.Fatalf("unsupported kind should have no strategies, got %v", names(got))
	}
}

func names(chain []Strategy) []string {
	out := make([]string, len(chain))
	for i, s := range chain {
		out[i] = s.Name()
	}
	return out
}
