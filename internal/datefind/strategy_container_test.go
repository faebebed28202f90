package datefind

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"snapsort/internal/media"
)

// buildMP4 assembles a minimal ISO base-media file: ftyp, an mdat filler,
// and a moov/mvhd with the given creation time (seconds since 1904).
func buildMP4(t *testing.T, creation uint32) string {
	t.Helper()

	box := func(name string, payload []byte) []byte {
		out := make([]byte, 8+len(payload))
		binary.BigEndian.PutUint32(out[:4], uint32(8+len(payload)))
		copy(out[4:8], name)
		copy(out[8:], payload)
		return out
	}

	ftyp := box("ftyp", []byte("isom\x00\x00\x02\x00isomiso2"))
	mdat := box("mdat", make([]byte, 32))

	mvhdPayload := make([]byte, 100) // version 0 mvhd body
	binary.BigEndian.PutUint32(mvhdPayload[4:8], creation)
	moov := box("moov", box("mvhd", mvhdPayload))

	data := append(append(ftyp, mdat...), moov...)
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestContainerReadsMvhdCreation(t *testing.T) {
	want := time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC)
	creation := uint32(want.Unix() + secondsBetween1904And1970)
	path := buildMP4(t, creation)

	s := &containerStrategy{}
	cand, err := s.TryExtract(context.Background(), media.File{Path: path, Kind: media.KindMP4})
	if err != nil {
		t.Fatal(err)
	}
	if !cand.Time.Equal(want) {
		t.Fatalf("got %v, want %v", cand.Time, want)
	}
	if cand.Tier != TierContainer {
		t.Fatalf("tier = %v", cand.Tier)
	}
}

func TestContainerZeroCreationIsNoDate(t *testing.T) {
	path := buildMP4(t, 0)
	s := &containerStrategy{}
	if _, err := s.TryExtract(context.Background(), media.File{Path: path}); !errors.Is(err, ErrNoDate) {
		t.Fatalf("err = %v, want ErrNoDate", err)
	}
}

func TestContainerPre1970CreationIsNoDate(t *testing.T) {
	// A creation value below the 1904 epoch offset would underflow into a
	// nonsense date; it must be treated as unrecorded.
	path := buildMP4(t, 5)
	s := &containerStrategy{}
	if _, err := s.TryExtract(context.Background(), media.File{Path: path}); !errors.Is(err, ErrNoDate) {
		t.Fatalf("err = %v, want ErrNoDate", err)
	}
}

func TestContainerGarbageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.mp4")
	if err := os.WriteFile(path, []byte("this is not a container"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := &containerStrategy{}
	if _, err := s.TryExtract(context.Background(), media.File{Path: path}); err == nil {
		t.Fatal("expected typed failure for garbage input")
	}
}

func TestContainerMissingFile(t *testing.T) {
	s := &containerStrategy{}
	if _, err := s.TryExtract(context.Background(), media.File{Path: filepath.Join(t.TempDir(), "missing.mp4")}); err == nil {
		t.Fatal("expected error")
	}
}
