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

func buildPNG(t *testing.T, textChunks map[string]string) string {
	t.Helper()

	chunk := func(chunkType string, payload []byte) []byte {
		out := make([]byte, 12+len(payload))
		binary.BigEndian.PutUint32(out[:4], uint32(len(payload)))
		copy(out[4:8], chunkType)
		copy(out[8:], payload)
		// CRC left zeroed; the reader does not verify it.
		return out
	}

	data := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	data = append(data, chunk("IHDR", make([]byte, 13))...)
	for key, value := range textChunks {
		payload := append(append([]byte(key), 0), []byte(value)...)
		data = append(data, chunk("tEXt", payload)...)
	}
	data = append(data, chunk("IDAT", make([]byte, 8))...)
	data = append(data, chunk("IEND", nil)...)

	path := filepath.Join(t.TempDir(), "image.png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPNGTextCreationTime(t *testing.T) {
	path := buildPNG(t, map[string]string{"Creation Time": "2019-08-20T14:05:00"})
	s := &pngTextStrategy{}
	cand, err := s.TryExtract(context.Background(), media.File{Path: path, Kind: media.KindPNG})
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2019, 8, 20, 14, 5, 0, 0, time.Local)
	if !cand.Time.Equal(want) {
		t.Fatalf("got %v, want %v", cand.Time, want)
	}
}

func TestPNGTextKeyPriority(t *testing.T) {
	path := buildPNG(t, map[string]string{
		"date:modify":   "2024-01-01T00:00:00",
		"creation_time": "2018-02-03T04:05:06",
	})
	s := &pngTextStrategy{}
	cand, err := s.TryExtract(context.Background(), media.File{Path: path})
	if err != nil {
		t.Fatal(err)
	}
	if cand.Time.Year() != 2018 {
		t.Fatalf("creation_time must outrank date:modify, got %v", cand.Time)
	}
}

func TestPNGTextNoDateChunks(t *testing.T) {
	path := buildPNG(t, map[string]string{"Software": "editor 1.0"})
	s := &pngTextStrategy{}
	if _, err := s.TryExtract(context.Background(), media.File{Path: path}); !errors.Is(err, ErrNoDate) {
		t.Fatalf("err = %v, want ErrNoDate", err)
	}
}

func TestPNGTextNotAPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.png")
	if err := os.WriteFile(path, []byte("definitely not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := &pngTextStrategy{}
	if _, err := s.TryExtract(context.Background(), media.File{Path: path}); err == nil {
		t.Fatal("expected typed failure")
	}
}
