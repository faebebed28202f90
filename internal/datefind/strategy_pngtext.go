package datefind

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"snapsort/internal/media"
)

// pngTextKeys are the text-chunk keywords that carry timestamps, in trust
// order. "Creation Time" is the keyword the PNG spec reserves; the rest are
// conventions written by converters.
var pngTextKeys = []string{
	"creation time",
	"creation_time",
	"date:create",
	"date:modify",
}

// maxPNGChunks bounds the chunk walk; metadata precedes image data in any
// well-formed file.
const maxPNGChunks = 64

// pngTextStrategy walks PNG tEXt/iTXt chunks ahead of the image data and
// parses the first timestamp keyword it finds.
type pngTextStrategy struct{}

func (s *pngTextStrategy) Name() string { return "png-text" }

func (s *pngTextStrategy) Tier() Tier { return TierDescriptive }

func (s *pngTextStrategy) TryExtract(ctx context.Context, file media.File) (Candidate, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return Candidate{}, err
	}
	defer f.Close()

	entries, err := readPNGTextChunks(f)
	if err != nil {
		return Candidate{}, err
	}

	for _, key := range pngTextKeys {
		raw, ok := entries[key]
		if !ok {
			continue
		}
		if parsed, ok := ParseFlexible(raw); ok {
			return Candidate{Time: parsed, Strategy: s.Name(), Tier: s.Tier()}, nil
		}
	}
	return Candidate{}, ErrNoDate
}

// readPNGTextChunks collects tEXt and iTXt entries keyed by lowercased
// keyword, stopping at the first IDAT chunk.
func readPNGTextChunks(r io.Reader) (map[string]string, error) {
	var signature [8]byte
	if _, err := io.ReadFull(r, signature[:]); err != nil {
		return nil, fmt.Errorf("png signature: %w", err)
	}
	if !bytes.Equal(signature[:4], []byte{0x89, 'P', 'N', 'G'}) {
		return nil, fmt.Errorf("not a png file")
	}

	entries := map[string]string{}
	for i := 0; i < maxPNGChunks; i++ {
		var header [8]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			break
		}
		length := binary.BigEndian.Uint32(header[:4])
		chunkType := string(header[4:8])

		if chunkType == "IDAT" || chunkType == "IEND" {
			break
		}

		// Length is attacker-controlled; cap what we buffer.
		if chunkType != "tEXt" && chunkType != "iTXt" || length > 64*1024 {
			if err := discard(r, int64(length)+4); err != nil {
				break
			}
			continue
		}

		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			break
		}
		if err := discard(r, 4); err != nil { // CRC
			break
		}

		key, value := splitPNGTextChunk(chunkType, data)
		if key != "" && value != "" {
			entries[strings.ToLower(key)] = value
		}
	}
	return entries, nil
}

func splitPNGTextChunk(chunkType string, data []byte) (string, string) {
	sep := bytes.IndexByte(data, 0)
	if sep <= 0 {
		return "", ""
	}
	key := string(data[:sep])
	rest := data[sep+1:]

	if chunkType == "tEXt" {
		return key, strings.TrimSpace(string(rest))
	}

	// iTXt: compression flag, compression method, language tag NUL,
	// translated keyword NUL, then the text. Compressed payloads are skipped.
	if len(rest) < 2 || rest[0] != 0 {
		return "", ""
	}
	rest = rest[2:]
	for i := 0; i < 2; i++ {
		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return "", ""
		}
		rest = rest[nul+1:]
	}
	return key, strings.TrimSpace(string(rest))
}

func discard(r io.Reader, n int64) error {
	_, err := io.CopyN(io.Discard, r, n)
	return err
}
