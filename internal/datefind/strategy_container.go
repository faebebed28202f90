package datefind

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"snapsort/internal/media"
)

// secondsBetween1904And1970 converts QuickTime/MP4 epoch timestamps to Unix.
const secondsBetween1904And1970 = 2082844800

// maxContainerBoxes bounds the box walk so a corrupt size field cannot spin
// forever.
const maxContainerBoxes = 256

// containerStrategy is the in-process fallback for ISO base-media containers
// (MP4, MOV, M4V, 3GP): it walks top-level boxes to the moov/mvhd header and
// reads the creation timestamp directly, no external tool required.
type containerStrategy struct{}

func (s *containerStrategy) Name() string { return "container" }

func (s *containerStrategy) Tier() Tier { return TierContainer }

func (s *containerStrategy) TryExtract(ctx context.Context, file media.File) (Candidate, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return Candidate{}, err
	}
	defer f.Close()

	created, err := readMvhdCreation(f)
	if err != nil {
		return Candidate{}, err
	}
	if created == 0 {
		// Zero is the container's own "not recorded" placeholder.
		return Candidate{}, ErrNoDate
	}

	if created < secondsBetween1904And1970 || created > math.MaxInt64 {
		// Below the 1904 epoch offset (or absurdly large) means a garbage
		// creation field, not a real pre-1970 capture.
		return Candidate{}, ErrNoDate
	}
	parsed := time.Unix(int64(created-secondsBetween1904And1970), 0)
	return Candidate{Time: parsed, Strategy: s.Name(), Tier: s.Tier()}, nil
}

// readMvhdCreation walks top-level boxes until moov, then moov's children
// until mvhd, and returns the raw creation field (seconds since 1904).
func readMvhdCreation(r io.ReadSeeker) (uint64, error) {
	moovSize, err := seekToBox(r, "moov", -1)
	if err != nil {
		return 0, err
	}
	if _, err := seekToBox(r, "mvhd", moovSize); err != nil {
		return 0, err
	}

	var version [4]byte
	if _, err := io.ReadFull(r, version[:]); err != nil {
		return 0, fmt.Errorf("mvhd header: %w", err)
	}
	switch version[0] {
	case 0:
		var fields [4]byte
		if _, err := io.ReadFull(r, fields[:]); err != nil {
			return 0, fmt.Errorf("mvhd v0 creation: %w", err)
		}
		return uint64(binary.BigEndian.Uint32(fields[:])), nil
	case 1:
		var fields [8]byte
		if _, err := io.ReadFull(r, fields[:]); err != nil {
			return 0, fmt.Errorf("mvhd v1 creation: %w", err)
		}
		return binary.BigEndian.Uint64(fields[:]), nil
	default:
		return 0, fmt.Errorf("mvhd version %d unsupported", version[0])
	}
}

// seekToBox advances r to the payload of the first box with the given type.
// limit bounds the byte range searched (-1 means until EOF). It returns the
// payload size of the found box.
func seekToBox(r io.ReadSeeker, boxType string, limit int64) (int64, error) {
	remaining := limit
	for i := 0; i < maxContainerBoxes; i++ {
		if remaining == 0 {
			break
		}

		var header [8]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return 0, err
		}

		size := int64(binary.BigEndian.Uint32(header[:4]))
		name := string(header[4:8])
		headerLen := int64(8)

		if size == 1 {
			var large [8]byte
			if _, err := io.ReadFull(r, large[:]); err != nil {
				return 0, fmt.Errorf("box largesize: %w", err)
			}
			size = int64(binary.BigEndian.Uint64(large[:]))
			headerLen = 16
		}
		if size != 0 && size < headerLen {
			return 0, fmt.Errorf("box %q has invalid size %d", name, size)
		}

		if name == boxType {
			if size == 0 {
				return -1, nil
			}
			return size - headerLen, nil
		}

		if size == 0 {
			// Box extends to EOF and is not the one we want.
			break
		}
		if _, err := r.Seek(size-headerLen, io.SeekCurrent); err != nil {
			return 0, err
		}
		if remaining > 0 {
			remaining -= size
			if remaining <= 0 {
				break
			}
		}
	}
	return 0, fmt.Errorf("box %q not found: %w", boxType, ErrNoDate)
}
