package datefind

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"snapsort/internal/media"
)

// maxGIFBlocks bounds the block walk through frames and extensions.
const maxGIFBlocks = 512

// gifCommentStrategy walks GIF extension blocks looking for a comment that
// parses as a timestamp. Converters occasionally stash the capture date
// there; animated frames are skipped without decoding.
type gifCommentStrategy struct{}

func (s *gifCommentStrategy) Name() string { return "gif-comment" }

func (s *gifCommentStrategy) Tier() Tier { return TierDescriptive }

func (s *gifCommentStrategy) TryExtract(ctx context.Context, file media.File) (Candidate, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return Candidate{}, err
	}
	defer f.Close()

	comments, err := readGIFComments(f)
	if err != nil {
		return Candidate{}, err
	}
	for _, comment := range comments {
		if parsed, ok := ParseFlexible(comment); ok {
			return Candidate{Time: parsed, Strategy: s.Name(), Tier: s.Tier()}, nil
		}
	}
	return Candidate{}, ErrNoDate
}

// readGIFComments collects comment-extension payloads from a GIF stream.
func readGIFComments(r io.Reader) ([]string, error) {
	var header [13]byte // signature + logical screen descriptor
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("gif header: %w", err)
	}
	if !bytes.HasPrefix(header[:], []byte("GIF8")) {
		return nil, fmt.Errorf("not a gif file")
	}

	// Global color table, when flagged, follows immediately.
	if header[10]&0x80 != 0 {
		size := int64(3) << ((header[10] & 0x07) + 1)
		if err := discard(r, size); err != nil {
			return nil, fmt.Errorf("gif color table: %w", err)
		}
	}

	var comments []string
	for i := 0; i < maxGIFBlocks; i++ {
		var marker [1]byte
		if _, err := io.ReadFull(r, marker[:]); err != nil {
			break
		}
		switch marker[0] {
		case 0x3B: // trailer
			return comments, nil
		case 0x21: // extension
			var label [1]byte
			if _, err := io.ReadFull(r, label[:]); err != nil {
				return comments, nil
			}
			data, err := readGIFSubBlocks(r)
			if err != nil {
				return comments, nil
			}
			if label[0] == 0xFE && len(data) > 0 {
				comments = append(comments, string(data))
			}
		case 0x2C: // image descriptor
			if err := skipGIFImage(r); err != nil {
				return comments, nil
			}
		default:
			return comments, nil
		}
	}
	return comments, nil
}

// readGIFSubBlocks concatenates a sub-block sequence up to its terminator.
func readGIFSubBlocks(r io.Reader) ([]byte, error) {
	var out []byte
	for {
		var size [1]byte
		if _, err := io.ReadFull(r, size[:]); err != nil {
			return nil, err
		}
		if size[0] == 0 {
			return out, nil
		}
		block := make([]byte, size[0])
		if _, err := io.ReadFull(r, block); err != nil {
			return nil, err
		}
		if len(out) < 64*1024 {
			out = append(out, block...)
		}
	}
}

// skipGIFImage discards one image descriptor, its optional local color table,
// and the LZW data without decoding.
func skipGIFImage(r io.Reader) error {
	var descriptor [9]byte
	if _, err := io.ReadFull(r, descriptor[:]); err != nil {
		return err
	}
	if descriptor[8]&0x80 != 0 {
		size := int64(3) << ((descriptor[8] & 0x07) + 1)
		if err := discard(r, size); err != nil {
			return err
		}
	}
	if err := discard(r, 1); err != nil { // LZW minimum code size
		return err
	}
	_, err := readGIFSubBlocks(r)
	return err
}
