package datefind

import (
	"bytes"
	"context"
	"io"
	"os"
	"regexp"

	"snapsort/internal/media"
)

// xmpScanWindow is how much of the file is searched for an XMP packet. XMP
// sits in the first few megabytes of every format that embeds it.
const xmpScanWindow = 3 * 1024 * 1024

// xmpDatePatterns are tried in priority order; writers that strip EXIF often
// still leave these behind.
var xmpDatePatterns = []*regexp.Regexp{
	xmpTagPattern("exif:DateTimeOriginal"),
	xmpTagPattern("photoshop:DateCreated"),
	xmpTagPattern("xmp:CreateDate"),
	xmpTagPattern("xmp:ModifyDate"),
}

func xmpTagPattern(tag string) *regexp.Regexp {
	const dateToken = `\d{4}[-:]\d{2}[-:]\d{2}(?:[T ]\d{2}:\d{2}:\d{2}[^\s<"']*)?`
	return regexp.MustCompile(tag + `[>\s"=']*(` + dateToken + `)`)
}

// xmpStrategy scans the head of the file for an embedded XMP packet and
// pulls the best creation-date property out of it.
type xmpStrategy struct{}

func (s *xmpStrategy) Name() string { return "xmp" }

func (s *xmpStrategy) Tier() Tier { return TierDescriptive }

func (s *xmpStrategy) TryExtract(ctx context.Context, file media.File) (Candidate, error) {
	if err := ctx.Err(); err != nil {
		return Candidate{}, err
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return Candidate{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, xmpScanWindow))
	if err != nil {
		return Candidate{}, err
	}

	packet := extractXMPPacket(data)
	if packet == nil {
		return Candidate{}, ErrNoDate
	}

	for _, pattern := range xmpDatePatterns {
		match := pattern.FindSubmatch(packet)
		if match == nil {
			continue
		}
		if parsed, ok := ParseFlexible(string(match[1])); ok {
			return Candidate{Time: parsed, Strategy: s.Name(), Tier: s.Tier()}, nil
		}
	}
	return Candidate{}, ErrNoDate
}

func extractXMPPacket(data []byte) []byte {
	start := bytes.Index(data, []byte("<x:xmpmeta"))
	end := []byte("</x:xmpmeta>")
	if start == -1 {
		start = bytes.Index(data, []byte("<rdf:RDF"))
		end = []byte("</rdf:RDF>")
	}
	if start == -1 {
		return nil
	}

	stop := bytes.Index(data[start:], end)
	if stop == -1 {
		// Truncated packet: search a bounded chunk after the opening tag.
		chunk := data[start:]
		if len(chunk) > 64*1024 {
			chunk = chunk[:64*1024]
		}
		return chunk
	}
	return data[start : start+stop+len(end)]
}
