package datefind

import "time"

// Tier is the ordinal confidence of a date source. Lower values are trusted
// more; the registry orders every kind's strategies by tier.
type Tier int

const (
	// TierEmbedded is capture-time metadata written by the camera (EXIF).
	TierEmbedded Tier = iota
	// TierContainer is container or stream metadata (ffprobe tags, mvhd).
	TierContainer
	// TierDescriptive is descriptive metadata (XMP blocks, text chunks).
	TierDescriptive
	// TierFilename is a date pattern embedded in the file name.
	TierFilename
	// TierFilesystem is the always-available filesystem timestamp.
	TierFilesystem
)

func (t Tier) String() string {
	switch t {
	case TierEmbedded:
		return "embedded"
	case TierContainer:
		return "container"
	case TierDescriptive:
		return "descriptive"
	case TierFilename:
		return "filename"
	case TierFilesystem:
		return "filesystem"
	default:
		return "unknown"
	}
}

// Candidate is one strategy's proposed capture date. It lives only inside a
// single resolver evaluation.
type Candidate struct {
	Time     time.Time
	Strategy string
	Tier     Tier
}

// Resolved is the resolver's final answer for one file: a validated
// timestamp with provenance, or an explicit unresolved marker.
type Resolved struct {
	Time     time.Time
	Strategy string
	Tier     Tier
	// OK is false when no date could be produced at all, which only happens
	// when classification failed upstream; the filesystem fallback otherwise
	// guarantees resolution.
	OK bool
}

// Year returns the four-digit year of a resolved date.
func (r Resolved) Year() int { return r.Time.Year() }

// Month returns the month of a resolved date.
func (r Resolved) Month() time.Month { return r.Time.Month() }
