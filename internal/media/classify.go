package media

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSniffBytes is how much of the header Classify reads when no prefix
// is supplied. 64 bytes covers every signature we match, including ftyp
// brands at offset 4.
const DefaultSniffBytes = 64

// Classify maps a file to its media kind. The extension is the primary
// signal; when it is missing or unrecognized the header prefix is matched
// against known format signatures. Unsupported files yield KindUnsupported,
// never an error: the caller reports them and continues.
func Classify(path string, prefix []byte) Kind {
	ext := filepath.Ext(filepath.Base(path))
	if kind, ok := KindForExtension(ext); ok {
		return kind
	}
	return SniffKind(prefix)
}

// ClassifyFile reads at most sniffBytes of the header and classifies the
// file. Only the prefix is read, never the full file.
func ClassifyFile(path string, sniffBytes int) (Kind, error) {
	ext := filepath.Ext(filepath.Base(path))
	if kind, ok := KindForExtension(ext); ok {
		return kind, nil
	}

	if sniffBytes <= 0 {
		sniffBytes = DefaultSniffBytes
	}
	f, err := os.Open(path)
	if err != nil {
		return KindUnsupported, err
	}
	defer f.Close()

	prefix := make([]byte, sniffBytes)
	n, err := io.ReadFull(f, prefix)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return KindUnsupported, err
	}
	return SniffKind(prefix[:n]), nil
}

// SniffKind matches a header prefix against known format signatures.
func SniffKind(prefix []byte) Kind {
	if len(prefix) < 4 {
		return KindUnsupported
	}

	switch {
	case bytes.HasPrefix(prefix, []byte{0xFF, 0xD8, 0xFF}):
		return KindJPEG
	case bytes.HasPrefix(prefix, []byte{0x89, 'P', 'N', 'G'}):
		return KindPNG
	case bytes.HasPrefix(prefix, []byte("GIF8")):
		return KindGIF
	case bytes.HasPrefix(prefix, []byte{'I', 'I', 0x2A, 0x00}),
		bytes.HasPrefix(prefix, []byte{'M', 'M', 0x00, 0x2A}):
		return KindTIFF
	case bytes.HasPrefix(prefix, []byte{'B', 'M'}):
		return KindBMP
	case bytes.HasPrefix(prefix, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		// EBML header: Matroska or WebM; treated as MKV without a doctype scan.
		return KindMKV
	}

	if len(prefix) >= 12 && bytes.HasPrefix(prefix, []byte("RIFF")) {
		switch string(prefix[8:12]) {
		case "WEBP":
			return KindWebP
		case "AVI ":
			return KindAVI
		}
		return KindUnsupported
	}

	if len(prefix) >= 12 && bytes.Equal(prefix[4:8], []byte("ftyp")) {
		return kindForBrand(string(prefix[8:12]))
	}

	return KindUnsupported
}

// kindForBrand maps an ISO base-media ftyp major brand to a kind.
func kindForBrand(brand string) Kind {
	switch strings.TrimSpace(strings.ToLower(brand)) {
	case "heic", "heix", "hevc", "mif1", "msf1":
		return KindHEIF
	case "qt":
		return KindMOV
	case "m4v":
		return KindM4V
	case "3gp4", "3gp5", "3g2a", "3gp":
		return Kind3GP
	case "isom", "iso2", "mp41", "mp42", "avc1", "dash", "mp4v":
		return KindMP4
	default:
		return KindMP4
	}
}
