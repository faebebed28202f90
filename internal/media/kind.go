package media

import "strings"

// Kind is the internal classification of a file, independent of its
// extension string.
type Kind string

const (
	KindJPEG Kind = "jpeg"
	KindPNG  Kind = "png"
	KindGIF  Kind = "gif"
	KindHEIF Kind = "heif"
	KindTIFF Kind = "tiff"
	KindRAW  Kind = "raw"
	KindWebP Kind = "webp"
	KindBMP  Kind = "bmp"
	KindMP4  Kind = "mp4"
	KindMOV  Kind = "mov"
	KindM4V  Kind = "m4v"
	Kind3GP  Kind = "3gp"
	KindAVI  Kind = "avi"
	KindMKV  Kind = "mkv"
	KindWebM Kind = "webm"

	// KindUnsupported is returned for files the classifier cannot identify.
	KindUnsupported Kind = "unsupported"
)

// IsVideo reports whether the kind is a video container.
func (k Kind) IsVideo() bool {
	switch k {
	case KindMP4, KindMOV, KindM4V, Kind3GP, KindAVI, KindMKV, KindWebM:
		return true
	}
	return false
}

// IsImage reports whether the kind is a still-image format.
func (k Kind) IsImage() bool {
	switch k {
	case KindJPEG, KindPNG, KindGIF, KindHEIF, KindTIFF, KindRAW, KindWebP, KindBMP:
		return true
	}
	return false
}

// Supported reports whether the kind participates in the pipeline.
func (k Kind) Supported() bool {
	return k != KindUnsupported && k != ""
}

// extKinds maps normalized extensions to kinds. Shared container extensions
// that need disambiguation are handled by the sniffer.
var extKinds = map[string]Kind{
	".jpg":  KindJPEG,
	".jpeg": KindJPEG,
	".jpe":  KindJPEG,
	".png":  KindPNG,
	".gif":  KindGIF,
	".heic": KindHEIF,
	".heif": KindHEIF,
	".tif":  KindTIFF,
	".tiff": KindTIFF,
	".webp": KindWebP,
	".bmp":  KindBMP,

	// RAW family: all TIFF-based EXIF carriers.
	".dng": KindRAW,
	".cr2": KindRAW,
	".cr3": KindRAW,
	".nef": KindRAW,
	".arw": KindRAW,
	".orf": KindRAW,
	".rw2": KindRAW,
	".raf": KindRAW,

	".mp4":  KindMP4,
	".mov":  KindMOV,
	".qt":   KindMOV,
	".m4v":  KindM4V,
	".3gp":  Kind3GP,
	".3g2":  Kind3GP,
	".avi":  KindAVI,
	".mkv":  KindMKV,
	".webm": KindWebM,
}

// KindForExtension returns the kind declared by the extension alone, without
// sniffing. The extension is matched case-insensitively.
func KindForExtension(ext string) (Kind, bool) {
	kind, ok := extKinds[strings.ToLower(ext)]
	return kind, ok
}
