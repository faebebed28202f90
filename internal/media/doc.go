// Package media defines the media kinds snapsort understands and the
// classifier that maps files onto them.
//
// Classification uses the normalized extension first and falls back to a
// short magic-byte sniff for missing or unrecognized extensions. At most a
// small fixed header prefix is ever read.
package media
