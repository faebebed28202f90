// Package scan discovers and classifies the media files under a source root.
package scan
