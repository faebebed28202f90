package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index     int               `json:"index"`
	CodecName string            `json:"codec_name"`
	CodecType string            `json:"codec_type"`
	Tags      map[string]string `json:"tags"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string            `json:"filename"`
	FormatName string            `json:"format_name"`
	Duration   string            `json:"duration"`
	Tags       map[string]string `json:"tags"`
}

// Available reports whether the probe binary can be found on PATH.
func Available(binary string) bool {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	_, err := exec.LookPath(binary)
	return err == nil
}

// Inspect executes ffprobe against the provided path and decodes the JSON
// response. The caller bounds execution through ctx.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// creationTagKeys lists the container tags that can carry a capture
// timestamp, in trust order.
var creationTagKeys = []string{
	"creation_time",
	"com.apple.quicktime.creationdate",
	"date",
}

// CreationTime returns the best capture-timestamp tag found in the container
// or its streams, or "" when none is present. Values are returned raw; the
// caller validates and parses.
func (r Result) CreationTime() string {
	for _, key := range creationTagKeys {
		if value := lookupTag(r.Format.Tags, key); value != "" {
			return value
		}
	}
	for _, stream := range r.Streams {
		for _, key := range creationTagKeys {
			if value := lookupTag(stream.Tags, key); value != "" {
				return value
			}
		}
	}
	return ""
}

func lookupTag(tags map[string]string, key string) string {
	if tags == nil {
		return ""
	}
	if value, ok := tags[key]; ok {
		return strings.TrimSpace(value)
	}
	// Tag keys are case-insensitive in practice; muxers disagree.
	for k, v := range tags {
		if strings.EqualFold(k, key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
