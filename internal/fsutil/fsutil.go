// Package fsutil provides small filesystem and formatting helpers shared by the
// service: directory creation, output filename hygiene, and log-friendly
// duration formatting.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultDirPermissions  = 0o750
	invalidCharReplacement = "_"
)

// Time formatting constants.
const (
	secondsInMinute = 60
	secondsInHour   = 3600
	formatSeconds   = "%.1fs"
	formatMinutes   = "%dm %.1fs"
	formatHours     = "%dh %dm"
)

// Audio file extensions the output directory is allowed to serve.
const (
	extWAV  = ".wav"
	extMP3  = ".mp3"
	extFLAC = ".flac"
	extOGG  = ".ogg"
)

// EnsureDir ensures a directory exists at the given path, creating it and any
// missing parents if needed.
func EnsureDir(path string) error {
	_, statErr := os.Stat(path)
	if os.IsNotExist(statErr) {
		mkdirErr := os.MkdirAll(path, defaultDirPermissions)
		if mkdirErr != nil {
			return fmt.Errorf("failed to create directory %s: %w", path, mkdirErr)
		}
	}

	return nil
}

// FormatDuration renders a duration in seconds as a compact human-readable
// string for log lines.
func FormatDuration(seconds float64) string {
	if seconds < secondsInMinute {
		return fmt.Sprintf(formatSeconds, seconds)
	}

	if seconds < secondsInHour {
		minutes := int(seconds) / secondsInMinute
		remainder := seconds - float64(minutes*secondsInMinute)

		return fmt.Sprintf(formatMinutes, minutes, remainder)
	}

	hours := int(seconds) / secondsInHour
	minutes := (int(seconds) % secondsInHour) / secondsInMinute

	return fmt.Sprintf(formatHours, hours, minutes)
}

// IsValidAudioFile reports whether filename has a servable audio extension.
func IsValidAudioFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case extWAV, extMP3, extFLAC, extOGG:
		return true
	default:
		return false
	}
}

// SanitizeFilename replaces path separators and other characters that are
// unsafe in a file name component.
func SanitizeFilename(filename string) string {
	unsafe := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", " "}

	sanitized := filename
	for _, char := range unsafe {
		sanitized = strings.ReplaceAll(sanitized, char, invalidCharReplacement)
	}

	return sanitized
}
