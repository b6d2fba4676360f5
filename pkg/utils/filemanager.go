// =============================================================================
// Bank Column Mapper - File Manager Utility
// =============================================================================
//
// This module provides file management utilities shared by the profile store
// and the output writers:
//   - Existence checks
//   - Directory management
//   - Atomic file replacement (temp file + rename)
//   - Output file naming
//
// WRITE STRATEGY:
//   - Every write goes to a uniquely named temp file in the target directory
//   - The temp file is renamed over the destination only after a full write
//   - A failed write never leaves a truncated destination behind
//   - Concurrent writers to the same destination: last rename wins
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// EXISTENCE CHECKS
// =============================================================================

// FileExists reports whether path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// DirExists reports whether path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates dir and any missing parents.
//
// RETURNS:
//   - An error if the directory cannot be created.
func EnsureDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// =============================================================================
// ATOMIC WRITES
// =============================================================================

// WriteFileAtomic writes data to path through a temp file and a rename.
//
// PARAMETERS:
//   - path: The destination file. Its directory must already exist.
//   - data: The complete file contents.
//
// RETURNS:
//   - An error if the temp file cannot be written or renamed.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.New().String()))

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file for %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateOutputFileName expands placeholders in an output name format.
//
// PARAMETERS:
//   - format: The name format, e.g. "{stem}_{date}.csv".
//   - params: Extra placeholder values (without braces).
//
// PLACEHOLDERS:
//
//	{uuid}      - A random UUID
//	{timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//	{date}      - Current date (YYYYMMDD)
//	plus every key in params
func GenerateOutputFileName(format string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
