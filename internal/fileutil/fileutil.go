// Package fileutil implements the archive-side file operations of the
// process stage: atomic copies and format conversion.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// CopyFileAtomic copies src to dest via a temporary file in the
// destination directory, so a crash never leaves a partial file under
// the final name.
func CopyFileAtomic(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("failed to rename into place: %w", err)
	}
	return nil
}

// Convert transcodes src into dest with ffmpeg, which handles both
// HEIC-to-JPEG and MOV-to-MP4. The source file is left untouched.
func Convert(src, dest string) error {
	cmd := exec.Command("ffmpeg", "-y", "-i", src, dest)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed for %s: %w", src, err)
	}
	return nil
}
