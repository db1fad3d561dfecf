// Package validation checks local file paths used by the command line tools.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"pollscope/internal/exporter"
)

// FileValidator validates export destinations
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateOutputDirectory ensures dir exists or can be created and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

// ValidateExportPath checks that path can receive an export and returns the
// format implied by its extension.
func (v *FileValidator) ValidateExportPath(path string) (exporter.Format, error) {
	format, err := exporter.ParseFormat(filepath.Ext(path))
	if err != nil {
		v.logger.Error("Unsupported export extension",
			slog.String("file", path),
			slog.String("extension", filepath.Ext(path)))
		return "", fmt.Errorf("file %s: %w", path, err)
	}

	// Excel lock files
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return "", fmt.Errorf("file %s is a temporary Excel file", path)
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return "", fmt.Errorf("%s is a directory, not a file", path)
	}

	if err := v.ValidateOutputDirectory(filepath.Dir(path)); err != nil {
		return "", err
	}
	return format, nil
}
