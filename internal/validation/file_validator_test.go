package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pollscope/internal/exporter"
	"pollscope/internal/shared/testutil"
)

func TestFileValidator_ValidateExportPath(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		want          exporter.Format
		errorContains string
	}{
		{
			name:      "csv in existing directory",
			setupFunc: func(t *testing.T) string { return filepath.Join(t.TempDir(), "ranking.csv") },
			want:      exporter.FormatCSV,
		},
		{
			name:      "xlsx with upper case extension",
			setupFunc: func(t *testing.T) string { return filepath.Join(t.TempDir(), "comparison.XLSX") },
			want:      exporter.FormatXLSX,
		},
		{
			name:      "missing parent is created",
			setupFunc: func(t *testing.T) string { return filepath.Join(t.TempDir(), "out", "nested", "ranking.csv") },
			want:      exporter.FormatCSV,
		},
		{
			name:          "unsupported extension",
			setupFunc:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "ranking.json") },
			errorContains: "unsupported export format",
		},
		{
			name:          "excel lock file",
			setupFunc:     func(t *testing.T) string { return filepath.Join(t.TempDir(), "~$comparison.xlsx") },
			errorContains: "temporary Excel file",
		},
		{
			name: "path is a directory",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "export.csv")
				require.NoError(t, os.Mkdir(dir, 0o755))
				return dir
			},
			errorContains: "is a directory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			v := NewFileValidator(logger)

			got, err := v.ValidateExportPath(tt.setupFunc(t))
			if tt.errorContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)

	dir := filepath.Join(t.TempDir(), "exports")
	require.NoError(t, v.ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "write probe must be removed")
	assert.True(t, handler.ContainsMessage("Output directory validated"))
}

func TestFileValidator_ValidateOutputDirectory_BlockedByFile(t *testing.T) {
	v := NewFileValidator(nil)

	file := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	err := v.ValidateOutputDirectory(filepath.Join(file, "sub"))
	assert.Error(t, err)
}
