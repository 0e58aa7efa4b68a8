package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"MoodScanner/internal/ports"
)

// Files writes the prompt and report as UTF-8 text files, replacing earlier runs.
type Files struct {
	promptPath string
	reportPath string
}

var _ ports.ArtifactWriter = (*Files)(nil)

// NewFiles binds the two artifact locations.
func NewFiles(promptPath, reportPath string) *Files {
	return &Files{promptPath: promptPath, reportPath: reportPath}
}

// WritePrompt stores the prompt and returns its path.
func (f *Files) WritePrompt(_ context.Context, prompt string) (string, error) {
	return f.promptPath, writeAtomic(f.promptPath, prompt)
}

// WriteReport stores the report and returns its path.
func (f *Files) WriteReport(_ context.Context, report string) (string, error) {
	return f.reportPath, writeAtomic(f.reportPath, report)
}

// writeAtomic renames a sibling temp file over path so readers never see a partial file.
func writeAtomic(path, content string) error {
	if path == "" {
		return fmt.Errorf("artifact path is empty")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
