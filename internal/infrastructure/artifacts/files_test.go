package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFilesWriteAndReplace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	f := NewFiles(filepath.Join(dir, "reports", "prompt.txt"), filepath.Join(dir, "reports", "mood_report.md"))
	ctx := context.Background()

	path, err := f.WritePrompt(ctx, "первый")
	if err != nil {
		t.Fatalf("write prompt: %v", err)
	}
	if _, err := f.WritePrompt(ctx, "второй"); err != nil {
		t.Fatalf("rewrite prompt: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read prompt: %v", err)
	}
	if string(raw) != "второй" {
		t.Fatalf("expected replaced content, got %q", raw)
	}

	reportPath, err := f.WriteReport(ctx, "# Отчет")
	if err != nil {
		t.Fatalf("write report: %v", err)
	}
	if filepath.Base(reportPath) != "mood_report.md" {
		t.Fatalf("unexpected report path %s", reportPath)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "reports"))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected only the two artifacts, found %d entries", len(entries))
	}
}

func TestFilesEmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := NewFiles("", "").WriteReport(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty path")
	}
}
