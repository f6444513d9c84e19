package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/lexguard/internal/model"
)

// MockAnalyzer implements Analyzer
type MockAnalyzer struct {
	ShouldError bool
	Delay       time.Duration
	calls       int32
}

func (m *MockAnalyzer) Ingest(ctx context.Context, path string) (*model.Contract, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.ShouldError {
		return nil, errors.New("analyse error")
	}
	return &model.Contract{ID: "id-" + filepath.Base(path), Filename: filepath.Base(path)}, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBatchProcessor_ProcessFiles(t *testing.T) {
	analyzer := &MockAnalyzer{Delay: 5 * time.Millisecond}
	processor := NewBatchProcessor(analyzer, 2, 0)

	paths := []string{"a.txt", "b.txt", "c.txt", "d.txt"}
	results := processor.ProcessFiles(context.Background(), paths)

	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	for i, res := range results {
		if res.Path != paths[i] {
			t.Errorf("result %d: expected path %s, got %s", i, paths[i], res.Path)
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Path, res.Error)
		}
		if res.Contract == nil || res.Contract.Filename != paths[i] {
			t.Errorf("expected contract for %s", paths[i])
		}
	}
}

func TestBatchProcessor_ProcessFiles_Error(t *testing.T) {
	processor := NewBatchProcessor(&MockAnalyzer{ShouldError: true}, 2, 0)

	results := processor.ProcessFiles(context.Background(), []string{"a.txt"})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Error == nil {
		t.Error("expected error, got nil")
	}
	if results[0].Contract != nil {
		t.Error("expected nil contract on error")
	}
}

func TestBatchProcessor_ProcessFiles_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockAnalyzer{}, 2, 0)

	results := processor.ProcessFiles(context.Background(), []string{})
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_PerFileTimeout(t *testing.T) {
	processor := NewBatchProcessor(&MockAnalyzer{Delay: time.Second}, 1, 20*time.Millisecond)

	results := processor.ProcessFiles(context.Background(), []string{"slow.txt"})

	if !errors.Is(results[0].Error, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", results[0].Error)
	}
}

func TestBatchProcessor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	analyzer := &MockAnalyzer{}
	processor := NewBatchProcessor(analyzer, 1, 0)

	results := processor.ProcessFiles(ctx, []string{"a.txt", "b.txt"})

	if len(results) != 2 {
		t.Fatalf("expected one result per path, got %d", len(results))
	}
	for _, res := range results {
		if !errors.Is(res.Error, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", res.Path, res.Error)
		}
	}
	if atomic.LoadInt32(&analyzer.calls) != 0 {
		t.Errorf("expected no analyses after cancel, got %d", analyzer.calls)
	}
}

func TestReadPathsFromFile(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "contracts.list")
	writeFile(t, list, `nda.txt
# comment
/abs/msa.md

sub/sow.html
nda.txt   `)

	paths, err := ReadPathsFromFile(list)
	if err != nil {
		t.Fatalf("ReadPathsFromFile failed: %v", err)
	}

	expected := []string{filepath.Join(dir, "nda.txt"), "/abs/msa.md", filepath.Join(dir, "sub", "sow.html")}
	if len(paths) != len(expected) {
		t.Fatalf("expected %d paths, got %d: %v", len(expected), len(paths), paths)
	}
	for i, p := range paths {
		if p != expected[i] {
			t.Errorf("expected path %s at index %d, got %s", expected[i], i, p)
		}
	}
}

func TestReadPathsFromFile_NonExistent(t *testing.T) {
	_, err := ReadPathsFromFile("non_existent_file.list")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "x")
	writeFile(t, filepath.Join(dir, "a.md"), "x")
	writeFile(t, filepath.Join(dir, "scan.pdf"), "x")
	writeFile(t, filepath.Join(dir, "nested", "c.html"), "x")
	writeFile(t, filepath.Join(dir, ".git", "d.txt"), "x")
	single := filepath.Join(t.TempDir(), "single.txt")
	writeFile(t, single, "x")

	paths, err := ExpandPaths([]string{dir, single, dir})
	if err != nil {
		t.Fatalf("ExpandPaths failed: %v", err)
	}

	expected := []string{
		filepath.Join(dir, "a.md"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "nested", "c.html"),
		single,
	}
	if strings.Join(paths, ",") != strings.Join(expected, ",") {
		t.Errorf("expected %v, got %v", expected, paths)
	}

	if _, err := ExpandPaths([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestAnalyzeResult_GetError(t *testing.T) {
	r1 := &AnalyzeResult{Path: "a.txt"}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("analyse failed")
	r2 := &AnalyzeResult{Path: "a.txt", Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}
