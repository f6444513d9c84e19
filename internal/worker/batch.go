package worker

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/lexguard/internal/ingest"
	"github.com/ppiankov/lexguard/internal/model"
)

// Analyzer ingests a single contract file
type Analyzer interface {
	Ingest(ctx context.Context, path string) (*model.Contract, error)
}

// AnalyzeJob represents one contract file to analyse
type AnalyzeJob struct {
	Path     string
	Analyzer Analyzer
	Timeout  time.Duration
	index    int
}

// Execute analyses the file, bounded by the job timeout when set
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	start := time.Now()
	contract, err := j.Analyzer.Ingest(ctx, j.Path)
	return &AnalyzeResult{
		Path:     j.Path,
		Contract: contract,
		Duration: time.Since(start),
		Error:    err,
		index:    j.index,
	}
}

// AnalyzeResult represents the result of an analyse job
type AnalyzeResult struct {
	Path     string
	Contract *model.Contract
	Duration time.Duration
	Error    error
	index    int
}

// GetError returns the error from the analyse result
func (r *AnalyzeResult) GetError() error {
	return r.Error
}

// BatchProcessor analyses many contract files concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	timeout     time.Duration
}

// NewBatchProcessor creates a batch processor. timeout bounds each file;
// zero means no per-file limit.
func NewBatchProcessor(analyzer Analyzer, concurrency int, timeout time.Duration) *BatchProcessor {
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
		timeout:     timeout,
	}
}

// ProcessFiles analyses the files concurrently. There is one result per
// path, in input order; files never started because ctx ended carry the
// context error.
func (b *BatchProcessor) ProcessFiles(ctx context.Context, paths []string) []*AnalyzeResult {
	if len(paths) == 0 {
		return []*AnalyzeResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, path := range paths {
		if !pool.Submit(&AnalyzeJob{Path: path, Analyzer: b.analyzer, Timeout: b.timeout, index: i}) {
			break
		}
	}

	out := make([]*AnalyzeResult, len(paths))
	for _, result := range pool.Wait() {
		r := result.(*AnalyzeResult)
		out[r.index] = r
	}
	for i, r := range out {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[i] = &AnalyzeResult{Path: paths[i], Error: fmt.Errorf("not started: %w", err), index: i}
		}
	}
	return out
}

// ReadPathsFromFile reads file paths from a list (one per line). Relative
// paths are resolved against the list's directory.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(listPath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}

// ExpandPaths replaces directories with the supported contract files they
// contain, recursively and in lexical order. Files are kept as given.
func ExpandPaths(args []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != arg && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != "" && ingest.Supported(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
	}
	return paths, nil
}
