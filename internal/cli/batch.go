package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/lexguard/internal/model"
	"github.com/ppiankov/lexguard/internal/pipeline"
	"github.com/ppiankov/lexguard/internal/worker"
)

var (
	concurrency  int
	listFile     string
	outputDir    string
	fileTimeout  time.Duration
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [paths...]",
	Short: "Analyse many contracts in parallel",
	Long: `Batch analyses many contract files concurrently:
- Accepts files and directories (searched recursively) or a list file
- Analyses files in parallel with a configurable worker count
- Stores every contract and optionally writes a report per contract

Example:
  lexguard batch ./contracts
  lexguard batch nda.txt msa.md --output-dir ./reports
  lexguard batch --list contracts.txt --concurrency 4 --timeout 2m`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&listFile, "list", "", "file with contract paths, one per line")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "write one report per contract to this directory")
	batchCmd.Flags().DurationVar(&fileTimeout, "timeout", 2*time.Minute, "timeout for each contract")
	batchCmd.Flags().DurationVar(&batchTimeout, "batch-timeout", 30*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && listFile == "" {
		return fmt.Errorf("no input: pass files, directories or --list")
	}

	paths, err := worker.ExpandPaths(args)
	if err != nil {
		return err
	}
	if listFile != "" {
		listed, err := worker.ReadPathsFromFile(listFile)
		if err != nil {
			return fmt.Errorf("read list: %w", err)
		}
		paths = append(paths, listed...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no supported contract files found")
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	workers := concurrency
	if workers <= 0 {
		workers = a.cfg.Concurrency.Workers
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  LexGuard Batch Analysis\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Contracts:    %d\n", len(paths))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	if outputDir != "" {
		fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	}
	fmt.Fprintf(os.Stderr, "  Timeout:      %v per contract\n", fileTimeout)
	if a.cfg.LLM.Enabled() {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", a.cfg.LLM.Provider, a.cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	processor := worker.NewBatchProcessor(a.pipeline, workers, fileTimeout)
	results := processor.ProcessFiles(ctx, paths)

	successCount := 0
	failureCount := 0
	highRisk := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}
		successCount++

		c := result.Contract
		if outputDir != "" {
			reportPath := filepath.Join(outputDir, reportName(c.Filename, c.ID, a.renderer.Extension()))
			if err := pipeline.WriteFile(reportPath, func(w io.Writer) error { return a.renderer.Contract(w, c) }); err != nil {
				fmt.Fprintf(os.Stderr, "✗ %s: failed to write report: %v\n", result.Path, err)
				continue
			}
		}

		counts := model.RiskCounts(c.Clauses)[model.RiskHigh]
		highRisk += counts
		fmt.Fprintf(os.Stderr, "✓ %s → %s (%d clauses, %d high risk, %v)\n",
			result.Path, c.ID, len(c.Clauses), counts, result.Duration.Round(time.Millisecond))
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:      %d contracts\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:    %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:   %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  High risk:  %d clauses\n", highRisk)
	if outputDir != "" {
		fmt.Fprintf(os.Stderr, "  Output:     %s\n", outputDir)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d contracts failed", failureCount)
	}
	return nil
}

// reportName builds a file name from the contract file name and a short
// id prefix so that equal names in different directories do not collide
func reportName(filename, id, ext string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = sanitizeFilename(base)
	if base == "" {
		base = "contract"
	}
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return base + "-" + short + ext
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "-",
)

// sanitizeFilename sanitizes a string for use as a filename
func sanitizeFilename(s string) string {
	s = filenameReplacer.Replace(strings.TrimSpace(s))

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}
