package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/lexguard/internal/model"
)

var (
	analyzeOut     string
	analyzeSummary bool
	analyzeTimeout time.Duration
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyse a contract file and store the result",
	Long: `Analyze reads a contract (.txt, .md, .html) and:
- Splits it into clauses
- Classifies each clause (termination, liability, payment, ...)
- Scores each clause's risk with transparent rules
- Stores the contract so you can ask questions about it later

Example:
  lexguard analyze nda.txt
  lexguard analyze msa.html --summary --out report.md
  lexguard analyze msa.txt --format json --llm openai`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "write the report to a file instead of stdout")
	analyzeCmd.Flags().BoolVar(&analyzeSummary, "summary", false, "append the contract summary")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 5*time.Minute, "overall analysis timeout")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), analyzeTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Analysing: %s\n", args[0])
	}

	contract, err := a.pipeline.Ingest(ctx, args[0])
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	var sum *model.Summary
	if analyzeSummary {
		s := a.pipeline.BuildSummary(ctx, contract.Clauses)
		sum = &s
	}

	write := func(w io.Writer) error {
		return a.renderer.Report(w, contract, sum)
	}

	if err := output(cmd, analyzeOut, write); err != nil {
		return err
	}

	a.logger.Debug("analysis written", zap.String("contract_id", contract.ID), zap.String("out", analyzeOut))
	fmt.Fprintf(os.Stderr, "✓ Stored contract %s (%d clauses)\n", contract.ID, len(contract.Clauses))
	return nil
}
