package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/lexguard/internal/model"
	"github.com/ppiankov/lexguard/internal/pipeline"
)

var (
	summaryOut     string
	clauseCategory string
	clauseLevel    string
)

var summaryCmd = &cobra.Command{
	Use:   "summary <contract-id>",
	Short: "Summarise a stored contract",
	Long: `Summary reports clause counts per category and risk level, the
highest-risk clauses, key payment/termination/liability highlights with
negotiation points, and recommendations.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		s, err := a.pipeline.Summarize(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("summary failed: %w", err)
		}
		return output(cmd, summaryOut, func(w io.Writer) error {
			return a.renderer.Summary(w, s)
		})
	},
}

var clausesCmd = &cobra.Command{
	Use:   "clauses <contract-id>",
	Short: "Show the clauses of a stored contract",
	Long: `Clauses prints every clause with its category, risk level and
the reasons behind its score.

Example:
  lexguard clauses 3f2a... --level high
  lexguard clauses 3f2a... --category payment --format json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.pipeline.Contract(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		filtered, err := filterClauses(c.Clauses, clauseCategory, clauseLevel)
		if err != nil {
			return err
		}
		view := *c
		view.Clauses = filtered
		return a.renderer.Contract(cmd.OutOrStdout(), &view)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored contracts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		infos, err := a.pipeline.List(cmd.Context())
		if err != nil {
			return err
		}
		return a.renderer.List(cmd.OutOrStdout(), infos)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <contract-id>...",
	Short: "Delete stored contracts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		for _, id := range args {
			if err := a.pipeline.Delete(context.WithoutCancel(cmd.Context()), id); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "✓ Deleted %s\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd, clausesCmd, listCmd, deleteCmd)

	summaryCmd.Flags().StringVarP(&summaryOut, "out", "o", "", "write the summary to a file instead of stdout")
	clausesCmd.Flags().StringVar(&clauseCategory, "category", "", "only show clauses of this category")
	clausesCmd.Flags().StringVar(&clauseLevel, "level", "", "only show clauses of this risk level (low, medium, high)")
}

// filterClauses keeps clauses matching the optional category and level
func filterClauses(clauses []model.Clause, category, level string) ([]model.Clause, error) {
	var cat model.Category
	if category != "" {
		var err error
		if cat, err = model.ParseCategory(category); err != nil {
			return nil, err
		}
	}
	lvl := model.RiskLevel(strings.ToLower(strings.TrimSpace(level)))
	if lvl != "" && lvl != model.RiskLow && lvl != model.RiskMedium && lvl != model.RiskHigh {
		return nil, fmt.Errorf("unknown risk level: %q (supported: low, medium, high)", level)
	}

	out := []model.Clause{}
	for _, c := range clauses {
		if cat != "" && c.Category != cat {
			continue
		}
		if lvl != "" && c.RiskLevel != lvl {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// output writes to path when set, otherwise to the command's stdout
func output(cmd *cobra.Command, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(cmd.OutOrStdout())
	}
	if err := pipeline.WriteFile(path, fn); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", path)
	return nil
}
