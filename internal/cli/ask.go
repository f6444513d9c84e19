package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var askTimeout time.Duration

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <contract-id> <question>",
	Short: "Ask a question about a stored contract",
	Long: `Ask routes a question to the most relevant clauses of a stored
contract. Questions about payment, termination, liability, intellectual
property, dates and obligations select clauses by category; anything else
uses semantic retrieval.

Example:
  lexguard ask 3f2a... "What are the payment terms?"
  lexguard ask 3f2a... "Can I end this agreement early?" --llm anthropic`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "overall timeout")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), askTimeout)
	defer cancel()

	question := strings.Join(args[1:], " ")
	answer, err := a.pipeline.Ask(ctx, args[0], question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	return a.renderer.Answer(cmd.OutOrStdout(), answer)
}
