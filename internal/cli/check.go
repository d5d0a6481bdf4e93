package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/sportcheck/internal/pipeline"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	checkLimit    int
	checkMaxWords int
	checkOut      string
	checkTimeout  time.Duration
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <claim>",
	Short: "Verify a single sports claim",
	Long: `Check runs the full verification pipeline once:
- Extract entities (team, player, event, date) from the claim
- Search the web for matching coverage
- Summarize each result, falling back to its title and snippet
- Ask the language model for a verdict grounded in the summaries

Example:
  sportcheck check "Team A won the 2023 championship on 2023-06-01"
  sportcheck check "Player B scored a hat-trick in the final" --limit 3 --out result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().IntVar(&checkLimit, "limit", 0, "search results to use (default: search.limit)")
	checkCmd.Flags().IntVar(&checkMaxWords, "max-words", 0, "summary budget per result (default: summarize.max_words)")
	checkCmd.Flags().StringVar(&checkOut, "out", "", "write the JSON result to a file instead of stdout")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 3*time.Minute, "overall check timeout")
}

func runCheck(cmd *cobra.Command, args []string) error {
	applyCheckFlags()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	checker, err := pipeline.NewFromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = checker.Close() }()

	resp, err := checker.Check(ctx, args[0])
	if err != nil {
		return eris.Wrap(err, "check failed")
	}

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return eris.Wrap(err, "marshal result")
	}

	if checkOut == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.WriteFile(checkOut, append(data, '\n'), 0o644); err != nil {
		return eris.Wrap(err, "write result")
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote result: %s (%s)\n", checkOut, resp.Verdict)
	return nil
}

func applyCheckFlags() {
	if checkLimit > 0 {
		cfg.Search.Limit = checkLimit
	}
	if checkMaxWords > 0 {
		cfg.Summarize.MaxWords = checkMaxWords
	}
}
