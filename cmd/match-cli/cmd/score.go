// cmd/match-cli/cmd/score.go
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"recruitment-workers/internal/matching"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a candidate against a requisition",
	RunE: func(c *cobra.Command, _ []string) error {
		return runScore(c, c.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	addDocumentFlags(scoreCmd)
	scoreCmd.Flags().StringP("strategy", "s", matching.StrategyContains, "match strategy: contains or exact")
	scoreCmd.Flags().StringP("output", "o", outputTable, "output format: table or json")
}

func runScore(c *cobra.Command, out io.Writer) error {
	log := newLogger()
	defer log.Sync()

	strategy, _ := c.Flags().GetString("strategy")
	format, _ := c.Flags().GetString("output")
	if format != outputTable && format != outputJSON {
		return fmt.Errorf("unknown output format %q", format)
	}

	scorer, err := matching.ScorerForStrategy(strategy)
	if err != nil {
		return err
	}

	docs, err := readDocuments(c)
	if err != nil {
		return err
	}

	result, err := validateDocuments(docs)
	if err != nil {
		return err
	}
	if !result.Valid {
		for _, msg := range result.GetErrorMessages() {
			log.Warn("validation error", zap.String("error", msg))
		}
		return fmt.Errorf("documents failed validation: %s", strings.Join(result.GetErrorMessages(), "; "))
	}

	candidate, requisition, err := decodeDocuments(docs)
	if err != nil {
		return err
	}

	match := scorer.Analyze(candidate, requisition)
	log.Debug("scored", zap.String("strategy", strategy), zap.String("result", match.String()))

	if format == outputJSON {
		return writeJSONResult(out, match)
	}
	return writeTable(out, match)
}

func writeJSONResult(out io.Writer, match matching.MatchResult) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(match)
}

func writeTable(out io.Writer, match matching.MatchResult) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tITEM\tSTATUS\tDETAILS")
	for _, m := range match.Matches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Category, m.Item, m.Status, m.Details)
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "SCORE\t%d%%\t(%d/%d points)\t\n", match.Score, match.EarnedPoints, match.TotalPoints)
	return tw.Flush()
}
