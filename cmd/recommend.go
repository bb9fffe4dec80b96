package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexflow/statrev/internal/models"
	"github.com/lexflow/statrev/internal/output"
	"github.com/lexflow/statrev/internal/recommend"
)

var (
	recommendMinPriority string
	recommendCategory    string
	recommendNoHistory   bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <old.yaml> <new.yaml>",
	Short: "Generate review recommendations for a statute change",
	Long: `Diff two versions of a statute and run the recommendation rules over
the result. Previously saved diffs of the same statute are used for
historical pattern matching unless --no-history is set.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return recommendRun(args[0], args[1])
	},
}

func init() {
	recommendCmd.Flags().StringVar(&recommendMinPriority, "min-priority", "", "Only show recommendations at or above: low, medium, high, critical")
	recommendCmd.Flags().StringVar(&recommendCategory, "category", "", "Only show recommendations in this category")
	recommendCmd.Flags().BoolVar(&recommendNoHistory, "no-history", false, "Skip historical pattern matching")
	rootCmd.AddCommand(recommendCmd)
}

func recommendRun(oldPath, newPath string) error {
	d, err := computeDiff(oldPath, newPath)
	if err != nil {
		return err
	}

	// History is best-effort: a missing database just disables the
	// historical rule group.
	var historical []*models.StatuteDiff
	if !recommendNoHistory {
		if s, err := getStore(); err == nil {
			historical, _ = s.ListDiffsByStatute(context.Background(), d.StatuteID)
		}
	}

	recs := recommend.Analyze(d, historical)

	if recommendMinPriority != "" {
		min, ok := models.ParsePriority(recommendMinPriority)
		if !ok {
			return fmt.Errorf("unknown priority: %s", recommendMinPriority)
		}
		recs = recommend.FilterByPriority(recs, min)
	}
	if recommendCategory != "" {
		recs = recommend.FilterByCategory(recs, models.Category(recommendCategory))
	}
	recs = recommend.SortByPriority(recs)

	if len(recs) == 0 {
		ui.Success("No recommendations for this change")
		return nil
	}

	ui.Info("%d recommendation(s) for statute %s", len(recs), output.Cyan(d.StatuteID))
	for _, r := range recs {
		fmt.Fprintln(ui.Out)
		fmt.Fprintf(ui.Out, "%s [%s] %s\n", output.PriorityColor(r.Priority), r.Category, r.Title)
		fmt.Fprintf(ui.Out, "  %s\n", r.Description)
		ui.VerboseLog("rationale: %s", r.Rationale)
		if r.SuggestedAction != "" {
			fmt.Fprintf(ui.Out, "  → %s\n", r.SuggestedAction)
		}
		ui.VerboseLog("confidence: %.2f", r.Confidence)
	}

	return nil
}
