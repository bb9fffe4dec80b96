package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lexflow/statrev/internal/diffengine"
	"github.com/lexflow/statrev/internal/models"
	"github.com/lexflow/statrev/internal/output"
	"github.com/lexflow/statrev/internal/statutes"
)

var (
	diffSave        bool
	diffVersionInfo string
)

var diffCmd = &cobra.Command{
	Use:   "diff <old.yaml> <new.yaml>",
	Short: "Compare two versions of a statute",
	Long: `Compare two versions of the same statute and report the changes and
their assessed impact. Both files must describe the same statute id.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return diffRun(args[0], args[1])
	},
}

func init() {
	diffCmd.Flags().BoolVar(&diffSave, "save", false, "Persist the diff for history-aware recommendations")
	diffCmd.Flags().StringVar(&diffVersionInfo, "version-info", "", "Free-text version label to record on the diff")
	rootCmd.AddCommand(diffCmd)
}

func diffRun(oldPath, newPath string) error {
	d, err := computeDiff(oldPath, newPath)
	if err != nil {
		return err
	}

	printDiff(d)

	if diffSave {
		s, err := getStore()
		if err != nil {
			return err
		}
		if err := s.SaveDiff(context.Background(), d); err != nil {
			return fmt.Errorf("save diff: %w", err)
		}
		ui.Success("Saved diff %s", d.ID)
	}

	return nil
}

// computeDiff loads both statute files and diffs them.
func computeDiff(oldPath, newPath string) (*models.StatuteDiff, error) {
	oldDoc, err := statutes.Load(oldPath)
	if err != nil {
		return nil, err
	}
	newDoc, err := statutes.Load(newPath)
	if err != nil {
		return nil, err
	}

	d, err := diffengine.Diff(oldDoc, newDoc)
	if err != nil {
		return nil, err
	}
	d.VersionInfo = diffVersionInfo
	return d, nil
}

func printDiff(d *models.StatuteDiff) {
	if len(d.Changes) == 0 {
		ui.Success("No changes between versions of %s", d.StatuteID)
		return
	}

	ui.Info("%d change(s) in statute %s", len(d.Changes), output.Cyan(d.StatuteID))

	table := ui.Table([]string{"TYPE", "TARGET", "DESCRIPTION"})
	for _, c := range d.Changes {
		table.Append([]string{string(c.Type), c.Target.Render(), c.Description})
	}
	_ = table.Render()

	fmt.Fprintln(ui.Out)
	ui.Info("Severity: %s", output.SeverityColor(d.Impact.Severity))
	if d.Impact.AffectsEligibility {
		ui.Warning("Eligibility criteria affected")
	}
	if d.Impact.AffectsOutcome {
		ui.Warning("Statute outcome affected")
	}
	if d.Impact.DiscretionChanged {
		ui.Warning("Discretion logic changed")
	}
	if len(d.Impact.Notes) > 0 {
		ui.VerboseLog("Notes: %s", strings.Join(d.Impact.Notes, "; "))
	}
}
