package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/sommelier-cli/internal/analysis"
	"github.com/KaramelBytes/sommelier-cli/internal/dataset"
	"github.com/KaramelBytes/sommelier-cli/internal/report"
)

var (
	expTopValues int
	expLabels    int
	expJSON      bool
)

var exploreCmd = &cobra.Command{
	Use:   "explore [file]",
	Short: "Profile the raw reviews, clean them and tally composite labels",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args)
		if err != nil {
			return err
		}
		prof := analysis.Profile(t, expTopValues)
		reviews, st, err := labeledReviews(t)
		if err != nil {
			return err
		}
		tally := dataset.TallyLabels(reviews)
		if expJSON {
			return printJSON(struct {
				Profile *analysis.Report     `json:"profile"`
				Clean   dataset.CleanStats   `json:"clean"`
				Labels  []dataset.LabelCount `json:"labels"`
			}{prof, st, tally})
		}
		fmt.Println(prof.Markdown())
		fmt.Println(report.CleanSummary(st))
		fmt.Print(report.LabelTally(tally, expLabels))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)
	exploreCmd.Flags().IntVar(&expTopValues, "top-values", 8, "top values shown per categorical column")
	exploreCmd.Flags().IntVar(&expLabels, "labels", 20, "composite labels shown (0 = all)")
	exploreCmd.Flags().BoolVar(&expJSON, "json", false, "print the report as JSON")
}
