package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/sommelier-cli/internal/dataset"
	"github.com/KaramelBytes/sommelier-cli/internal/pipeline"
	"github.com/KaramelBytes/sommelier-cli/internal/report"
)

var (
	lblTop     int
	lblClasses string
)

var labelsCmd = &cobra.Command{
	Use:   "labels [file]",
	Short: "Count composite province/variety labels after cleaning",
	Long: `Counts composite labels to help curate class allow-lists. With --classes the
tally is limited to that allow-list and labels absent from the data are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args)
		if err != nil {
			return err
		}
		reviews, _, err := labeledReviews(t)
		if err != nil {
			return err
		}
		tally := dataset.TallyLabels(reviews)
		if lblClasses == "" {
			fmt.Print(report.LabelTally(tally, lblTop))
			return nil
		}
		allow, err := pipeline.ResolveClasses(currentConfig().Classes, lblClasses)
		if err != nil {
			return err
		}
		want := make(map[string]bool, len(allow))
		for _, l := range allow {
			want[l] = true
		}
		var kept []dataset.LabelCount
		for _, c := range tally {
			if want[c.Label] {
				kept = append(kept, c)
				delete(want, c.Label)
			}
		}
		fmt.Print(report.LabelTally(kept, lblTop))
		for _, l := range allow {
			if want[l] {
				fmt.Printf("⚠ %s: not present in data\n", l)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(labelsCmd)
	labelsCmd.Flags().IntVar(&lblTop, "top", 30, "labels shown (0 = all)")
	labelsCmd.Flags().StringVar(&lblClasses, "classes", "", "limit to a named class allow-list (e.g. red, white)")
}
