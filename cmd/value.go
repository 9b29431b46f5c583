package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/sommelier-cli/internal/analysis"
)

var (
	valGroupBy  string
	valMinCount int
	valTop      int
	valJSON     bool
)

var valueCmd = &cobra.Command{
	Use:   "value [file]",
	Short: "Summarize points against price by country, province or variety",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadTable(args)
		if err != nil {
			return err
		}
		reviews, _, err := labeledReviews(t)
		if err != nil {
			return err
		}
		rep, err := analysis.Value(reviews, analysis.ValueOptions{GroupBy: valGroupBy, MinCount: valMinCount, Top: valTop})
		if err != nil {
			return err
		}
		if valJSON {
			return printJSON(rep)
		}
		fmt.Print(rep.Markdown(valTop))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(valueCmd)
	def := analysis.DefaultValueOptions()
	valueCmd.Flags().StringVar(&valGroupBy, "group-by", def.GroupBy, "group by country | province | variety")
	valueCmd.Flags().IntVar(&valMinCount, "min-count", def.MinCount, "minimum reviews per group")
	valueCmd.Flags().IntVar(&valTop, "top", def.Top, "rows shown per listing")
	valueCmd.Flags().BoolVar(&valJSON, "json", false, "print the report as JSON")
}
