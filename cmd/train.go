package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/sommelier-cli/internal/model"
	"github.com/KaramelBytes/sommelier-cli/internal/pipeline"
	"github.com/KaramelBytes/sommelier-cli/internal/report"
)

var (
	trnClasses      string
	trnModel        string
	trnNoCompare    bool
	trnFolds        int
	trnSeed         int64
	trnTestFraction float64
	trnWorkers      int
	trnShow         int
)

var trainCmd = &cobra.Command{
	Use:   "train [file]",
	Short: "Grid-search classifiers that predict province_variety from descriptions",
	Long: `Cleans the reviews, builds composite labels, strips label words from the
descriptions, keeps the allow-listed classes and grid-searches naive Bayes and
SGD classifiers with stratified k-fold cross-validation on macro F1. Prints the
search table, held-out scores and the top descriptors per class.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, prep, err := trainingSetup(cmd, args, trnClasses, trnModel)
		if err != nil {
			return err
		}
		if trnNoCompare {
			opt.Families = []string{opt.FinalModel}
		}
		fmt.Print(report.CleanSummary(prep.Clean))
		fmt.Printf("Modeling rows: %d across %d classes\n\n", len(prep.Samples), prep.Labels.Len())
		res, err := pipeline.Train(cmd.Context(), prep, opt)
		if err != nil {
			return err
		}
		fmt.Print(res.Markdown(trnShow))
		return nil
	},
}

// trainingSetup loads and prepares the data and merges flag overrides into
// the configured training options.
func trainingSetup(cmd *cobra.Command, args []string, classList, final string) (pipeline.Options, *pipeline.Prepared, error) {
	c := currentConfig()
	opt, err := c.PipelineOptions(classList)
	if err != nil {
		return opt, nil, err
	}
	if final != "" {
		switch f := strings.ToLower(final); f {
		case model.FamilyNB, model.FamilySGD:
			opt.FinalModel = f
		default:
			return opt, nil, fmt.Errorf("unsupported --model: %s (use nb or sgd)", final)
		}
	}
	f := cmd.Flags()
	if f.Changed("folds") {
		opt.Folds = trnFolds
	}
	if f.Changed("seed") {
		opt.Seed = trnSeed
	}
	if f.Changed("test-fraction") {
		opt.TestFraction = trnTestFraction
	}
	if f.Changed("workers") {
		opt.Workers = trnWorkers
	}
	opt.Logger = logger

	t, err := loadTable(args)
	if err != nil {
		return opt, nil, err
	}
	prep, err := pipeline.Prepare(t, opt.Separator, opt.Classes)
	if err != nil {
		return opt, nil, err
	}
	logger.Info("prepared", zap.String("classes", classList), zap.Int("samples", len(prep.Samples)), zap.Int("labels", prep.Labels.Len()))
	return opt, prep, nil
}

// addTrainingFlags registers the flags shared by train and predict.
func addTrainingFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&trnFolds, "folds", 5, "cross-validation folds (overrides config)")
	cmd.Flags().Int64Var(&trnSeed, "seed", 42, "seed for the held-out split and SGD shuffling (overrides config)")
	cmd.Flags().Float64Var(&trnTestFraction, "test-fraction", 0.2, "held-out fraction, 0 disables (overrides config)")
	cmd.Flags().IntVar(&trnWorkers, "workers", 0, "parallel fold fits (0 = GOMAXPROCS)")
}

func init() {
	rootCmd.AddCommand(trainCmd)
	trainCmd.Flags().StringVar(&trnClasses, "classes", "red", "class allow-list name from config (red, white, ...)")
	trainCmd.Flags().StringVar(&trnModel, "model", "", "final model family: nb | sgd (default from config)")
	trainCmd.Flags().BoolVar(&trnNoCompare, "no-compare", false, "search only the final model family")
	trainCmd.Flags().IntVar(&trnShow, "show", 10, "grid-search candidates shown per family (0 = all)")
	addTrainingFlags(trainCmd)
}
