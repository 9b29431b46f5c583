package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/sommelier-cli/internal/config"
	"github.com/KaramelBytes/sommelier-cli/internal/dataset"
	"github.com/KaramelBytes/sommelier-cli/internal/logging"
	"github.com/KaramelBytes/sommelier-cli/internal/utils"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagDelimiter string

	// Loaded configuration
	cfg    *cfgpkg.Global
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "sommelier",
	Short: "Sommelier: explore wine reviews and predict region and variety from tasting notes",
	Long: `Sommelier cleans a wine-review dataset, profiles it, and trains text classifiers
that predict a wine's province and grape variety from its tasting description.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(debug)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.sommelier/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "input delimiter: ',' | ';' | 'tab' (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c
	if rootCmd.PersistentFlags().Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}
}

func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	return cfg
}

// loadTable reads the data file named by args[0] or data_path.
func loadTable(args []string) (*dataset.Table, error) {
	c := currentConfig()
	path, err := utils.DataFile(args, c.DataPath)
	if err != nil {
		return nil, err
	}
	delim, err := c.DelimiterRune()
	if err != nil {
		return nil, err
	}
	t, err := dataset.Load(path, dataset.LoadOptions{Delimiter: delim})
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded table", zap.String("file", path), zap.Int("rows", t.Len()), zap.Int("columns", len(t.Columns)))
	return t, nil
}

// labeledReviews cleans t and builds composite labels.
func labeledReviews(t *dataset.Table) ([]dataset.Review, dataset.CleanStats, error) {
	cleaned, st := dataset.Clean(t)
	reviews, err := dataset.Reviews(cleaned)
	if err != nil {
		return nil, st, err
	}
	dataset.BuildLabels(reviews, currentConfig().LabelSeparator)
	return reviews, st, nil
}

func printJSON(v any) error {
	b, err := utils.PrettyJSON(v)
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
