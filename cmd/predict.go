package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/sommelier-cli/internal/pipeline"
	"github.com/KaramelBytes/sommelier-cli/internal/report"
)

var (
	prdClasses string
	prdModel   string
	prdInput   string
)

var predictCmd = &cobra.Command{
	Use:   "predict <file> [text ...]",
	Short: "Fit the best configuration on <file> and label tasting notes",
	Long: `Runs the training search for the final model family only, then predicts a
province_variety label for each text argument. With --input, texts are read one
per line from a file ("-" for stdin).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		texts := append([]string(nil), args[1:]...)
		if prdInput != "" {
			more, err := readLines(prdInput)
			if err != nil {
				return err
			}
			texts = append(texts, more...)
		}
		if len(texts) == 0 {
			return fmt.Errorf("no texts to predict: pass them as arguments or with --input")
		}
		opt, prep, err := trainingSetup(cmd, args[:1], prdClasses, prdModel)
		if err != nil {
			return err
		}
		opt.Families = []string{opt.FinalModel}
		res, err := pipeline.Train(cmd.Context(), prep, opt)
		if err != nil {
			return err
		}
		labels, err := res.Predictor.Predict(texts)
		if err != nil {
			return err
		}
		fmt.Printf("Run: %s (%s: %s)\n", res.RunID, res.Final, res.Family(res.Final).Fitted.Candidate)
		fmt.Print(report.Predictions(texts, labels))
		return nil
	},
}

func readLines(path string) ([]string, error) {
	f := os.Stdin
	if path != "-" {
		var err error
		if f, err = os.Open(path); err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
	}
	var out []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(predictCmd)
	predictCmd.Flags().StringVar(&prdClasses, "classes", "red", "class allow-list name from config (red, white, ...)")
	predictCmd.Flags().StringVar(&prdModel, "model", "", "model family: nb | sgd (default from config)")
	predictCmd.Flags().StringVarP(&prdInput, "input", "i", "", "file with one text per line, - for stdin")
	addTrainingFlags(predictCmd)
}
