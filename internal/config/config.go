package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/sommelier-cli/internal/pipeline"
	"github.com/KaramelBytes/sommelier-cli/internal/selection"
	"github.com/KaramelBytes/sommelier-cli/internal/utils"
)

// EnvPrefix prefixes environment overrides, e.g. SOMMELIER_TRAIN_SEED.
const EnvPrefix = "SOMMELIER"

// Train holds the training run settings.
type Train struct {
	CVFolds        int     `mapstructure:"cv_folds" yaml:"cv_folds"`
	TestFraction   float64 `mapstructure:"test_fraction" yaml:"test_fraction"`
	Seed           int64   `mapstructure:"seed" yaml:"seed"`
	TopDescriptors int     `mapstructure:"top_descriptors" yaml:"top_descriptors"`
	FinalModel     string  `mapstructure:"final_model" yaml:"final_model"`
	Workers        int     `mapstructure:"workers" yaml:"workers"`
}

// Grid holds the hyperparameter grids per family.
type Grid struct {
	Vectorizer selection.VectorizerGrid `mapstructure:"vectorizer" yaml:"vectorizer"`
	NB         selection.NBGrid         `mapstructure:"nb" yaml:"nb"`
	SGD        selection.SGDGrid        `mapstructure:"sgd" yaml:"sgd"`
}

// Global configuration structure.
type Global struct {
	DataPath       string              `mapstructure:"data_path" yaml:"data_path"`
	Delimiter      string              `mapstructure:"delimiter" yaml:"delimiter"`
	LabelSeparator string              `mapstructure:"label_separator" yaml:"label_separator"`
	Classes        map[string][]string `mapstructure:"classes" yaml:"classes"`
	Train          Train               `mapstructure:"train" yaml:"train"`
	Grid           Grid                `mapstructure:"grid" yaml:"grid"`
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		LabelSeparator: "_",
		Classes:        pipeline.DefaultClassLists(),
		Train: Train{
			CVFolds:        5,
			TestFraction:   0.2,
			Seed:           42,
			TopDescriptors: 10,
			FinalModel:     "nb",
		},
		Grid: Grid{
			Vectorizer: selection.VectorizerGrid{
				NGramMax:  []int{1, 2},
				StopWords: []string{"english"},
				MaxDF:     []float64{0.16, 0.5},
				MinDF:     []float64{0.001},
			},
			NB: selection.NBGrid{Alpha: []float64{0.01, 0.04, 0.1, 1.0}},
			SGD: selection.SGDGrid{
				Loss:    []string{"hinge", "modified_huber"},
				Penalty: []string{"l2"},
				Alpha:   []float64{1e-4, 1e-5},
				MaxIter: []int{50},
				Tol:     []float64{1e-3},
			},
		},
	}
}

// DefaultPath is ~/.sommelier/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".sommelier", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.sommelier/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A missing file is not an error;
// an unreadable or malformed one is.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Defaults())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".sommelier"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(c.Classes) == 0 {
		c.Classes = pipeline.DefaultClassLists()
	}
	// class list names are matched case-insensitively
	lists := make(map[string][]string, len(c.Classes))
	for k, l := range c.Classes {
		lists[strings.ToLower(k)] = l
	}
	c.Classes = lists
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper, d *Global) {
	v.SetDefault("data_path", d.DataPath)
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("label_separator", d.LabelSeparator)
	v.SetDefault("classes", d.Classes)
	v.SetDefault("train.cv_folds", d.Train.CVFolds)
	v.SetDefault("train.test_fraction", d.Train.TestFraction)
	v.SetDefault("train.seed", d.Train.Seed)
	v.SetDefault("train.top_descriptors", d.Train.TopDescriptors)
	v.SetDefault("train.final_model", d.Train.FinalModel)
	v.SetDefault("train.workers", d.Train.Workers)
	v.SetDefault("grid.vectorizer.ngram_max", d.Grid.Vectorizer.NGramMax)
	v.SetDefault("grid.vectorizer.stop_words", d.Grid.Vectorizer.StopWords)
	v.SetDefault("grid.vectorizer.max_df", d.Grid.Vectorizer.MaxDF)
	v.SetDefault("grid.vectorizer.min_df", d.Grid.Vectorizer.MinDF)
	v.SetDefault("grid.nb.alpha", d.Grid.NB.Alpha)
	v.SetDefault("grid.sgd.loss", d.Grid.SGD.Loss)
	v.SetDefault("grid.sgd.penalty", d.Grid.SGD.Penalty)
	v.SetDefault("grid.sgd.alpha", d.Grid.SGD.Alpha)
	v.SetDefault("grid.sgd.max_iter", d.Grid.SGD.MaxIter)
	v.SetDefault("grid.sgd.tol", d.Grid.SGD.Tol)
}

// Validate checks the settings a training run depends on.
func (c *Global) Validate() error {
	if c.Train.CVFolds < 2 {
		return fmt.Errorf("train.cv_folds must be >= 2, got %d", c.Train.CVFolds)
	}
	if c.Train.TestFraction < 0 || c.Train.TestFraction >= 1 {
		return fmt.Errorf("train.test_fraction must be in [0,1), got %g", c.Train.TestFraction)
	}
	switch strings.ToLower(c.Train.FinalModel) {
	case "nb", "sgd":
	default:
		return fmt.Errorf("train.final_model must be nb or sgd, got %q", c.Train.FinalModel)
	}
	if _, err := c.DelimiterRune(); err != nil {
		return err
	}
	return nil
}

// DelimiterRune decodes the delimiter setting. "" means auto-detect, "\t"
// and "tab" are tab.
func (c *Global) DelimiterRune() (rune, error) {
	switch c.Delimiter {
	case "":
		return 0, nil
	case `\t`, "tab", "\t":
		return '\t', nil
	}
	r := []rune(c.Delimiter)
	if len(r) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	return r[0], nil
}

// PipelineOptions maps the configuration to training options for the named
// class list.
func (c *Global) PipelineOptions(classList string) (pipeline.Options, error) {
	classes, err := pipeline.ResolveClasses(c.Classes, classList)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Separator:    c.LabelSeparator,
		Classes:      classes,
		Vectorizer:   c.Grid.Vectorizer,
		NB:           c.Grid.NB,
		SGD:          c.Grid.SGD,
		FinalModel:   strings.ToLower(c.Train.FinalModel),
		Folds:        c.Train.CVFolds,
		TestFraction: c.Train.TestFraction,
		Seed:         c.Train.Seed,
		TopN:         c.Train.TopDescriptors,
		Workers:      c.Train.Workers,
	}, nil
}
