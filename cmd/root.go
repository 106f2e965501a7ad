package cmd

import (
	"errors"
	"log"

	"github.com/empmatch/empmatch/internal/extract"
	"github.com/empmatch/empmatch/internal/skills"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "empmatch"

	defaultTaxonomyFile   = "data/esco_skills.json"
	defaultEmbeddingsFile = "data/esco_embeddings.npy"
)

type Config struct {
	Taxonomy *TaxonomyConfig `mapstructure:"taxonomy"`
	Gemini   *GeminiConfig   `mapstructure:"gemini"`
	Extract  *ExtractConfig  `mapstructure:"extract"`
	Match    *ThresholdsConfig
}

type TaxonomyConfig struct {
	File           string `mapstructure:"file"`
	EmbeddingsFile string `mapstructure:"embeddings-file"`
}

type GeminiConfig struct {
	APIKey         string `mapstructure:"api-key"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
	MaxRetries     int    `mapstructure:"max-retries"`
	MaxLogLength   int    `mapstructure:"max-log-length"`
}

type ExtractConfig struct {
	Job *ThresholdsConfig `mapstructure:"job"`
	CV  *ThresholdsConfig `mapstructure:"cv"`
}

type ThresholdsConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity-threshold"`
	FuzzyThreshold      int     `mapstructure:"fuzzy-threshold"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "empmatch is a cli for extracting, standardizing and matching skills from job descriptions and CVs",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("gemini.api-key-file", "EMPMATCH_GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding EMPMATCH_GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is empmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)

		// We can't proceed if the config file parsed with error.
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app + ".yaml")

	// All keys have built-in defaults, so a missing config file is fine.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}

	return config, nil
}

// taxonomyFile and embeddingsFile fall back to the conventional data/ paths.
func (c *Config) taxonomyFile() string {
	if c.Taxonomy != nil && c.Taxonomy.File != "" {
		return c.Taxonomy.File
	}
	return defaultTaxonomyFile
}

func (c *Config) embeddingsFile() string {
	if c.Taxonomy != nil && c.Taxonomy.EmbeddingsFile != "" {
		return c.Taxonomy.EmbeddingsFile
	}
	return defaultEmbeddingsFile
}

func (c *Config) gemini() *GeminiConfig {
	if c.Gemini != nil {
		return c.Gemini
	}
	return &GeminiConfig{}
}

// extractThresholds resolves per-source thresholds, falling back to the
// built-in defaults when the config leaves them unset.
func (c *Config) extractThresholds(source extract.Source) skills.Thresholds {
	defaults := skills.JobExtraction
	var override *ThresholdsConfig

	if source == extract.SourceCV {
		defaults = skills.CVExtraction
	}

	if c.Extract != nil {
		if source == extract.SourceCV {
			override = c.Extract.CV
		} else {
			override = c.Extract.Job
		}
	}

	return resolveThresholds(defaults, override)
}

func (c *Config) matchThresholds() skills.Thresholds {
	return resolveThresholds(skills.Matching, c.Match)
}

func resolveThresholds(defaults skills.Thresholds, override *ThresholdsConfig) skills.Thresholds {
	if override == nil {
		return defaults
	}

	th := defaults
	if override.SimilarityThreshold > 0 {
		th.Similarity = override.SimilarityThreshold
	}
	if override.FuzzyThreshold > 0 {
		th.Fuzzy = override.FuzzyThreshold
	}

	return th
}
