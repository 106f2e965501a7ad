package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/empmatch/empmatch/internal/extract"
	"github.com/empmatch/empmatch/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract and standardize skills from a job description or CV text file",
	Run: func(cmd *cobra.Command, _ []string) {
		runExtract(cmd)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("file", "f", "", "text file with the job description or CV")
	extractCmd.Flags().StringP("source", "s", "job", "kind of text in the file: job or cv")
	extractCmd.Flags().StringP("output", "o", "", "write the result JSON to this file instead of stdout")

	if err := extractCmd.MarkFlagRequired("file"); err != nil {
		log.Fatalf("marking file flag required: %v", err)
	}
}

func runExtract(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	source := extract.Source(cmd.Flag("source").Value.String())
	if source != extract.SourceJob && source != extract.SourceCV {
		logger.Fatal("invalid source",
			zap.String("source", string(source)),
			zap.String("hint", "use job or cv"),
		)
	}

	file := cmd.Flag("file").Value.String()
	text, err := os.ReadFile(file)
	if err != nil {
		logger.Fatal("reading input file", zap.Error(err))
	}

	client, err := newGenAIClient(ctx, config)
	if err != nil {
		logger.Fatal("creating gemini client", zap.Error(err))
	}

	extractor := newExtractor(client, config, logger)
	engine := newEngine(client, config, logger)

	logger.Info("extracting skills", zap.String("file", file), zap.String("source", string(source)))

	phrases := extractor.Phrases(ctx, source, string(text))

	result, err := engine.Standardize(ctx, phrases, config.extractThresholds(source))
	if err != nil {
		logger.Fatal("standardization unavailable", zap.Error(err))
	}

	logger.Info("extraction finished",
		zap.Int("raw", len(result.Raw)),
		zap.Int("standardized", len(result.Standardized)),
	)

	if err := emitJSON(result, cmd.Flag("output").Value.String()); err != nil {
		logger.Fatal("writing result", zap.Error(err))
	}
}

// emitJSON pretty-prints v to stdout, or to a file when path is set.
func emitJSON(v any, path string) error {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	if path == "" {
		fmt.Println(string(pretty))
		return nil
	}

	return os.WriteFile(path, append(pretty, '\n'), 0o644)
}
