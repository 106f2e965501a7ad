package cmd

import (
	"context"
	"log"
	"os"

	"github.com/empmatch/empmatch/internal/embedding"
	"github.com/empmatch/empmatch/internal/logger"
	"github.com/empmatch/empmatch/internal/taxonomy"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var embeddingsCmd = &cobra.Command{
	Use:   "embeddings",
	Short: "Manage the taxonomy embedding cache",
}

var embeddingsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Rebuild the taxonomy embedding cache artifact",
	Run: func(_ *cobra.Command, _ []string) {
		runEmbeddingsGenerate()
	},
}

func init() {
	rootCmd.AddCommand(embeddingsCmd)
	embeddingsCmd.AddCommand(embeddingsGenerateCmd)
}

func runEmbeddingsGenerate() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	client, err := newGenAIClient(ctx, config)
	if err != nil {
		logger.Fatal("creating gemini client", zap.Error(err))
	}

	entries := taxonomy.Load(config.taxonomyFile(), logger)
	embedder := newEmbedder(client, config, logger)
	cachePath := config.embeddingsFile()

	// Drop the existing artifact so the build is forced.
	if err := os.Remove(cachePath); err != nil && !os.IsNotExist(err) {
		logger.Fatal("removing existing embeddings file", zap.Error(err))
	}

	matrix, err := embedding.LoadOrBuildMatrix(ctx, cachePath, entries, embedder, logger)
	if err != nil {
		logger.Fatal("generating taxonomy embeddings", zap.Error(err))
	}

	rows, cols := matrix.Dims()
	logger.Info("generated taxonomy embeddings",
		zap.String("filename", cachePath),
		zap.Int("entries", rows),
		zap.Int("dimension", cols),
	)
}
