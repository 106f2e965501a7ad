package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/empmatch/empmatch/internal/logger"
	"github.com/empmatch/empmatch/internal/skills"

	"github.com/manifoldco/promptui"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptShowMatched = "Show matched skills"
	PromptShowGaps    = "Show missing and extra skills"
	PromptDumpToFile  = "Dump result to file"
	PromptExit        = "Exit"
)

var errExit = errors.New("exit requested")

var matchPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowMatched, PromptShowGaps, PromptDumpToFile, PromptExit},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score a CV skill file against a job skill file",
	Run: func(cmd *cobra.Command, _ []string) {
		runMatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("cv", "", "JSON file with CV skills")
	matchCmd.Flags().String("job", "", "JSON file with job skills")
	matchCmd.Flags().StringP("output", "o", "", "write the result JSON to this file")
	matchCmd.Flags().BoolP("yes", "y", false, "print the result and exit without the interactive prompt")

	for _, flag := range []string{"cv", "job"} {
		if err := matchCmd.MarkFlagRequired(flag); err != nil {
			log.Fatalf("marking %s flag required: %v", flag, err)
		}
	}
}

func runMatch(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	cvSkills, err := loadSkillFile(cmd.Flag("cv").Value.String())
	if err != nil {
		logger.Fatal("loading cv skills", zap.Error(err))
	}

	jobSkills, err := loadSkillFile(cmd.Flag("job").Value.String())
	if err != nil {
		logger.Fatal("loading job skills", zap.Error(err))
	}

	logger.Info("matching skills",
		zap.Int("cv_skills", len(cvSkills)),
		zap.Int("job_skills", len(jobSkills)),
	)

	client, err := newGenAIClient(ctx, config)
	if err != nil {
		logger.Fatal("creating gemini client", zap.Error(err))
	}

	embedder := newEmbedder(client, config, logger)

	result := skills.Match(ctx, cvSkills, jobSkills, embedder, config.matchThresholds(), logger)

	logger.Info("match finished",
		zap.Float64("match_score", result.MatchScore),
		zap.Int("matched", len(result.MatchedSkills)),
		zap.Int("missing", len(result.MissingSkills)),
		zap.Int("extra", len(result.ExtraSkills)),
	)

	if cmd.Flag("yes").Value.String() == "true" {
		if err := emitJSON(result, cmd.Flag("output").Value.String()); err != nil {
			logger.Fatal("writing result", zap.Error(err))
		}
		return
	}

	for {
		_, action, err := matchPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleMatchAction(action, result, cmd.Flag("output").Value.String(), logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleMatchAction(action string, result *skills.MatchResult, output string, logger *zap.Logger) error {
	switch action {
	case PromptShowMatched:
		pretty, _ := json.MarshalIndent(result.MatchedSkills, "", "  ")
		logger.Info(string(pretty), zap.Float64("match_score", result.MatchScore))
		return nil
	case PromptShowGaps:
		logger.Info("skill gaps",
			zap.Strings("missing_skills", result.MissingSkills),
			zap.Strings("extra_skills", result.ExtraSkills),
		)
		return nil
	case PromptDumpToFile:
		filename, err := dumpResult(result, output)
		if err != nil {
			return fmt.Errorf("dump result to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func dumpResult(result *skills.MatchResult, output string) (string, error) {
	if output != "" {
		return output, emitJSON(result, output)
	}

	file, err := os.CreateTemp("", app+"-match-*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}

	if _, err := file.Write(append(pretty, '\n')); err != nil {
		return "", err
	}

	return file.Name(), nil
}

// skillFile is the on-disk shape produced by the extract command.
type skillFile struct {
	Standardized []string `mapstructure:"standardized"`
	Raw          []string `mapstructure:"raw"`
}

// loadSkillFile reads a skill list from a JSON file. Both a bare string array
// and the extract result object are accepted; for the latter the raw list is
// used, falling back to the standardized one.
func loadSkillFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	switch parsed.(type) {
	case []any:
		var list []string
		if err := mapstructure.Decode(parsed, &list); err != nil {
			return nil, fmt.Errorf("decode skill list from %s: %w", path, err)
		}
		return list, nil
	case map[string]any:
		var file skillFile
		if err := mapstructure.Decode(parsed, &file); err != nil {
			return nil, fmt.Errorf("decode skill file %s: %w", path, err)
		}
		if len(file.Raw) > 0 {
			return file.Raw, nil
		}
		return file.Standardized, nil
	default:
		return nil, fmt.Errorf("unsupported skill file format in %s", path)
	}
}
