// Package cli implements the playergen commands.
package cli

import (
	"fmt"
	"os"

	"github.com/kapu/player-generator-go/internal/config"
	"github.com/kapu/player-generator-go/internal/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logLevel     string
	trainingFile string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:           "playergen",
	Short:         "Fictional cricket player generator",
	Long:          "Generates reproducible fictional cricket player profiles from Markov models trained on real player biographies.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")
	RootCmd.PersistentFlags().StringVarP(&trainingFile, "training-file", "t", "", "Train from this JSONL file instead of the configured source")
}

// Execute runs the root command and reports failures on stderr.
func Execute() int {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if trainingFile != "" {
		cfg.Training.Source = config.SourceFile
		cfg.Training.File = trainingFile
	}
	return cfg, nil
}

// newLogger honours --log-level, then fallback. One-shot commands pass a
// quiet fallback so their output stays readable.
func newLogger(cfg *config.Config, fallback string) (*zap.Logger, error) {
	level := fallback
	if logLevel != "" {
		level = logLevel
	}
	return util.NewLogger(level, cfg.Logging.File)
}
