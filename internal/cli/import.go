package cli

import (
	"encoding/json"

	"github.com/kapu/player-generator-go/internal/app"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(&cobra.Command{
		Use:   "import <file.jsonl>",
		Short: "Store a JSONL training file as a database run",
		Long:  "Store a JSONL training file as a new run in the configured database (SQLite unless TRAINING_SOURCE=postgres).",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	})

	RootCmd.AddCommand(&cobra.Command{
		Use:   "runs",
		Short: "List stored training runs, newest first",
		Args:  cobra.NoArgs,
		RunE:  runRuns,
	})
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, "warn")
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := app.OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := app.ImportFile(cmd.Context(), store, args[0])
	if err != nil {
		return err
	}

	return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
		"ok":       true,
		"run_id":   run.ID,
		"profiles": run.Profiles,
	})
}

func runRuns(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, "warn")
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := app.OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(cmd.Context())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(runs)
}
