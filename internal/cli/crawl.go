package cli

import (
	"encoding/json"

	"github.com/kapu/player-generator-go/internal/app"
	"github.com/kapu/player-generator-go/internal/service/database"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Harvest training records from the player pages",
		Long:  "Crawl the player listings, write the records to a new JSONL file in the training directory and optionally store them as a database run.",
		Args:  cobra.NoArgs,
		RunE:  runCrawl,
	}
	cmd.Flags().IntSlice("nationality", nil, "Nationality ids to crawl (default: $CRAWL_NATIONALITIES or all)")
	cmd.Flags().Bool("store", false, "Also save the records as a run in the configured database")

	RootCmd.AddCommand(cmd)
}

func runCrawl(cmd *cobra.Command, _ []string) error {
	ids, _ := cmd.Flags().GetIntSlice("nationality")
	save, _ := cmd.Flags().GetBool("store")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		ids = cfg.Crawl.Nationalities
	}

	logger, err := newLogger(cfg, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var store database.TrainingStore
	if save {
		store, err = app.OpenStore(cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	result, err := app.RunCrawl(cmd.Context(), cfg, logger, ids, store)
	if err != nil {
		logger.Error("Crawl failed", zap.Error(err))
		return err
	}

	out := map[string]any{
		"ok":       true,
		"profiles": result.Profiles,
		"file":     result.File,
	}
	if result.Run != nil {
		out["run_id"] = result.Run.ID
	}
	return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
}
