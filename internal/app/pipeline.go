package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/kapu/player-generator-go/internal/config"
	"github.com/kapu/player-generator-go/internal/constants"
	"github.com/kapu/player-generator-go/internal/crawler"
	"github.com/kapu/player-generator-go/internal/domain"
	"github.com/kapu/player-generator-go/internal/service/database"
	"github.com/kapu/player-generator-go/internal/trainingdata"
	"go.uber.org/zap"
)

// crawlFileLayout sorts lexicographically in time order so LatestFile picks
// the newest crawl.
const crawlFileLayout = "20060102T150405"

// ImportFile stores the records of a JSONL training file as a new run.
func ImportFile(ctx context.Context, store database.TrainingStore, path string) (*database.Run, error) {
	profiles, err := trainingdata.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return store.SaveRun(ctx, path, profiles)
}

// CrawlResult describes where a crawl's records were written.
type CrawlResult struct {
	Profiles int
	File     string
	Run      *database.Run
}

// RunCrawl harvests training records for nationalityIDs (all registered
// nationalities when empty), writes them to a new JSONL file in the crawl
// output directory and, when store is set, saves them as a run.
func RunCrawl(ctx context.Context, cfg *config.Config, logger *zap.Logger, nationalityIDs []int, store database.TrainingStore) (*CrawlResult, error) {
	registry, err := domain.NewRegistry(domain.DefaultNationalities())
	if err != nil {
		return nil, err
	}
	if len(nationalityIDs) == 0 {
		for _, n := range registry.All() {
			nationalityIDs = append(nationalityIDs, n.ID)
		}
	}
	for _, id := range nationalityIDs {
		if _, err := registry.ByID(id); err != nil {
			return nil, err
		}
	}

	c, err := crawler.New(crawler.Config{
		BaseURL:          cfg.Crawl.BaseURL,
		UserAgent:        cfg.Crawl.UserAgent,
		Concurrency:      cfg.Crawl.Concurrency,
		Delay:            cfg.Crawl.Delay,
		Timeout:          cfg.Crawl.Timeout,
		FailureThreshold: constants.CircuitBreakerConfig.FailureThreshold,
		BreakerTimeout:   constants.CircuitBreakerConfig.ResetTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	profiles, err := c.Crawl(ctx, nationalityIDs)
	if err != nil {
		return nil, fmt.Errorf("crawl failed: %w", err)
	}

	result := &CrawlResult{
		Profiles: len(profiles),
		File:     filepath.Join(cfg.Crawl.OutputDir, time.Now().UTC().Format(crawlFileLayout)+".jsonl"),
	}
	if err := trainingdata.SaveFile(result.File, profiles); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", result.File, err)
	}

	if store != nil {
		run, err := store.SaveRun(ctx, "crawl:"+cfg.Crawl.BaseURL, profiles)
		if err != nil {
			return nil, fmt.Errorf("failed to store crawl run: %w", err)
		}
		result.Run = run
	}

	logger.Info("Crawl saved",
		zap.Int("profiles", result.Profiles),
		zap.String("file", result.File))

	return result, nil
}
