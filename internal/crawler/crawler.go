// Package crawler harvests training profiles from the public player pages of
// a cricket statistics site.
package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/kapu/player-generator-go/internal/domain"
	"github.com/kapu/player-generator-go/internal/util"
	"github.com/kapu/player-generator-go/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL   = "http://www.espncricinfo.com"
	listingPath      = "/ci/content/player/caps.html"
	defaultUserAgent = "Mozilla/5.0 (compatible; PlayerGenerator/1.0)"
)

type Config struct {
	BaseURL          string
	UserAgent        string
	Concurrency      int
	Delay            time.Duration
	Timeout          time.Duration
	FailureThreshold int
	BreakerTimeout   time.Duration
}

type Crawler struct {
	cfg        Config
	base       *url.URL
	httpClient *http.Client
	breaker    *util.CircuitBreaker
	logger     *zap.Logger
}

func New(cfg Config, logger *zap.Logger) (*Crawler, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid crawler base url: %w", err)
	}

	return &Crawler{
		cfg:        cfg,
		base:       base,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    util.NewCircuitBreaker("crawler", cfg.FailureThreshold, cfg.BreakerTimeout, logger),
		logger:     logger,
	}, nil
}

// ListingURL is the page listing every test player of a nationality.
func (c *Crawler) ListingURL(nationalityID int) string {
	u := *c.base
	u.Path = listingPath
	q := url.Values{}
	q.Set("class", "1")
	q.Set("country", strconv.Itoa(nationalityID))
	u.RawQuery = q.Encode()
	return u.String()
}

// Crawl fetches every listed player of each nationality. Individual player
// failures are logged and skipped; a failed listing aborts the crawl.
// Profiles come back grouped by nationality in listing order.
func (c *Crawler) Crawl(ctx context.Context, nationalityIDs []int) ([]domain.TrainingProfile, error) {
	profiles := make([]domain.TrainingProfile, 0, 512)

	for _, id := range nationalityIDs {
		listingURL := c.ListingURL(id)
		doc, err := c.fetchDocument(ctx, listingURL)
		if err != nil {
			return nil, fmt.Errorf("listing for nationality %d: %w", id, err)
		}

		links := ParseListing(doc, c.base)
		c.logger.Info("Listing fetched",
			zap.Int("nationality_id", id),
			zap.Int("players", len(links)))

		profiles = append(profiles, c.fetchPlayers(ctx, id, links)...)

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	c.logger.Info("Crawl completed", zap.Int("profiles", len(profiles)))
	return profiles, nil
}

func (c *Crawler) fetchPlayers(ctx context.Context, nationalityID int, links []PlayerLink) []domain.TrainingProfile {
	results := make([]*domain.TrainingProfile, len(links))
	var (
		mu     sync.Mutex
		failed int
	)

	p := pool.New().WithMaxGoroutines(c.cfg.Concurrency)
	for idx, link := range links {
		idx, link := idx, link
		p.Go(func() {
			if ctx.Err() != nil {
				return
			}
			profile, err := c.fetchPlayer(ctx, nationalityID, link)
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				c.logger.Warn("Failed to fetch player",
					zap.String("url", link.URL),
					zap.Error(err))
				return
			}
			results[idx] = profile
			c.pause(ctx)
		})
	}
	p.Wait()

	profiles := make([]domain.TrainingProfile, 0, len(links))
	for _, profile := range results {
		if profile != nil {
			profiles = append(profiles, *profile)
		}
	}

	if failed > 0 {
		c.logger.Warn("Some players could not be fetched",
			zap.Int("nationality_id", nationalityID),
			zap.Int("failed", failed),
			zap.Int("fetched", len(profiles)))
	}
	return profiles
}

func (c *Crawler) fetchPlayer(ctx context.Context, nationalityID int, link PlayerLink) (*domain.TrainingProfile, error) {
	doc, err := c.fetchDocument(ctx, link.URL)
	if err != nil {
		return nil, err
	}

	page := ParsePlayerPage(doc)
	if page.FullName == "" {
		return nil, errors.NewCrawlError("player page has no full name", link.URL, 422, nil)
	}

	return &domain.TrainingProfile{
		NationalityID: nationalityID,
		Surname:       link.Surname,
		KnownAs:       page.KnownAs,
		FullName:      page.FullName,
		Biography:     page.Biography,
	}, nil
}

func (c *Crawler) fetchDocument(ctx context.Context, target string) (*goquery.Document, error) {
	if !c.breaker.CanExecute() {
		return nil, errors.NewCrawlError("circuit open, skipping request", target, 503, nil)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.breaker.RecordFailure()
		return nil, errors.NewCrawlError("HTTP request failed", target, 502, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			c.breaker.RecordFailure()
		}
		return nil, errors.NewCrawlError(fmt.Sprintf("unexpected status code: %d", resp.StatusCode), target, resp.StatusCode, nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.NewCrawlError("HTML parse failed", target, 502, err)
	}

	c.breaker.RecordSuccess()
	return doc, nil
}

func (c *Crawler) pause(ctx context.Context) {
	if c.cfg.Delay <= 0 {
		return
	}
	timer := time.NewTimer(c.cfg.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
