package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"ReviewScraper/internal/cache"
	"ReviewScraper/internal/database"
	"ReviewScraper/internal/export"
	"ReviewScraper/internal/fetcher"
	"ReviewScraper/internal/models"
	"ReviewScraper/internal/observability"
	"ReviewScraper/internal/scraper"
	"ReviewScraper/internal/scraper/bestbuy"
	"ReviewScraper/internal/scraper/macys"
	"ReviewScraper/pkg/config"
	"ReviewScraper/utils"
)

// App is the main application structure holding all dependencies.
type App struct {
	Config  *config.Config
	Repo    *database.DBRepository
	Fetcher fetcher.Fetcher
	Headers http.Header

	closers []func() error
}

// New opens the database and builds the configured fetcher.
func New(cfg *config.Config) (*App, error) {
	repo, err := database.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	a := &App{
		Config:  cfg,
		Repo:    repo,
		Headers: fetcher.DefaultHeaders(cfg.Scraper.UserAgent),
		closers: []func() error{repo.Close},
	}

	if err := a.buildFetcher(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) buildFetcher() error {
	sc := a.Config.Scraper

	var f fetcher.Fetcher
	switch sc.Fetcher {
	case "browser":
		bf, err := fetcher.NewBrowserFetcher(sc.Headless, sc.Timeout)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, bf.Close)
		f = bf
	default:
		f = fetcher.NewHTTPFetcher(sc.UserAgent, sc.Timeout, sc.RequestsPerSecond)
	}

	if cc := a.Config.Cache; cc.Addr != "" {
		pc := cache.New(cc.Addr, cc.Password, cc.DB)
		if err := pc.Ping(context.Background()); err != nil {
			log.Warn().Err(err).Str("addr", cc.Addr).Msg("page cache unavailable, fetching without it")
			pc.Close()
		} else {
			a.closers = append(a.closers, pc.Close)
			f = &fetcher.Cached{Next: f, Store: pc, TTL: cc.TTL}
		}
	}

	a.Fetcher = f
	return nil
}

// Close releases everything New opened, newest first.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}

// RunBestBuy scrapes every product listed in the Best Buy input file.
func (a *App) RunBestBuy(ctx context.Context) error {
	conf := a.Config.BestBuy
	log.Info().Str("input", conf.InputPath).Msg("--- starting Best Buy task ---")

	urls, err := utils.ReadURLList(conf.InputPath)
	if err != nil {
		return err
	}
	s := bestbuy.New(a.Fetcher, a.Headers, conf)
	return a.runSite(ctx, s, urls, conf.OutputTextPath, conf.OutputJSONPath)
}

// RunMacys scrapes products and reviews through the Macy's product API.
func (a *App) RunMacys(ctx context.Context) error {
	return a.runMacys(ctx, macys.New(a.Fetcher, a.Headers, a.Config.Macys))
}

// RunMacysHTML scrapes the Macy's product pages themselves. No reviews are read.
func (a *App) RunMacysHTML(ctx context.Context) error {
	return a.runMacys(ctx, macys.NewPageScraper(a.Fetcher, a.Headers, a.Config.Macys))
}

func (a *App) runMacys(ctx context.Context, s scraper.Scraper) error {
	conf := a.Config.Macys
	log.Info().Str("input", conf.InputPath).Msg("--- starting Macy's task ---")

	urls, err := utils.ReadURLList(conf.InputPath)
	if err != nil {
		return err
	}
	urls = absoluteURLs(conf.BaseURL, urls)
	if conf.Limit > 0 && len(urls) > conf.Limit {
		urls = urls[:conf.Limit]
	}
	return a.runSite(ctx, s, urls, "", conf.OutputJSONPath)
}

// CollectURLs reads product links off every Macy's listing page and writes
// them to the Macy's input file.
func (a *App) CollectURLs(ctx context.Context) error {
	conf := a.Config.Macys
	log.Info().Str("listings", conf.ListingPath).Msg("--- starting URL collection task ---")

	lines, err := utils.ReadURLList(conf.ListingPath)
	if err != nil {
		return err
	}
	var pages []string
	for _, line := range lines {
		pages = append(pages, utils.SplitGluedURLs(line)...)
	}
	pages = utils.UniqueStrings(pages)

	var collected []string
	for _, page := range pages {
		links, err := macys.CollectProductURLs(ctx, a.Fetcher, page, a.Headers)
		if err != nil {
			log.Warn().Err(err).Str("page", page).Msg("skipping listing page")
			continue
		}
		collected = append(collected, absoluteURLs(conf.BaseURL, links)...)
	}
	collected = utils.UniqueStrings(collected)

	if err := export.WriteURLs(conf.InputPath, collected); err != nil {
		return err
	}
	log.Info().Int("pages", len(pages)).Int("urls", len(collected)).Str("output", conf.InputPath).Msg("URL collection finished")
	return nil
}

// runSite scrapes urls with a bounded number of products in flight and
// writes the results to the sinks. Pages within one product stay sequential.
func (a *App) runSite(ctx context.Context, s scraper.Scraper, urls []string, linesPath, jsonPath string) error {
	if len(urls) == 0 {
		log.Info().Str("site", s.Site()).Msg("no products to scrape")
		return nil
	}

	var lines *export.LineWriter
	if linesPath != "" {
		var err error
		if lines, err = export.OpenLines(linesPath); err != nil {
			return err
		}
		defer lines.Close()
	}

	workers := utils.GetOptimalWorkerCount(a.Config.Scraper.Workers)
	products := a.scrapeAll(ctx, s, urls, workers)

	scraped := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p != nil {
			scraped = append(scraped, *p)
		}
	}

	if lines != nil {
		for _, p := range scraped {
			if err := lines.Write(p); err != nil {
				log.Error().Err(err).Str("url", p.ProductURL).Msg("export failed")
			}
		}
	}

	if jsonPath != "" {
		if err := export.WriteJSON(jsonPath, scraped); err != nil {
			return err
		}
	}

	log.Info().Str("site", s.Site()).Int("requested", len(urls)).Int("scraped", len(scraped)).Msg("--- task finished ---")
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(scraped) == 0 {
		return errors.New("no product could be scraped")
	}
	return nil
}

// scrapeAll returns one entry per url in input order, nil where the product
// failed. Products are saved to the database as they complete.
func (a *App) scrapeAll(ctx context.Context, s scraper.Scraper, urls []string, workers int) []*models.Product {
	results := make([]*models.Product, len(urls))
	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup

	for i, url := range urls {
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Int("remaining", len(urls)-i).Msg("scraping interrupted")
			break
		}
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			defer sem.Release(1)

			product, err := s.ScrapeProduct(ctx, url)
			observability.ObserveProduct(s.Site(), err)
			if err != nil {
				log.Error().Err(err).Str("url", url).Msg("product failed")
				return
			}
			results[i] = &product
			a.save(ctx, product)
		}(i, url)
	}

	wg.Wait()
	return results
}

func (a *App) save(ctx context.Context, product models.Product) {
	if a.Repo == nil {
		return
	}
	if _, err := a.Repo.SaveProduct(ctx, product); err != nil {
		log.Error().Err(err).Str("url", product.ProductURL).Msg("DB save failed")
	}
}

func absoluteURLs(base string, urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if strings.HasPrefix(u, "/") {
			u = strings.TrimSuffix(base, "/") + u
		}
		out = append(out, u)
	}
	return out
}

// Run dispatches a task by name.
func (a *App) Run(ctx context.Context, task string) error {
	switch task {
	case "bestbuy":
		return a.RunBestBuy(ctx)
	case "macys":
		return a.RunMacys(ctx)
	case "macys-html":
		return a.RunMacysHTML(ctx)
	case "collect-urls":
		return a.CollectURLs(ctx)
	default:
		return fmt.Errorf("unknown task: %s", task)
	}
}
