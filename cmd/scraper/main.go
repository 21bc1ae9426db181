package main

import (
	"context"
	"fmt"
	"os"
	"time"

	log "github.com/go-pkgz/lgr"
	flags "github.com/umputun/go-flags"

	"github.com/osvald0/linkedin-scraper/internal/browser"
	"github.com/osvald0/linkedin-scraper/internal/config"
	"github.com/osvald0/linkedin-scraper/internal/dedup"
	"github.com/osvald0/linkedin-scraper/internal/filter"
	"github.com/osvald0/linkedin-scraper/internal/models"
	"github.com/osvald0/linkedin-scraper/internal/reporter"
	"github.com/osvald0/linkedin-scraper/internal/scraper/linkedin"
	"github.com/osvald0/linkedin-scraper/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		if flags.WroteHelp(err) {
			fmt.Println(err)
			os.Exit(0)
		}
		log.Printf("[ERROR] configuration failed: %v", err)
		os.Exit(2)
	}
	setupLogs(cfg.Debug)

	log.Printf("[INFO] 🚀 starting scrape, keywords %q, locations %v, window %s",
		cfg.Keywords, cfg.Locations, cfg.Window.Name)

	if err := run(cfg); err != nil {
		log.Printf("[ERROR] run failed: %v", err)
		os.Exit(1)
	}
	log.Printf("[INFO] 🏁 execution finished")
}

// run owns the whole scrape so every acquired resource is released by a
// defer even when a step fails; main only translates the error into an
// exit code.
func run(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()

	started := time.Now()

	st, err := store.Open(cfg.Store, cfg.StorePath())
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Printf("[WARN] store close: %v", err)
		}
	}()

	known, err := st.KnownURLs(ctx)
	if err != nil {
		return fmt.Errorf("load known urls: %w", err)
	}
	index := dedup.NewIndex(known...)
	log.Printf("[INFO] 📚 store %s holds %d postings", cfg.StorePath(), index.Len())

	sess, err := browser.NewSession(browser.Options{
		Headless:    cfg.Headless,
		CookiesFile: cfg.CookiesFile,
		NavTimeout:  cfg.NavTimeout,
	})
	if err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Printf("[WARN] browser close: %v", err)
		}
	}()
	log.Printf("[INFO] ✅ browser ready, headless=%v", cfg.Headless)

	lk := linkedin.New(cfg, index)
	if err := lk.Authenticate(ctx, sess.Page()); err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	res, err := lk.Scrape(ctx, sess.Page())
	if err != nil {
		return fmt.Errorf("scrape: %w", err)
	}
	log.Printf("[INFO] 📦 scraped %d postings (%d already known, %d failed) over %d pages",
		len(res.Postings), res.Skipped, len(res.Failed), res.Pages)

	criteria := filter.New(cfg.Contains, cfg.NonContains, cfg.Window)
	now := time.Now()
	var accepted []models.JobPosting
	for _, p := range res.Postings {
		ok, reason := criteria.Accept(p, now)
		if !ok {
			log.Printf("[DEBUG] skipped (%s): %q at %s", reason, p.Title, p.Company)
			continue
		}
		accepted = append(accepted, p)
	}
	log.Printf("[INFO] 🧮 filter accepted %d of %d postings", len(accepted), len(res.Postings))

	var fresh []models.JobPosting
	for _, p := range accepted {
		inserted, err := st.Save(ctx, models.NewRecord(p))
		if err != nil {
			log.Printf("[WARN] can't save %s: %v", p.URL, err)
			continue
		}
		if inserted {
			index.Add(p.URL)
			fresh = append(fresh, p)
		}
	}
	for _, rec := range res.Failed {
		if _, err := st.Save(ctx, rec); err != nil {
			log.Printf("[WARN] can't save failed record %s: %v", rec.URL, err)
		}
	}

	total, err := st.Count(ctx)
	if err != nil {
		log.Printf("[WARN] can't count stored postings: %v", err)
	}
	log.Printf("[INFO] 💾 stored %d new postings, store now holds %d", len(fresh), total)

	report(ctx, cfg, fresh, reporter.Summary{
		Keywords:  cfg.Keywords,
		Locations: cfg.Locations,
		Found:     len(res.Postings),
		Accepted:  len(accepted),
		Stored:    len(fresh),
		Skipped:   res.Skipped,
		Failed:    len(res.Failed),
		Total:     total,
		Elapsed:   time.Since(started),
	})
	return nil
}

// report sends the new postings and the roll-up when telegram is
// configured. Delivery problems are logged, never fatal.
func report(ctx context.Context, cfg *config.Config, fresh []models.JobPosting, sum reporter.Summary) {
	if cfg.TelegramToken == "" {
		return
	}
	tg, err := reporter.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		log.Printf("[WARN] telegram reporter unavailable: %v", err)
		return
	}
	for _, p := range fresh {
		if err := tg.SendPosting(ctx, p); err != nil {
			log.Printf("[WARN] can't send posting %s: %v", p.URL, err)
		}
		time.Sleep(time.Second) // telegram throttles bursts, space messages out
	}
	if err := tg.SendSummary(ctx, sum); err != nil {
		log.Printf("[WARN] can't send summary: %v", err)
	}
	log.Printf("[INFO] 🤖 report sent, %d postings", len(fresh))
}

func setupLogs(dbg bool) {
	if dbg {
		log.Setup(log.Debug, log.Msec, log.CallerFunc, log.CallerPkg, log.CallerFile)
		return
	}
	log.Setup(log.Msec)
}
