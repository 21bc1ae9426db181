// Package browser owns the playwright stack for a run: driver, chromium,
// context and page, acquired in order and torn down in reverse. Session
// cookies are applied on startup so a previous login can be reused.
package browser

import (
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/playwright-community/playwright-go"
)

// Options configures the session.
type Options struct {
	Headless    bool
	CookiesFile string // optional, applied when the file exists
	NavTimeout  time.Duration
}

// Session is a live browser with one open page.
type Session struct {
	pw   *playwright.Playwright
	brow playwright.Browser
	bctx playwright.BrowserContext
	page playwright.Page
}

// NewSession installs chromium if it is missing, launches it and opens a
// page. Saved cookies are applied best-effort; a stale or unreadable
// cookie file only costs a fresh login, not the run.
func NewSession(opts Options) (*Session, error) {
	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
		return nil, fmt.Errorf("install chromium: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	brow, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	bctx, err := brow.NewContext()
	if err != nil {
		_ = brow.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("new browser context: %w", err)
	}

	if opts.CookiesFile != "" {
		applyCookies(bctx, opts.CookiesFile)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = brow.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("new page: %w", err)
	}
	if opts.NavTimeout > 0 {
		page.SetDefaultTimeout(float64(opts.NavTimeout.Milliseconds()))
	}

	return &Session{pw: pw, brow: brow, bctx: bctx, page: page}, nil
}

// Page returns the session's single page.
func (s *Session) Page() playwright.Page { return s.page }

// Context returns the browser context, needed for cookie snapshots.
func (s *Session) Context() playwright.BrowserContext { return s.bctx }

// Close tears the stack down in reverse order. The first error is
// returned, later ones are only logged.
func (s *Session) Close() error {
	var first error
	if err := s.bctx.Close(); err != nil {
		first = fmt.Errorf("close browser context: %w", err)
	}
	if err := s.brow.Close(); err != nil {
		if first == nil {
			first = fmt.Errorf("close browser: %w", err)
		} else {
			log.Printf("[WARN] close browser: %v", err)
		}
	}
	if err := s.pw.Stop(); err != nil {
		if first == nil {
			first = fmt.Errorf("stop playwright: %w", err)
		} else {
			log.Printf("[WARN] stop playwright: %v", err)
		}
	}
	return first
}

func applyCookies(bctx playwright.BrowserContext, path string) {
	cookies, err := LoadCookies(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[WARN] can't load cookies from %s: %v", path, err)
		}
		return
	}
	if len(cookies) == 0 {
		return
	}
	if err := bctx.AddCookies(cookies); err != nil {
		log.Printf("[WARN] can't apply saved cookies: %v", err)
		return
	}
	log.Printf("[DEBUG] applied %d saved cookies from %s", len(cookies), path)
}
