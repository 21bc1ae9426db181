// Package utils holds small helpers shared across the scrapers.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/playwright-community/playwright-go"
)

// Screenshots captures full-page snapshots of failure moments, mostly to
// see what a login page looked like when a headless run got stuck.
type Screenshots struct {
	dir string
}

// NewScreenshots prepares the output directory.
func NewScreenshots(dir string) *Screenshots {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[WARN] can't create screenshot directory %s: %v", dir, err)
	}
	return &Screenshots{dir: dir}
}

// Capture writes a timestamped full-page screenshot. Failures are logged
// and swallowed; losing a screenshot must never change control flow.
func (s *Screenshots) Capture(page playwright.Page, name string) {
	stamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.dir, fmt.Sprintf("%s_%s.png", name, stamp))

	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		log.Printf("[WARN] can't capture screenshot %s: %v", name, err)
		return
	}
	log.Printf("[INFO] 📸 screenshot saved to %s", path)
}
