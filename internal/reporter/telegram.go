// Package reporter pushes run results to a telegram chat. Reporting is
// optional and best-effort; the scrape itself never depends on it.
package reporter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-pkgz/repeater"
	"github.com/go-pkgz/repeater/strategy"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/osvald0/linkedin-scraper/internal/models"
)

// Summary is the run roll-up sent after the individual postings.
type Summary struct {
	Keywords  string
	Locations []string
	Found     int // postings parsed from detail pages
	Accepted  int // passed the keyword and date filter
	Stored    int // actually new in the store
	Skipped   int // known before this run started
	Failed    int // detail pages that could not be scraped
	Total     int // store size after the run
	Elapsed   time.Duration
}

// Telegram sends messages with retry and backoff around each delivery; a
// single flaky HTTP call should not lose a report.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	rptr   *repeater.Repeater
}

// NewTelegram validates the token against the API and prepares the sender.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		rptr:   repeater.New(&strategy.Backoff{Repeats: 3, Duration: time.Second, Factor: 2, Jitter: true}),
	}, nil
}

// SendPosting announces one newly stored posting.
func (t *Telegram) SendPosting(ctx context.Context, p models.JobPosting) error {
	return t.send(ctx, formatPosting(p))
}

// SendSummary announces the run roll-up.
func (t *Telegram) SendSummary(ctx context.Context, s Summary) error {
	return t.send(ctx, formatSummary(s))
}

func (t *Telegram) send(ctx context.Context, text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	err := t.rptr.Do(ctx, func() error {
		_, err := t.bot.Send(msg)
		return err
	})
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

func formatPosting(p models.JobPosting) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💼 <b>%s</b>\n", esc(p.Title))
	fmt.Fprintf(&b, "🏢 %s\n", esc(p.Company))
	if p.Location != "" {
		fmt.Fprintf(&b, "📍 %s\n", esc(p.Location))
	}
	if p.PostedDateRaw != "" {
		fmt.Fprintf(&b, "📅 %s\n", esc(p.PostedDateRaw))
	}
	fmt.Fprintf(&b, "🔗 <a href=%q>View posting</a>", p.URL)
	return b.String()
}

func formatSummary(s Summary) string {
	var b strings.Builder
	b.WriteString("📊 <b>Scrape finished</b>\n")
	fmt.Fprintf(&b, "🔎 %s in %s\n", esc(s.Keywords), esc(strings.Join(s.Locations, ", ")))
	fmt.Fprintf(&b, "found %d, accepted %d, new %d, already known %d, failed %d\n",
		s.Found, s.Accepted, s.Stored, s.Skipped, s.Failed)
	fmt.Fprintf(&b, "store now holds %d postings, run took %s", s.Total, s.Elapsed.Round(time.Second))
	return b.String()
}

// esc protects scraped text from being read as telegram HTML markup.
func esc(s string) string { return tgbotapi.EscapeText(tgbotapi.ModeHTML, s) }
