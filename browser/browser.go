// Package browser drives a Chrome session with a persistent profile, so a
// one-time interactive login survives between runs.
package browser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/mempirate/pagemark/log"
)

// Config controls the browser session used to render pages.
type Config struct {
	// ProfileDir persists cookies and local storage between runs.
	ProfileDir string
	// Headless hides the browser window. Keep it false when the target page
	// requires interactive sign-in.
	Headless bool
	// WaitSelector marks loaded content; it is waited for when a login wall
	// is detected.
	WaitSelector string
	// LoginMarker, when present in the page body, means a sign-in wall is
	// showing and the session should wait for the user to authenticate.
	LoginMarker string

	NavTimeout  time.Duration
	AuthTimeout time.Duration
	// SettleDelay gives late-rendering content a chance to appear before
	// the snapshot is taken.
	SettleDelay time.Duration
}

func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		ProfileDir:   filepath.Join(home, ".pagemark-data"),
		WaitSelector: `article, main, div[class*="postContent"]`,
		LoginMarker:  "Sign in",
		NavTimeout:   60 * time.Second,
		AuthTimeout:  60 * time.Second,
		SettleDelay:  2 * time.Second,
	}
}

// Session fetches rendered pages through Chrome.
type Session struct {
	log zerolog.Logger
	cfg Config
}

func NewSession(cfg Config) *Session {
	return &Session{
		log: log.NewLogger("browser"),
		cfg: cfg,
	}
}

// Fetch navigates to url and returns the rendered HTML once the page has
// settled. If a login wall is detected, the window stays open until
// WaitSelector appears or AuthTimeout expires.
func (s *Session) Fetch(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(s.cfg.ProfileDir),
		chromedp.Flag("headless", s.cfg.Headless),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	s.log.Info().Str("url", url).Msg("Navigating")

	navCtx, cancelNav := context.WithTimeout(browserCtx, s.cfg.NavTimeout)
	defer cancelNav()

	var body string
	if err := chromedp.Run(navCtx,
		chromedp.Navigate(url),
		chromedp.OuterHTML("html", &body),
	); err != nil {
		return "", errors.Wrap(err, "failed to load page")
	}

	if s.cfg.LoginMarker != "" && strings.Contains(body, s.cfg.LoginMarker) {
		s.log.Info().Str("selector", s.cfg.WaitSelector).Msg("Login wall detected; complete sign-in in the browser window")

		authCtx, cancelAuth := context.WithTimeout(browserCtx, s.cfg.AuthTimeout)
		defer cancelAuth()

		if err := chromedp.Run(authCtx,
			chromedp.WaitVisible(s.cfg.WaitSelector, chromedp.ByQuery),
		); err != nil {
			return "", errors.Wrap(err, "authentication timed out")
		}
	}

	if s.cfg.SettleDelay > 0 {
		time.Sleep(s.cfg.SettleDelay)
	}

	if err := chromedp.Run(browserCtx,
		chromedp.OuterHTML("html", &body),
	); err != nil {
		return "", errors.Wrap(err, "failed to capture rendered page")
	}

	s.log.Info().Int("bytes", len(body)).Msg("Captured rendered page")

	return body, nil
}
