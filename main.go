package main

import (
	"context"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/net/html"

	"github.com/mempirate/pagemark/browser"
	"github.com/mempirate/pagemark/cache"
	"github.com/mempirate/pagemark/convert"
	"github.com/mempirate/pagemark/document"
	"github.com/mempirate/pagemark/extract"
	"github.com/mempirate/pagemark/log"
	"github.com/mempirate/pagemark/store"
)

var cli struct {
	URL string `arg:"" optional:"" env:"TARGET_URL" help:"Page to convert. Falls back to TARGET_URL."`

	OutputDir    string        `env:"MARKDOWN_OUTPUT_DIR" default:"markdown_output" help:"Directory for markdown output."`
	Name         string        `env:"TARGET_FILENAME" help:"Base filename. Derived from the page when empty."`
	Headless     bool          `help:"Run the browser without a window. Leave off when sign-in is needed."`
	ProfileDir   string        `help:"Browser profile directory, persists login state between runs."`
	WaitSelector string        `help:"Selector that marks loaded content behind a login wall."`
	LoginMarker  string        `help:"Body text that indicates a login wall."`
	NavTimeout   time.Duration `default:"60s" help:"Page load timeout."`
	AuthTimeout  time.Duration `default:"60s" help:"Interactive sign-in timeout."`
	CachePath    string        `env:"PAGEMARK_CACHE" help:"Path of the page digest cache. Disabled when empty."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("pagemark"),
		kong.Description("Fetch a rendered web page and convert it to a versioned markdown file."),
	)

	logger := log.NewLogger("main")

	if cli.URL == "" {
		logger.Fatal().Msg("No target URL; pass one as an argument or set TARGET_URL")
	}

	target, err := url.Parse(cli.URL)
	if err != nil || target.Scheme == "" {
		logger.Fatal().Err(err).Str("url", cli.URL).Msg("Invalid target URL")
	}

	logger.Info().Str("url", target.String()).Msg("Processing URL")

	fileStore := store.NewVersionedStore(os.ExpandEnv(cli.OutputDir))
	if err := fileStore.Init(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to create output directory")
	}

	cfg := browser.DefaultConfig()
	cfg.Headless = cli.Headless
	if cli.ProfileDir != "" {
		cfg.ProfileDir = os.ExpandEnv(cli.ProfileDir)
	}
	if cli.WaitSelector != "" {
		cfg.WaitSelector = cli.WaitSelector
	}
	if cli.LoginMarker != "" {
		cfg.LoginMarker = cli.LoginMarker
	}
	cfg.NavTimeout = cli.NavTimeout
	cfg.AuthTimeout = cli.AuthTimeout

	session := browser.NewSession(cfg)

	page, err := session.Fetch(context.Background(), target.String())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to fetch page")
	}

	parsed, err := html.Parse(strings.NewReader(page))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to parse rendered HTML")
	}

	root, err := extract.FindContentRoot(parsed)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to locate main content")
	}

	markdown, err := convert.NewConverter(target).Convert(root)
	if err != nil {
		logger.Fatal().Err(err).Msg("Conversion failed")
	}

	doc := &document.Document{
		Content: markdown,
		Metadata: document.Metadata{
			Title:         document.PageTitle(parsed),
			Source:        target.String(),
			ProcessedTime: time.Now().Format("2006-01-02"),
		},
	}

	name := cli.Name
	if name == "" {
		name = doc.DeriveName(target)
	}

	rendered, err := doc.ToMarkdown()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to assemble document")
	}

	var pages *cache.PageCache
	if cli.CachePath != "" {
		pages, err = cache.NewPageCache(os.ExpandEnv(cli.CachePath))
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to open page cache, continuing without it")
			pages = nil
		} else {
			defer pages.Close()
		}
	}

	digest := cache.Sum([]byte(rendered))
	if pages != nil {
		if prev, ok := pages.Digest(target.String()); ok && prev == digest {
			logger.Info().Msg("Page content unchanged since last run")
		}
	}

	path, created, err := fileStore.Store(name, []byte(rendered))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to store markdown")
	}

	if pages != nil {
		if err := pages.SetDigest(target.String(), digest); err != nil {
			logger.Warn().Err(err).Msg("Failed to update page cache")
		}
	}

	if created {
		logger.Info().Str("path", path).Msg("Markdown saved")
	} else {
		logger.Info().Str("path", path).Msg("No new version created")
	}
}
