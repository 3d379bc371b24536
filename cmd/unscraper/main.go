package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/unscraper"
	"github.com/fwojciec/unscraper/extract"
	"github.com/fwojciec/unscraper/gemini"
	"github.com/fwojciec/unscraper/goquery"
	"github.com/fwojciec/unscraper/groq"
	"github.com/fwojciec/unscraper/harvest"
	"github.com/fwojciec/unscraper/htmltomarkdown"
	"github.com/fwojciec/unscraper/rod"
	"github.com/fwojciec/unscraper/scrape"
	uslog "github.com/fwojciec/unscraper/slog"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := loadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "error: reading .env: %s\n", err)
		os.Exit(1)
	}

	m := NewMain()
	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

// loadEnv reads environment defaults from path when it exists. Variables
// already set in the environment win.
func loadEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Main represents the program.
type Main struct {
	// Browser is launched for commands that harvest pages.
	Browser *rod.BrowserManager

	// Extractor, when set, is used instead of the browser-backed service.
	Extractor unscraper.Extractor
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.Browser != nil {
		return m.Browser.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments. Errors are reported on
// stderr before being returned.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: slog.New(slog.DiscardHandler),
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("unscraper"),
		kong.Description("Extract structured records from paginated web pages with an LLM."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		fmt.Fprintln(stderr, "error: no command specified. Run 'unscraper --help' to see available commands")
		return unscraper.Errorf(unscraper.EINVALID, "no command specified")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return err
	}
	if cli.Debug {
		deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	// Reject bad input before launching a browser.
	if strings.HasPrefix(kongCtx.Command(), "extract") {
		req := cli.Extract.request()
		if err := req.Validate(); err != nil {
			fmt.Fprintf(stderr, "error: %s\n", unscraper.ErrorMessage(err))
			return err
		}
	}

	if m.Extractor == nil {
		svc, err := m.newService(cli, deps.Logger)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			fmt.Fprintf(stderr, "error: %s\n", err)
			return err
		}
		defer m.Close()
		m.Extractor = svc
	}
	deps.Extractor = m.Extractor

	return kongCtx.Run(deps)
}

// newService wires the browser, harvester and model provider.
func (m *Main) newService(cli *CLI, logger *slog.Logger) (*scrape.Service, error) {
	browser, err := rod.NewBrowserManager()
	if err != nil {
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	m.Browser = browser

	var harvester unscraper.Harvester = harvest.NewHarvester(
		browser,
		goquery.NewCleaner(),
		htmltomarkdown.NewConverter(),
		harvest.WithLogger(logger),
	)
	provider := newProvider(cli)
	newExtractor := func(c unscraper.Completer) unscraper.ChunkExtractor {
		return extract.NewClient(c)
	}

	if cli.Debug {
		harvester = uslog.NewLoggingHarvester(harvester, logger)
		provider = uslog.NewLoggingCompleterProvider(provider, logger)
		newExtractor = func(c unscraper.Completer) unscraper.ChunkExtractor {
			return uslog.NewLoggingChunkExtractor(extract.NewClient(c), logger)
		}
	}

	return &scrape.Service{
		Harvester:    harvester,
		Provider:     provider,
		ChunkSize:    cli.ChunkSize,
		MaxAttempts:  cli.MaxAttempts,
		Concurrency:  cli.Concurrency,
		RPS:          cli.RPS,
		NewExtractor: newExtractor,
		Logger:       logger,
	}, nil
}

func newProvider(cli *CLI) unscraper.CompleterProvider {
	switch cli.Provider {
	case providerGemini:
		return gemini.NewProvider(gemini.WithDefaultAPIKey(cli.GeminiAPIKey))
	default:
		return groq.NewProvider(groq.WithDefaultAPIKey(cli.GroqAPIKey))
	}
}
