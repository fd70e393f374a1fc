package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/kaveri"
	kaverihttp "github.com/fwojciec/kaveri/http"
	kaverislog "github.com/fwojciec/kaveri/slog"
	"github.com/fwojciec/kaveri/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB          string `help:"Path to the local database." default:"kaveri.db" type:"path"`
	SessionFile string `help:"Path to the saved session artifact." default:".kaveri_session.json" type:"path"`
	BaseURL     string `help:"Portal base URL." default:"${base_url}"`
	Verbose     bool   `short:"v" help:"Enable debug logging."`

	Index   IndexCmd   `cmd:"" help:"Crawl the location hierarchy into the local store."`
	Search  SearchCmd  `cmd:"" help:"Run a batch EC search across the selected locations."`
	Session SessionCmd `cmd:"" help:"Import or check the portal session."`
	Stats   StatsCmd   `cmd:"" help:"Show local store statistics."`
}

// Dependencies carries the wired services into command Run methods.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	SessionFile string

	Locations *sqlite.LocationService
	Results   *sqlite.ResultService
	Metadata  *sqlite.MetadataService

	Portal    *kaverihttp.Client
	Hierarchy kaveri.HierarchyClient
	Searches  kaveri.SearchClient
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("kaveri"),
		kong.Description("Batch EC search tool for the Kaveri property registration portal"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Vars{"base_url": kaverihttp.DefaultBaseURL},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	db := sqlite.NewDB(cli.DB)
	if err := db.Open(); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	portal := kaverihttp.NewClient(kaverihttp.WithBaseURL(cli.BaseURL))

	deps := &Dependencies{
		Ctx:         ctx,
		Stdout:      stdout,
		Stderr:      stderr,
		Logger:      logger,
		SessionFile: cli.SessionFile,
		Locations:   sqlite.NewLocationService(db),
		Results:     sqlite.NewResultService(db),
		Metadata:    sqlite.NewMetadataService(db),
		Portal:      portal,
		Hierarchy:   kaverislog.NewLoggingHierarchyClient(portal, logger),
		Searches:    kaverislog.NewLoggingSearchClient(portal, logger),
	}

	return kctx.Run(deps)
}
