package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-advisor/internal/interfaces"
	"portfolio-advisor/internal/logger"
	"portfolio-advisor/internal/portfolio"
	"portfolio-advisor/internal/report"
	"portfolio-advisor/internal/scheduler"
	"portfolio-advisor/internal/store"
	"portfolio-advisor/internal/trace"
	"portfolio-advisor/internal/types"
)

const usage = `usage: advisor <command> [flags]

commands:
  import       import holdings from a CSV file
  import-kite  import holdings from a Zerodha Kite account
  sessions     list stored upload sessions
  analyze      analyze a session and print recommendations
  watch        analyze a session on the configured schedule
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := initializeSystem(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = trace.Shutdown(shutdownCtx)
	}()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "import":
		err = runImport(ctx, args)
	case "import-kite":
		err = runImportKite(ctx, args)
	case "sessions":
		err = runSessions(ctx, args)
	case "analyze":
		err = runAnalyze(ctx, args)
	case "watch":
		err = runWatch(ctx, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Command failed", err, "command", os.Args[1])
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type commonFlags struct {
	config  string
	session string
}

func newFlagSet(name string, c *commonFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&c.config, "config", "config.yaml", "path to the YAML config")
	fs.StringVar(&c.session, "session", "", "upload session id")
	return fs
}

// setup loads the config and opens the holdings store.
func setup(ctx context.Context, c commonFlags) (*store.Config, interfaces.HoldingsStore, error) {
	cfg, err := loadConfig(ctx, c.config)
	if err != nil {
		return nil, nil, err
	}
	hs, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, hs, nil
}

func runImport(ctx context.Context, args []string) error {
	var c commonFlags
	fs := newFlagSet("import", &c)
	file := fs.String("file", "", "holdings CSV (Ticker, Quantity, PurchasePrice, PurchaseDate)")
	fs.Parse(args)
	if *file == "" {
		return errors.New("-file is required")
	}

	_, hs, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer hs.Close()

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := portfolio.Import(f)
	if err != nil {
		return err
	}
	res.SessionID = sessionOrNew(c.session)
	if err := hs.Replace(ctx, res.SessionID, res.Holdings); err != nil {
		return err
	}

	logger.Info(ctx, "Holdings imported", "session_id", res.SessionID, "processed", res.Processed(), "rejected", len(res.Errors))
	fmt.Printf("session: %s\nimported %d holdings\n", res.SessionID, res.Processed())
	for _, e := range res.Errors {
		if e.Field != "" {
			fmt.Printf("  row %d (%s): %s\n", e.Row, e.Field, e.Error)
		} else {
			fmt.Printf("  row %d: %s\n", e.Row, e.Error)
		}
	}
	return nil
}

func runImportKite(ctx context.Context, args []string) error {
	var c commonFlags
	fs := newFlagSet("import-kite", &c)
	fs.Parse(args)

	cfg, hs, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer hs.Close()

	src, err := portfolio.NewKiteSource(portfolio.KiteParams{
		APIKey:      cfg.Kite.APIKey,
		AccessToken: cfg.Kite.AccessToken,
		Exchange:    cfg.Kite.Exchange,
	})
	if err != nil {
		return err
	}
	holdings, err := src.Holdings(ctx)
	if err != nil {
		return err
	}

	session := sessionOrNew(c.session)
	if err := hs.Replace(ctx, session, holdings); err != nil {
		return err
	}
	fmt.Printf("session: %s\nimported %d holdings from kite\n", session, len(holdings))
	return nil
}

func runSessions(ctx context.Context, args []string) error {
	var c commonFlags
	fs := newFlagSet("sessions", &c)
	fs.Parse(args)

	_, hs, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer hs.Close()

	ids, err := hs.Sessions(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func runAnalyze(ctx context.Context, args []string) error {
	var c commonFlags
	fs := newFlagSet("analyze", &c)
	asJSON := fs.Bool("json", false, "print the run as JSON")
	fs.Parse(args)
	if c.session == "" {
		return errors.New("-session is required")
	}

	cfg, hs, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer hs.Close()

	svc, err := initializeService(ctx, cfg, hs)
	if err != nil {
		return err
	}
	summary, err := svc.Run(ctx, c.session)
	if err != nil {
		return err
	}
	return printSummary(summary, *asJSON)
}

func runWatch(ctx context.Context, args []string) error {
	var c commonFlags
	fs := newFlagSet("watch", &c)
	fs.Parse(args)
	if c.session == "" {
		return errors.New("-session is required")
	}

	cfg, hs, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer hs.Close()

	svc, err := initializeService(ctx, cfg, hs)
	if err != nil {
		return err
	}

	sched := scheduler.New(ctx, "analyze", func(ctx context.Context) error {
		summary, err := svc.Run(ctx, c.session)
		if err != nil {
			return err
		}
		return printSummary(summary, false)
	})
	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		return err
	}
	if cfg.Schedule.RunOnStart {
		sched.RunNow()
	}
	sched.Start()

	<-ctx.Done()
	logger.Info(context.Background(), "Shutting down...")
	sched.Stop()
	return nil
}

func printSummary(summary types.RunSummary, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	return report.Render(os.Stdout, summary)
}

func sessionOrNew(id string) string {
	if id != "" {
		return id
	}
	return portfolio.NewSessionID()
}
