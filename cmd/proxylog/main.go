package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/cyra/proxylog/internal/config"
	"github.com/cyra/proxylog/internal/ipv4"
	"github.com/cyra/proxylog/internal/logdate"
	"github.com/cyra/proxylog/internal/logging"
	"github.com/cyra/proxylog/internal/logtail"
	"github.com/cyra/proxylog/internal/metrics"
	"github.com/cyra/proxylog/internal/parser"
	"github.com/cyra/proxylog/internal/pipeline"
	"github.com/cyra/proxylog/internal/query"
	"github.com/cyra/proxylog/internal/report"
	"github.com/cyra/proxylog/internal/sink/sqlsink"
	"github.com/cyra/proxylog/internal/sink/xmlsink"
)

var (
	configPath  = flag.String("config", "/etc/proxylog/config.yaml", "Path to configuration file")
	follow      = flag.Bool("follow", false, "Tail the log and report on every config reload")
	fromEnd     = flag.Bool("from-end", false, "In follow mode, skip lines already in the log")
	noProgress  = flag.Bool("no-progress", false, "Do not draw a progress bar while loading")
	showVersion = flag.Bool("version", false, "Print version and exit")
	version     = "dev" // Set via ldflags: -X main.version=v1.0.0
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println("proxylog version", version)
		os.Exit(0)
	}

	envErr := godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, logging.Options{Level: cfg.Logging.Level, JSON: cfg.Logging.JSON})
	if envErr != nil {
		logger.Debugf(".env not loaded, using process environment: %v", envErr)
	}

	logger.Infof("proxylog starting (version=%s)", version)
	logger.Infof("config loaded from %s (format=%s)", *configPath, cfg.Log.LogFormat)

	// Set up root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := signalContext()
	defer cancel()

	p, err := parser.New(cfg.Log.LogFormat)
	if err != nil {
		logger.Errorf("create parser: %v", err)
		os.Exit(1)
	}
	m := metrics.New()

	if *follow {
		err = runFollow(ctx, cfg, p, m, logger)
	} else {
		err = runBatch(ctx, cfg, p, m, logger)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func runBatch(ctx context.Context, cfg *config.Config, p *parser.Parser, m *metrics.Metrics, logger *logging.Logger) error {
	pl := pipeline.New(p, logger, pipeline.WithMetrics(m), pipeline.AbortOnError(cfg.Log.AbortOnError))

	var progress io.Writer
	if !*noProgress {
		progress = os.Stderr
	}
	if _, err := pl.LoadFile(ctx, cfg.Log.Path, progress); err != nil {
		return err
	}

	q, err := pipeline.RunQuery(p, cfg.Query)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	render(q, cfg.Query)

	// The XML export clears the store, so the database goes first.
	if cfg.Database.Driver != "" {
		s, err := openSink(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer s.Close()

		n, err := s.InsertAll(ctx, p.Records())
		m.RowsInserted.Add(float64(n))
		if err != nil {
			return fmt.Errorf("insert rows: %w", err)
		}
		logger.Infof("inserted %d rows into %s", n, s.Table())
	}

	if cfg.XML.Path != "" {
		name, n, err := xmlsink.Export(p, cfg.XML.Path, exportFilter(cfg.Query))
		if err != nil {
			return fmt.Errorf("xml export: %w", err)
		}
		m.RecordsExported.Add(float64(n))
		m.StoredRecords.Set(float64(p.Size()))
		logger.Infof("exported %d entries to %s", n, name)
	}
	return nil
}

func runFollow(ctx context.Context, cfg *config.Config, p *parser.Parser, m *metrics.Metrics, logger *logging.Logger) error {
	store := config.NewStore(cfg)

	watcherStop, err := config.WatchFile(*configPath, store, logger)
	if err != nil {
		logger.Errorf("config watcher disabled: %v", err)
	} else {
		defer watcherStop()
	}

	opts := []pipeline.Option{pipeline.WithMetrics(m)}
	if cfg.Database.Driver != "" {
		s, err := openSink(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer s.Close()
		opts = append(opts, pipeline.WithSink(s))
	}
	pl := pipeline.New(p, logger, opts...)
	tailOpts := []logtail.Option{logtail.WithPoll(cfg.Log.Poll)}
	if *fromEnd {
		tailOpts = append(tailOpts, logtail.FromEnd())
	}
	tl := logtail.New(cfg.Log.Path, logger, tailOpts...)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Listen != "" {
		g.Go(func() error {
			logger.Infof("serving metrics on %s", cfg.Metrics.Listen)
			return m.Serve(ctx, cfg.Metrics.Listen)
		})
	}

	g.Go(func() error {
		return pl.Follow(ctx, tl, store, render)
	})

	return g.Wait()
}

func render(q *query.Query, qc config.QueryConfig) {
	report.Render(os.Stdout, q, report.Options{HTTPCode: qc.HTTPCode, Filetype: qc.Filetype})
}

func openSink(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*sqlsink.Sink, error) {
	db := cfg.Database
	s, err := sqlsink.Open(ctx, db.Driver, db.DSN, db.Table, cfg.Log.LogFormat)
	if err != nil {
		return nil, err
	}
	if db.CreateTable {
		if err := s.CreateTable(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("create table: %w", err)
		}
	}
	logger.Infof("database sink ready (driver=%s table=%s)", db.Driver, s.Table())
	return s, nil
}

// exportFilter limits the XML export to the configured query range.
func exportFilter(qc config.QueryConfig) *xmlsink.Filter {
	if !qc.Enabled() {
		return nil
	}
	from, lo := logdate.Parse(qc.Begin.Date), ipv4.ToUint32(qc.Begin.Addr)
	to, hi := from, lo
	if qc.End != nil {
		to, hi = logdate.Parse(qc.End.Date), ipv4.ToUint32(qc.End.Addr)
	}
	return &xmlsink.Filter{From: from, To: to, Addrs: ipv4.NewRange(lo, hi)}
}

// signalContext returns a context that is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
