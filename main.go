package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/Cast4nha/scrapper-sub000/src/collector"
	"github.com/Cast4nha/scrapper-sub000/src/config"
	"github.com/Cast4nha/scrapper-sub000/src/core"
	"github.com/Cast4nha/scrapper-sub000/src/db"
	"github.com/Cast4nha/scrapper-sub000/src/parser"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-config file] ticket.html... | CODE...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	logger := newLogger(cfg.Log)
	engine := core.NewEngine(cfg.Extraction, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var results []parser.Result
	if allFiles(flag.Args()) {
		results = extractFiles(engine, cfg.Collector, flag.Args(), logger)
	} else {
		results = extractLive(ctx, engine, cfg, flag.Args(), logger)
	}

	out, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		logger.WithError(err).Fatal("failed to encode tickets")
	}
	fmt.Println(string(out))

	for _, r := range results {
		if r.Err != nil {
			os.Exit(1)
		}
	}
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

func allFiles(args []string) bool {
	for _, a := range args {
		ext := strings.ToLower(filepath.Ext(a))
		if ext != ".html" && ext != ".htm" {
			return false
		}
	}
	return true
}

// extractFiles reads saved ticket pages; the file name is the ticket code.
func extractFiles(engine *core.Engine, sel config.Collector, paths []string, logger *logrus.Logger) []parser.Result {
	results := make([]parser.Result, 0, len(paths))

	for _, path := range paths {
		code := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		r := parser.Result{Code: code}

		raw, err := os.ReadFile(path)
		if err != nil {
			r.Err = fmt.Errorf("failed to read %s: %w", path, err)
		} else if page, err := collector.PageFromHTML(code, string(raw), sel); err != nil {
			r.Err = err
		} else {
			r.Ticket, r.Err = engine.Extract(page)
		}

		if r.Err != nil {
			logger.WithError(r.Err).WithField("file", path).Error("ticket failed")
		}
		results = append(results, r)
	}

	return results
}

func extractLive(ctx context.Context, engine *core.Engine, cfg *config.Config, codes []string, logger *logrus.Logger) []parser.Result {
	col, err := collector.New(cfg.Collector, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to set up collector")
	}

	factory := func(ctx context.Context) (parser.Source, error) {
		s, err := col.NewSession(ctx)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	var store parser.TicketStore
	if cfg.Postgres.Enabled() {
		conn, err := db.GetDB(cfg.Postgres)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to postgres")
		}
		defer conn.Close()

		if err := conn.Migrate(ctx); err != nil {
			logger.WithError(err).Fatal("failed to prepare postgres")
		}
		store = conn
	}

	return parser.New(engine, factory, store, cfg.Collector.Workers, logger).Parse(ctx, codes)
}
