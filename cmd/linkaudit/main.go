package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"linkaudit/internal/audit"
	"linkaudit/internal/config"
	"linkaudit/internal/report"
	"linkaudit/internal/store"
)

var cli struct {
	Root   string `help:"Site root directory." default:"." type:"existingdir"`
	Config string `help:"Config file, relative to the site root unless absolute." default:"linkaudit.yaml"`
	Debug  bool   `help:"Enable debug logging."`

	Audit   auditCmd   `cmd:"" default:"withargs" help:"Scan the site and check its links."`
	Summary summaryCmd `cmd:"" help:"Regenerate the Markdown summary from the database."`
	Broken  brokenCmd  `cmd:"" help:"List broken links from the database."`
}

type appContext struct {
	ctx    context.Context
	root   string
	cfg    *config.Config
	store  *store.Store
	logger *zap.Logger
}

type auditCmd struct {
	LocalOnly bool `help:"Scan links without checking external URLs."`
}

func (c *auditCmd) Run(app *appContext) error {
	auditCfg := audit.Config{
		Root:       app.root,
		BaseURL:    app.cfg.BaseURL,
		Store:      app.store,
		SkipFiles:  app.cfg.SkipFiles,
		UserAgent:  app.cfg.UserAgent,
		Timeout:    time.Duration(app.cfg.Timeout),
		CheckDelay: time.Duration(app.cfg.CheckDelay),
		Logger:     app.logger,
		Progress:   func(msg string) { fmt.Println(msg) },
	}

	if _, err := audit.Scan(app.ctx, auditCfg); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if !c.LocalOnly {
		if _, err := audit.CheckExternal(app.ctx, auditCfg); err != nil {
			return fmt.Errorf("check external: %w", err)
		}
	}
	if err := writeSummary(app); err != nil {
		return err
	}
	fmt.Println()
	_, err := report.RenderBroken(app.ctx, os.Stdout, app.store)
	return err
}

type summaryCmd struct{}

func (summaryCmd) Run(app *appContext) error {
	return writeSummary(app)
}

type brokenCmd struct{}

func (brokenCmd) Run(app *appContext) error {
	_, err := report.RenderBroken(app.ctx, os.Stdout, app.store)
	return err
}

func writeSummary(app *appContext) error {
	path := app.cfg.SummaryPath(app.root)
	if err := report.WriteSummary(app.ctx, app.store, app.cfg.BaseURL, path); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	fmt.Printf("Summary written to %s\n", path)
	return nil
}

func main() {
	_ = godotenv.Load()

	kctx := kong.Parse(&cli,
		kong.Name("linkaudit"),
		kong.Description("Link audit tool for static websites."),
		kong.UsageOnError(),
	)

	logger := newLogger(cli.Debug)
	defer logger.Sync()

	cfgPath := cli.Config
	if !filepath.IsAbs(cfgPath) {
		cfgPath = filepath.Join(cli.Root, cfgPath)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	st, err := store.Open(cfg.DatabasePath(cli.Root))
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = kctx.Run(&appContext{
		ctx:    ctx,
		root:   cli.Root,
		cfg:    cfg,
		store:  st,
		logger: logger,
	})
	kctx.FatalIfErrorf(err)
}

func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
