package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jpfielding/img2pacs/pkg/archive"
	"github.com/jpfielding/img2pacs/pkg/cache"
	"github.com/jpfielding/img2pacs/pkg/config"
	"github.com/jpfielding/img2pacs/pkg/convert"
	"github.com/jpfielding/img2pacs/pkg/logging"
	"github.com/jpfielding/img2pacs/pkg/metrics"
)

// app carries what every subcommand shares once flags are parsed
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	metrics *metrics.Metrics
	closers []io.Closer

	cache  cache.Cache
	finder archive.PatientFinder
	storer archive.Storer
}

func (a *app) init(ctx context.Context, envFile, logLevel string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	level, ok := logging.ParseLevel(cfg.Log.Level)
	var out io.Writer = os.Stdout
	if cfg.Log.File != "" {
		w, c := logging.Tee(logging.FileOptions{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		})
		out = w
		a.closers = append(a.closers, c)
	}
	a.log = logging.Logger(out, strings.EqualFold(cfg.Log.Format, "json"), level)
	slog.SetDefault(a.log)
	if !ok {
		a.log.WarnContext(ctx, "Invalid log level, defaulting to INFO", "level", cfg.Log.Level)
	}

	a.metrics = metrics.New()
	return nil
}

// close is safe to call when init failed or never ran
func (a *app) close(ctx context.Context) {
	if a.cfg != nil {
		if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			a.log.WarnContext(ctx, "writing metrics textfile", "path", a.cfg.Metrics.Textfile, "error", err)
		}
	}
	if a.cache != nil {
		a.cache.Close()
	}
	for _, c := range a.closers {
		c.Close()
	}
}

func (a *app) address() archive.Address {
	return archive.Address{
		AETitle: a.cfg.Archive.AETitle,
		Host:    a.cfg.Archive.Host,
		Port:    a.cfg.Archive.Port,
	}
}

func (a *app) lookupCache(ctx context.Context) (cache.Cache, error) {
	if a.cache != nil {
		return a.cache, nil
	}
	switch strings.ToLower(a.cfg.Cache.Type) {
	case "redis":
		c, err := cache.NewRedisCache(ctx, a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		a.log.InfoContext(ctx, "Redis cache initialized", "addr", a.cfg.Redis.Addr)
		a.cache = c
	case "memory":
		a.cache = cache.NewMemoryCache(0)
		a.log.InfoContext(ctx, "Memory cache initialized")
	default:
		a.cache = cache.Noop{}
	}
	return a.cache, nil
}

// patientFinder returns the process finder behind the lookup cache
func (a *app) patientFinder(ctx context.Context) (archive.PatientFinder, error) {
	if a.finder != nil {
		return a.finder, nil
	}
	c, err := a.lookupCache(ctx)
	if err != nil {
		return nil, err
	}
	addr := a.address()
	a.finder = &archive.CachingFinder{
		Next: &archive.ProcessFinder{
			Runner:  archive.ExecRunner{},
			Path:    a.cfg.Tools.FindSCU,
			Address: addr,
			Timeout: a.cfg.Tools.FindTimeout,
			Log:     a.log,
		},
		Cache:   c,
		TTL:     a.cfg.Cache.TTL,
		Archive: addr.String(),
		Metrics: a.metrics,
		Log:     a.log,
	}
	return a.finder, nil
}

func (a *app) objectStorer() archive.Storer {
	if a.storer == nil {
		a.storer = &archive.ProcessStorer{
			Runner:  archive.ExecRunner{},
			Path:    a.cfg.Tools.StoreSCU,
			Address: a.address(),
			Timeout: a.cfg.Tools.StoreTimeout,
			Log:     a.log,
		}
	}
	return a.storer
}

func (a *app) orchestrator() *convert.Orchestrator {
	o := convert.NewOrchestrator(a.objectStorer(), a.log)
	o.Metrics = a.metrics
	return o
}
