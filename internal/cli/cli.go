// Package cli implements the tradefury command-line verbs.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/subcommands"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DominusFuror/tradefury/internal/adapters/kv"
	"github.com/DominusFuror/tradefury/internal/adapters/lookup"
	"github.com/DominusFuror/tradefury/internal/adapters/refdata"
	service "github.com/DominusFuror/tradefury/internal/app"
	"github.com/DominusFuror/tradefury/internal/config"
	"github.com/DominusFuror/tradefury/internal/domain/identity"
	"github.com/DominusFuror/tradefury/pkg/logger"
	"github.com/DominusFuror/tradefury/pkg/metrics"
)

// Register adds all tradefury subcommands to the commander.
func Register(c *subcommands.Commander) {
	c.Register(&importCmd{}, "ingestion")
	c.Register(&overrideCmd{}, "identity")
	c.Register(&resolveCmd{}, "identity")
	c.Register(&pricesCmd{}, "ledger")
}

// env holds the wired application for one command invocation.
type env struct {
	cfg      *config.Config
	store    *kv.FileStore
	resolver *identity.Resolver
	ingest   *service.Service
}

// setup loads configuration, initializes logging and wires the store,
// resolver and ingestion service the way the process entry point would.
func setup(ctx context.Context) (*env, error) {
	if err := logger.Init(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel))
		_ = logger.SetLevelString("info")
	}

	store, err := kv.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	opts := []identity.Option{
		identity.WithSnapshotStore(store, identity.SnapshotKey),
		identity.WithMaxInFlight(cfg.LookupConcurrency),
		identity.WithLookupTimeout(time.Duration(cfg.LookupTimeoutSeconds) * time.Second),
	}
	if cfg.LookupBaseURL != "" {
		opts = append(opts, identity.WithLookupService(lookup.NewClient(cfg.LookupBaseURL)))
	}
	if cfg.RefDataPath != "" {
		ref, err := refdata.Load(cfg.RefDataPath)
		if err != nil {
			logger.Get().Warn(ctx, "reference data not loaded", logger.Error(err))
		} else {
			opts = append(opts, identity.WithRefIndex(ref))
		}
	}

	resolver := identity.NewResolver(opts...)
	resolver.Hydrate(ctx)

	ingest := service.New(resolver,
		service.WithStore(store),
		service.WithRetention(cfg.RetentionLimit),
		service.WithUnitSeconds(cfg.UnitSeconds),
		service.WithTableNames(cfg.PriceTable, cfg.HistoryTable, cfg.ScanMarker),
	)

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr)
	}

	return &env{cfg: cfg, store: store, resolver: resolver, ingest: ingest}, nil
}

// serveMetrics exposes the custom registry; used by long-running
// watch-style invocations.
func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Get().Warn(ctx, "metrics endpoint stopped", logger.Error(err))
	}
}

// formatPrice renders a copper amount as gold/silver/copper.
func formatPrice(copper int64) string {
	g := copper / 10000
	s := (copper % 10000) / 100
	c := copper % 100
	switch {
	case g > 0:
		return fmt.Sprintf("%dg %02ds %02dc", g, s, c)
	case s > 0:
		return fmt.Sprintf("%ds %02dc", s, c)
	default:
		return fmt.Sprintf("%dc", c)
	}
}
