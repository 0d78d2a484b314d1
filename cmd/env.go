package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/vendor-intake/internal/config"
	"github.com/sells-group/vendor-intake/internal/extract"
	"github.com/sells-group/vendor-intake/internal/intake"
	"github.com/sells-group/vendor-intake/internal/ocr"
	"github.com/sells-group/vendor-intake/internal/pipeline"
	"github.com/sells-group/vendor-intake/internal/reconcile"
	"github.com/sells-group/vendor-intake/internal/scorer"
	"github.com/sells-group/vendor-intake/internal/store"
)

// intakeEnv holds the store and service shared by the commit and serve
// commands.
type intakeEnv struct {
	Store   store.Store // nil for parse
	Service *intake.Service
}

// Close releases resources held by the environment.
func (e *intakeEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv validates cfg for mode, builds the pipeline and recognizer, and
// opens and migrates the store unless mode is "parse". Callers should defer
// env.Close().
func initEnv(ctx context.Context, c *config.Config, mode string) (*intakeEnv, error) {
	if err := c.Validate(mode); err != nil {
		return nil, err
	}

	p, err := buildPipeline(c)
	if err != nil {
		return nil, err
	}

	rec, err := ocr.NewRecognizer(c.OCR)
	if err != nil {
		return nil, eris.Wrap(err, "init recognizer")
	}

	opts := []intake.Option{
		intake.WithRecognizer(rec),
		intake.WithMaxConcurrent(c.Batch.MaxConcurrentFiles),
	}

	env := &intakeEnv{}
	if mode != "parse" {
		st, err := initStore(ctx, c.Store)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
		env.Store = st
		opts = append(opts, intake.WithStore(st))
	}

	env.Service = intake.New(p, opts...)

	zap.L().Debug("intake environment ready",
		zap.String("mode", mode),
		zap.String("ocr_provider", c.OCR.Provider),
		zap.String("store_driver", c.Store.Driver),
	)
	return env, nil
}

func buildPipeline(c *config.Config) (*pipeline.Pipeline, error) {
	var exOpts []extract.Option
	if c.Extract.LogoTable != "" {
		dir, err := extract.LoadDirectory(c.Extract.LogoTable)
		if err != nil {
			return nil, eris.Wrap(err, "load logo table")
		}
		exOpts = append(exOpts, extract.WithDirectory(dir))
	}

	policy := reconcile.Policy{MinSlack: c.Reconcile.MinSlack, SlackRatio: c.Reconcile.SlackRatio}
	return pipeline.New(extract.New(exOpts...), scorer.New(c.Scoring.LowConfidenceThreshold), policy), nil
}

func initStore(ctx context.Context, sc config.StoreConfig) (store.Store, error) {
	switch sc.Driver {
	case "sqlite":
		dsn := sc.DatabaseURL
		if dsn == "" {
			dsn = "vendors.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, sc.DatabaseURL, &store.PoolConfig{
			MaxConns: sc.MaxConns,
			MinConns: sc.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", sc.Driver)
	}
}
