package scrapping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"krosmoz-scrapper/core/logger"
	"krosmoz-scrapper/feature/alias"
	"krosmoz-scrapper/feature/collect"
	"krosmoz-scrapper/feature/conversion"
	"krosmoz-scrapper/feature/gameconfig"
	"krosmoz-scrapper/feature/integration"

	"go.uber.org/zap"
)

var (
	// ErrUnknownAlias indicates an alias absent from the registry. There is nothing to collect.
	ErrUnknownAlias = errors.New("unknown collect alias")
	// ErrArchiveUnavailable indicates an archived run without object storage.
	ErrArchiveUnavailable = errors.New("page archive requested but no storage is configured")
)

// Integrator stores or previews converted records.
type Integrator interface {
	Integrate(ctx context.Context, entity string, rec collect.Record) integration.Result
	Preview(ctx context.Context, entity string, rec collect.Record) integration.Result
}

// RunOptions controls one collection run.
type RunOptions struct {
	PageSize int
	Max      int
	DryRun   bool
	Archive  bool
}

// Deps are the collaborators of the service. Archive may be nil.
type Deps struct {
	Resolver        *alias.Resolver
	Collector       *collect.Collector
	Integrator      Integrator
	Archive         *Archive
	Store           *gameconfig.Store
	Characteristics *conversion.Characteristics
	Formulas        *conversion.Formulas
	Equipment       *conversion.Equipment
}

// Service runs collections and exposes the configuration they depend on.
type Service struct {
	Deps
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

func NewService(deps Deps, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Deps: deps, cfg: cfg, logger: logger, now: time.Now}
}

// Run resolves name, pages through its remote records and integrates each one.
// The report is returned with every error that ends a run early: unknown
// formulas abort the run, remote failures and cancellation end it.
func (s *Service) Run(ctx context.Context, name string, opts RunOptions) (*Report, error) {
	a, ok := s.Resolver.Resolve(ctx, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlias, name)
	}

	if opts.PageSize <= 0 {
		opts.PageSize = s.cfg.DefaultPageSize
	}
	archive := opts.Archive || s.cfg.Archive
	if archive && s.Archive == nil {
		return nil, ErrArchiveUnavailable
	}

	cur, err := s.Collector.Collect(a, collect.Options{PageSize: opts.PageSize, Max: opts.Max, Fallback: s.cfg.FallbackCap})
	if err != nil {
		return nil, err
	}

	l := logger.ForRun(s.logger, a.Alias, a.Entity)
	report := &Report{Alias: a.Alias, Source: a.Source, Entity: a.Entity, DryRun: opts.DryRun, StartedAt: s.now()}
	l.Info("Collection started",
		zap.Int("page_size", cur.PageSize()),
		zap.Int("cap", cur.Cap()),
		zap.Int("planned_pages", cur.PlannedPages()),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("archive", archive))

	var prefix string
	if archive {
		if prefix, err = s.Archive.Prepare(ctx, a.Entity, report.StartedAt); err != nil {
			return s.finish(report, cur, l, err)
		}
	}

	for page := 0; ; page++ {
		records, ok := cur.NextPage(ctx)
		if !ok {
			break
		}

		if archive {
			object, err := s.Archive.Put(ctx, prefix, page, records)
			if err != nil {
				return s.finish(report, cur, l, err)
			}
			report.Archived = append(report.Archived, object)
		}

		for _, rec := range records {
			var res integration.Result
			if opts.DryRun {
				res = s.Integrator.Preview(ctx, a.Entity, rec)
			} else {
				res = s.Integrator.Integrate(ctx, a.Entity, rec)
			}
			report.tally(rec.ID(), res)

			if errors.Is(res.Err(), conversion.ErrUnknownFormula) {
				return s.finish(report, cur, l, res.Err())
			}
			if !res.IsSuccess() {
				l.Warn("Record not integrated", zap.Int("dofusdb_id", rec.ID()), zap.String("message", res.Message()))
			}
		}
	}

	return s.finish(report, cur, l, cur.Err())
}

func (s *Service) finish(report *Report, cur *collect.Cursor, l *zap.Logger, err error) (*Report, error) {
	report.StopReason = cur.Reason()
	// The cursor may already have stopped cleanly on the page the run gave up on.
	if err != nil && err != cur.Err() {
		report.StopReason = collect.StopAborted
	}
	report.Stats = cur.Stats()
	report.FinishedAt = s.now()

	fields := []zap.Field{
		zap.String("stop_reason", string(report.StopReason)),
		zap.Int("pages", report.Stats.Pages),
		zap.Int("processed", report.Processed),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	}
	if err != nil {
		report.Error = err.Error()
		l.Error("Collection ended early", append(fields, zap.Error(err))...)
		return report, err
	}
	l.Info("Collection finished", fields...)
	return report, nil
}
