package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"pixnox/internal/aggregate"
	"pixnox/internal/cache"
	"pixnox/internal/core"
	"pixnox/internal/log"
	"pixnox/internal/metrics"
	"pixnox/internal/storage"
)

// ReportConfig tunes the view cache and the calendar used for "today".
type ReportConfig struct {
	CacheSize int
	CacheTTL  time.Duration
	Location  *time.Location
	Dashboard aggregate.DashboardOptions
}

// ReportService computes dashboard and report views over a repository
// snapshot. Results are cached per (view, period, today) until the next
// Invalidate; concurrent misses for one key share a single computation.
type ReportService struct {
	repo   storage.Repository
	loc    *time.Location
	now    func() time.Time
	opts   aggregate.DashboardOptions
	logger *log.Logger

	group      singleflight.Group
	generation atomic.Uint64
	dashboards *cache.LRUCache[aggregate.Dashboard]
	reports    *cache.LRUCache[aggregate.Report]
}

func NewReportService(repo storage.Repository, cfg ReportConfig, logger *log.Logger, m *metrics.Metrics) *ReportService {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	s := &ReportService{
		repo:       repo,
		loc:        loc,
		now:        time.Now,
		opts:       cfg.Dashboard,
		logger:     logger.WithComponent(log.ComponentReport),
		dashboards: cache.NewLRUCache[aggregate.Dashboard](cfg.CacheSize, cfg.CacheTTL),
		reports:    cache.NewLRUCache[aggregate.Report](cfg.CacheSize, cfg.CacheTTL),
	}
	if m != nil {
		s.dashboards.OnHit, s.dashboards.OnMiss = m.CacheHit, m.CacheMiss
		s.reports.OnHit, s.reports.OnMiss = m.CacheHit, m.CacheMiss
	}
	return s
}

// WithClock replaces the wall clock, for tests.
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	s.now = now
	return s
}

// Today is the current calendar date in the configured zone.
func (s *ReportService) Today() core.Date {
	return aggregate.Today(s.now(), s.loc)
}

func (s *ReportService) Dashboard(ctx context.Context, p aggregate.Period) (aggregate.Dashboard, error) {
	today := s.Today()
	return cachedView(ctx, s, s.dashboards, "dashboard", p, today, func(es []core.Expense) (aggregate.Dashboard, error) {
		return aggregate.BuildDashboardWith(es, p, today, s.opts)
	})
}

func (s *ReportService) Report(ctx context.Context, p aggregate.Period) (aggregate.Report, error) {
	today := s.Today()
	return cachedView(ctx, s, s.reports, "report", p, today, func(es []core.Expense) (aggregate.Report, error) {
		return aggregate.BuildReport(es, p, today)
	})
}

// Invalidate drops every cached view. In-flight computations started
// before the call will not repopulate the cache.
func (s *ReportService) Invalidate() {
	s.generation.Add(1)
	s.dashboards.Purge()
	s.reports.Purge()
}

// Caches returns the view caches for periodic expiry.
func (s *ReportService) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.dashboards, s.reports}
}

// clonable is a computed view that can be copied for a caller.
type clonable[T any] interface {
	Clone() T
}

// cachedView hands every caller its own copy; the cached value is never
// returned directly.
func cachedView[T clonable[T]](ctx context.Context, s *ReportService, c *cache.LRUCache[T], view string, p aggregate.Period, today core.Date, build func([]core.Expense) (T, error)) (T, error) {
	key := fmt.Sprintf("%s|%s|%s", view, p, today)
	if v, ok := c.Get(key); ok {
		return v.Clone(), nil
	}

	gen := s.generation.Load()
	v, err, shared := s.group.Do(fmt.Sprintf("%s|%d", key, gen), func() (any, error) {
		snapshot, err := s.repo.List(ctx, storage.SortDateAsc)
		if err != nil {
			return nil, fmt.Errorf("load snapshot: %w", err)
		}
		out, err := build(snapshot)
		if err != nil {
			return nil, err
		}
		if s.generation.Load() == gen {
			c.Set(key, out)
		}
		fields := log.NewFields().WithOperation(log.OpAggregate).WithPeriod(p.String())
		fields["view"] = view
		fields["records"] = len(snapshot)
		s.logger.DebugContext(ctx, "Computed view", fields.ToSlice()...)
		return out, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	if shared {
		s.logger.DebugContext(ctx, "Shared in-flight view computation", "view", view, log.FieldPeriod, p.String())
	}
	return v.(T).Clone(), nil
}
