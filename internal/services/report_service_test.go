package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pixnox/internal/aggregate"
	"pixnox/internal/core"
	"pixnox/internal/storage"
	"pixnox/internal/storage/memory"
	"pixnox/internal/storage/storagetest"
)

// countingRepo counts snapshot loads and can block them.
type countingRepo struct {
	storage.Repository
	lists atomic.Int32
	gate  chan struct{}
	err   error
}

func (r *countingRepo) List(ctx context.Context, order storage.SortOrder) ([]core.Expense, error) {
	r.lists.Add(1)
	if r.gate != nil {
		<-r.gate
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.Repository.List(ctx, order)
}

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func newReportFixture(t *testing.T) (*countingRepo, *ExpenseService, *ReportService) {
	t.Helper()
	repo := &countingRepo{Repository: memory.New()}
	svc := NewExpenseService(repo, nil, quietLogger())
	reports := NewReportService(repo, ReportConfig{CacheSize: 8, CacheTTL: time.Minute}, quietLogger(), nil).
		WithClock(fixedClock(time.Date(2024, 1, 20, 10, 0, 0, 0, time.UTC)))
	svc.OnChange(reports.Invalidate)
	return repo, svc, reports
}

func TestReportService_DashboardCachedUntilMutation(t *testing.T) {
	ctx := context.Background()
	repo, svc, reports := newReportFixture(t)

	for _, n := range []core.NewExpense{
		storagetest.Sample(5000, core.CategoryFood, core.NewDate(2024, 1, 10)),
		storagetest.Sample(2000, core.CategoryTransport, core.NewDate(2024, 1, 15)),
	} {
		if _, err := svc.Create(ctx, n); err != nil {
			t.Fatal(err)
		}
	}

	d, err := reports.Dashboard(ctx, aggregate.PeriodMonth)
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if d.Summary.Total.Cents != 7000 || d.Summary.Count != 2 {
		t.Errorf("summary = %+v", d.Summary)
	}
	if _, err := reports.Dashboard(ctx, aggregate.PeriodMonth); err != nil {
		t.Fatal(err)
	}
	if got := repo.lists.Load(); got != 1 {
		t.Errorf("snapshot loads = %d, want 1 while cached", got)
	}

	if _, err := svc.Create(ctx, storagetest.Sample(1000, core.CategoryFood, core.NewDate(2024, 1, 18))); err != nil {
		t.Fatal(err)
	}
	d, err = reports.Dashboard(ctx, aggregate.PeriodMonth)
	if err != nil {
		t.Fatal(err)
	}
	if d.Summary.Total.Cents != 8000 {
		t.Errorf("total after create = %d, want 8000", d.Summary.Total.Cents)
	}
	if got := repo.lists.Load(); got != 2 {
		t.Errorf("snapshot loads = %d, want 2 after invalidation", got)
	}
}

func TestReportService_CallersCannotAlterCachedViews(t *testing.T) {
	ctx := context.Background()
	repo, svc, reports := newReportFixture(t)
	if _, err := svc.Create(ctx, storagetest.Sample(5000, core.CategoryFood, core.NewDate(2024, 1, 10))); err != nil {
		t.Fatal(err)
	}

	t.Run("dashboard", func(t *testing.T) {
		d, err := reports.Dashboard(ctx, aggregate.PeriodMonth)
		if err != nil {
			t.Fatal(err)
		}
		d.Categories[0].Amount = core.Money{Cents: 1}
		d.Recent[0].Description = "changed"
		for i := range d.Trend {
			d.Trend[i].Total = core.Money{Cents: 1}
		}

		again, err := reports.Dashboard(ctx, aggregate.PeriodMonth)
		if err != nil {
			t.Fatal(err)
		}
		if again.Categories[0].Amount.Cents != 5000 {
			t.Errorf("cached category amount = %d, want 5000", again.Categories[0].Amount.Cents)
		}
		if again.Recent[0].Description == "changed" {
			t.Error("cached recent list was modified")
		}
		var trend int64
		for _, b := range again.Trend {
			trend += b.Total.Cents
		}
		if trend != 5000 {
			t.Errorf("cached trend total = %d, want 5000", trend)
		}
	})

	t.Run("report", func(t *testing.T) {
		r, err := reports.Report(ctx, aggregate.PeriodMonth)
		if err != nil {
			t.Fatal(err)
		}
		for _, b := range r.Series {
			clear(b.ByCategory)
		}
		r.ActiveCategories[0] = core.CategoryOther

		again, err := reports.Report(ctx, aggregate.PeriodMonth)
		if err != nil {
			t.Fatal(err)
		}
		if again.ActiveCategories[0] != core.CategoryFood {
			t.Errorf("cached active categories = %v", again.ActiveCategories)
		}
		var series int64
		for _, b := range again.Series {
			series += b.ByCategory[core.CategoryFood].Cents
		}
		if series != 5000 {
			t.Errorf("cached series by category = %d, want 5000", series)
		}
	})

	if got := repo.lists.Load(); got != 2 {
		t.Errorf("snapshot loads = %d, want one per view", got)
	}
}

func TestReportService_KeysByPeriodAndView(t *testing.T) {
	ctx := context.Background()
	repo, _, reports := newReportFixture(t)

	calls := []func() error{
		func() error { _, err := reports.Dashboard(ctx, aggregate.PeriodWeek); return err },
		func() error { _, err := reports.Dashboard(ctx, aggregate.PeriodMonth); return err },
		func() error { _, err := reports.Report(ctx, aggregate.PeriodMonth); return err },
		func() error { _, err := reports.Report(ctx, aggregate.PeriodMonth); return err },
	}
	for _, call := range calls {
		if err := call(); err != nil {
			t.Fatal(err)
		}
	}
	if got := repo.lists.Load(); got != 3 {
		t.Errorf("snapshot loads = %d, want 3", got)
	}
}

func TestReportService_ConcurrentMissesShareLoad(t *testing.T) {
	ctx := context.Background()
	repo, _, reports := newReportFixture(t)
	repo.gate = make(chan struct{})

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reports.Report(ctx, aggregate.PeriodYear)
			errs <- err
		}()
	}
	// Let the goroutines pile up on the in-flight load
	time.Sleep(50 * time.Millisecond)
	close(repo.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Report() error = %v", err)
		}
	}
	if got := repo.lists.Load(); got > 2 {
		t.Errorf("snapshot loads = %d, want concurrent misses to share one", got)
	}
}

func TestReportService_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	repo, _, reports := newReportFixture(t)
	repo.err = errors.New("disk gone")

	if _, err := reports.Dashboard(ctx, aggregate.PeriodMonth); err == nil {
		t.Fatal("expected error")
	}
	repo.err = nil
	if _, err := reports.Dashboard(ctx, aggregate.PeriodMonth); err != nil {
		t.Fatalf("Dashboard() after recovery error = %v", err)
	}
	if got := repo.lists.Load(); got != 2 {
		t.Errorf("snapshot loads = %d, want 2", got)
	}
}

func TestReportService_UnknownPeriod(t *testing.T) {
	_, _, reports := newReportFixture(t)
	_, err := reports.Report(context.Background(), aggregate.Period("decade"))
	if !errors.Is(err, aggregate.ErrUnknownPeriod) {
		t.Errorf("error = %v, want ErrUnknownPeriod", err)
	}
}

func TestReportService_TodayUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	reports := NewReportService(memory.New(), ReportConfig{Location: loc}, quietLogger(), nil).
		WithClock(fixedClock(time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC)))
	if got := reports.Today(); !got.Equal(core.NewDate(2024, 2, 1)) {
		t.Errorf("Today() = %s, want 2024-02-01", got)
	}
}
