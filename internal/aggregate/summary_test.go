package aggregate

import (
	"math/rand"
	"testing"

	"pixnox/internal/core"
)

func exp(id string, cents int64, c core.Category, date core.Date) core.Expense {
	return core.Expense{ID: id, Amount: core.Money{Cents: cents}, Category: c, Date: date}
}

func TestSummarizeJanuaryScenario(t *testing.T) {
	es := []core.Expense{
		exp("1", 5000, core.CategoryFood, d(2024, 1, 5)),
		exp("2", 2000, core.CategoryTransport, d(2024, 1, 6)),
	}
	w := Window{d(2024, 1, 1), d(2024, 2, 1)}
	s := Summarize(Filter(es, w), w)

	if s.Total.Cents != 7000 || s.Count != 2 || s.Average.Cents != 3500 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.DailyAverage.Cents != 226 { // 70.00 / 31 days
		t.Fatalf("daily average = %d", s.DailyAverage.Cents)
	}

	b := Breakdown(es)
	if len(b) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(b))
	}
	if b[0].Category != core.CategoryFood || b[0].Amount.Cents != 5000 || b[0].Percentage != 71.4 {
		t.Errorf("food row = %+v", b[0])
	}
	if b[1].Category != core.CategoryTransport || b[1].Amount.Cents != 2000 || b[1].Percentage != 28.6 {
		t.Errorf("transport row = %+v", b[1])
	}
	if b[0].Label != "Food & Dining" || b[0].Color != "#f97316" {
		t.Errorf("food display metadata = %q %q", b[0].Label, b[0].Color)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	w := Window{d(2024, 1, 1), d(2024, 2, 1)}
	s := Summarize(nil, w)
	if s != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v", s)
	}
	if b := Breakdown(nil); len(b) != 0 {
		t.Fatalf("expected empty breakdown, got %+v", b)
	}
	if s := Summarize(nil, Window{}); s.DailyAverage.Cents != 0 {
		t.Fatalf("empty window must not divide by zero")
	}
}

func TestBreakdownOrderingAndUnknown(t *testing.T) {
	es := []core.Expense{
		exp("1", 1000, core.CategoryTravel, d(2024, 1, 1)),
		exp("2", 1000, core.CategoryBills, d(2024, 1, 2)),
		exp("3", 3000, "rent", d(2024, 1, 3)),
		exp("4", 500, core.CategoryBills, d(2024, 1, 4)),
	}
	b := Breakdown(es)
	want := []core.Category{"rent", core.CategoryBills, core.CategoryTravel}
	for i, c := range want {
		if b[i].Category != c {
			t.Fatalf("row %d = %q, want %q", i, b[i].Category, c)
		}
	}
	if b[0].Label != "Other" {
		t.Errorf("unknown category label = %q", b[0].Label)
	}
	if b[1].Count != 2 || b[1].Amount.Cents != 1500 {
		t.Errorf("bills row = %+v", b[1])
	}
}

func TestTopCategories(t *testing.T) {
	var es []core.Expense
	for i, c := range core.Categories() {
		es = append(es, exp(c.String(), int64(100*(i+1)), c, d(2024, 1, 1)))
	}
	b := Breakdown(es)
	top := TopCategories(b, DefaultTopCategories)
	if len(top) != 5 {
		t.Fatalf("expected 5, got %d", len(top))
	}
	if top[0].Category != core.CategoryOther {
		t.Fatalf("largest should be first, got %q", top[0].Category)
	}
	if len(b) != len(core.Categories()) {
		t.Fatalf("full breakdown truncated")
	}
	if got := TopCategories(b[:2], 5); len(got) != 2 {
		t.Fatalf("short breakdown: %d", len(got))
	}
}

func TestActiveCategories(t *testing.T) {
	es := []core.Expense{
		exp("1", 1, core.CategoryTravel, d(2024, 1, 1)),
		exp("2", 1, core.CategoryFood, d(2023, 1, 1)),
		exp("3", 1, core.CategoryTravel, d(2022, 1, 1)),
	}
	got := ActiveCategories(es)
	if len(got) != 2 || got[0] != core.CategoryFood || got[1] != core.CategoryTravel {
		t.Fatalf("got %v", got)
	}
}

// randomExpenses builds a deterministic pseudo-random collection around today.
func randomExpenses(n int, today core.Date) []core.Expense {
	r := rand.New(rand.NewSource(42))
	cats := append(core.Categories(), "unlisted")
	out := make([]core.Expense, n)
	for i := range out {
		out[i] = exp(
			string(rune('a'+i%26))+string(rune('a'+i/26%26)),
			int64(r.Intn(50000)),
			cats[r.Intn(len(cats))],
			today.AddDays(-r.Intn(800)+30),
		)
	}
	return out
}

func TestBreakdownProperties(t *testing.T) {
	today := d(2024, 5, 20)
	es := randomExpenses(400, today)
	for _, p := range []Period{PeriodWeek, PeriodMonth, PeriodYear} {
		t.Run(string(p), func(t *testing.T) {
			cur, _, err := Resolve(p, today)
			if err != nil {
				t.Fatal(err)
			}
			subset := Filter(es, cur)
			s := Summarize(subset, cur)
			var sum int64
			for _, row := range Breakdown(subset) {
				sum += row.Amount.Cents
				if s.Total.Cents == 0 && row.Percentage != 0 {
					t.Errorf("zero total with percentage %v", row.Percentage)
				}
			}
			if sum != s.Total.Cents {
				t.Errorf("sum of categories %d != total %d", sum, s.Total.Cents)
			}
			if s.Count == 0 && s.Average.Cents != 0 {
				t.Errorf("empty subset with average %d", s.Average.Cents)
			}
		})
	}
}

func TestZeroAmountsGiveZeroPercentages(t *testing.T) {
	es := []core.Expense{
		exp("1", 0, core.CategoryFood, d(2024, 1, 1)),
		exp("2", 0, core.CategoryHealth, d(2024, 1, 2)),
	}
	for _, row := range Breakdown(es) {
		if row.Percentage != 0 {
			t.Fatalf("%q percentage = %v", row.Category, row.Percentage)
		}
	}
}
