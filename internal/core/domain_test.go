package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != 2 || d.Day() != 29 {
		t.Fatalf("got %v", d)
	}
	for _, in := range []string{"", "2024-13-01", "2023-02-29", "15/01/2024"} {
		if _, err := ParseDate(in); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", in, err)
		}
	}
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, 1, 31)
	if got := d.AddMonths(1).String(); got != "2024-03-02" {
		t.Fatalf("AddMonths overflow: got %s", got)
	}
	if got := d.AddDays(-31).String(); got != "2023-12-31" {
		t.Fatalf("AddDays: got %s", got)
	}
	if n := NewDate(2024, 1, 1).DaysUntil(NewDate(2025, 1, 1)); n != 366 {
		t.Fatalf("leap year days: got %d", n)
	}
	if n := NewDate(2024, 1, 8).DaysUntil(NewDate(2024, 1, 1)); n != -7 {
		t.Fatalf("negative span: got %d", n)
	}
}

func TestDateOfUsesLocalCalendar(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	at := time.Date(2024, 3, 1, 1, 0, 0, 0, loc) // still Feb 29 in UTC
	if got := DateOf(at).String(); got != "2024-03-01" {
		t.Fatalf("got %s", got)
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2024-01-15"`), &d); err != nil || d.String() != "2024-01-15" {
		t.Fatalf("plain date: %v %v", d, err)
	}
	if err := json.Unmarshal([]byte(`"2024-01-15T10:30:00Z"`), &d); err != nil || d.String() != "2024-01-15" {
		t.Fatalf("timestamp: %v %v", d, err)
	}
	if err := json.Unmarshal([]byte(`42`), &d); err == nil {
		t.Fatalf("expected error for number")
	}
	b, _ := json.Marshal(NewDate(2024, 1, 5))
	if string(b) != `"2024-01-05"` {
		t.Fatalf("marshal: %s", b)
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
}

func TestNewExpenseValidate(t *testing.T) {
	good := NewExpense{
		Date:        NewDate(2025, 1, 1),
		Description: "ok",
		Amount:      Money{Cents: 100},
		Category:    CategoryFood,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		mod  func(*NewExpense)
		want error
	}{
		{"zero date", func(n *NewExpense) { n.Date = Date{} }, ErrInvalidDate},
		{"zero amount", func(n *NewExpense) { n.Amount = Money{} }, ErrInvalidAmount},
		{"unknown category", func(n *NewExpense) { n.Category = "rent" }, ErrInvalidCategory},
		{"empty category", func(n *NewExpense) { n.Category = "" }, ErrInvalidCategory},
		{"bad payment", func(n *NewExpense) { n.PaymentMethod = "crypto" }, ErrInvalidPaymentMethod},
		{"long description", func(n *NewExpense) { n.Description = strings.Repeat("x", MaxDescriptionLength+1) }, ErrDescriptionTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := good
			tc.mod(&n)
			if err := n.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestNewExpenseNormalize(t *testing.T) {
	n := NewExpense{Description: "  lunch  "}.Normalize()
	if n.Description != "lunch" {
		t.Fatalf("description not trimmed: %q", n.Description)
	}
	if n.PaymentMethod != PaymentCash {
		t.Fatalf("expected cash default, got %q", n.PaymentMethod)
	}
	n = NewExpense{PaymentMethod: PaymentDebitCard}.Normalize()
	if n.PaymentMethod != PaymentDebitCard {
		t.Fatalf("payment method overwritten: %q", n.PaymentMethod)
	}
}

func TestExpenseJSONShape(t *testing.T) {
	created := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	e := NewExpense{
		Amount:        Money{Cents: 4250},
		Category:      CategoryTransport,
		Date:          NewDate(2024, 1, 15),
		PaymentMethod: PaymentCreditCard,
	}.Materialize("abc", created)

	b, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"abc","amount":42.50,"category":"transport","date":"2024-01-15","payment_method":"credit_card","createdAt":"2024-01-15T09:00:00Z"}`
	if string(b) != want {
		t.Fatalf("got %s", b)
	}

	var back Expense
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back.ID != e.ID || back.Amount != e.Amount || !back.Date.Equal(e.Date) ||
		!back.CreatedAt.Equal(e.CreatedAt) || back.Category != e.Category || back.PaymentMethod != e.PaymentMethod {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, e)
	}
}

func TestCategoryMetadata(t *testing.T) {
	if CategoryFood.Label() != "Food & Dining" || CategoryFood.Color() != "#f97316" {
		t.Fatalf("food metadata wrong")
	}
	unknown := Category("rent")
	if unknown.IsKnown() {
		t.Fatalf("rent should be unknown")
	}
	if unknown.Label() != "Other" || unknown.Color() != CategoryOther.Color() {
		t.Fatalf("unknown should fall back to other")
	}
	if len(Categories()) != 11 {
		t.Fatalf("expected 11 categories, got %d", len(Categories()))
	}
	if c, err := ParseCategory(" Food "); err != nil || c != CategoryFood {
		t.Fatalf("ParseCategory: %v %v", c, err)
	}
	if p, err := ParsePaymentMethod(""); err != nil || p != PaymentCash {
		t.Fatalf("ParsePaymentMethod default: %v %v", p, err)
	}
	if _, err := ParsePaymentMethod("cheque"); !errors.Is(err, ErrInvalidPaymentMethod) {
		t.Fatalf("expected ErrInvalidPaymentMethod, got %v", err)
	}
}

func TestSortNewestFirst(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	es := []Expense{
		{ID: "a", Date: NewDate(2024, 1, 1), CreatedAt: t0},
		{ID: "b", Date: NewDate(2024, 1, 3), CreatedAt: t0},
		{ID: "c", Date: NewDate(2024, 1, 3), CreatedAt: t0.Add(time.Hour)},
	}
	SortNewestFirst(es)
	if es[0].ID != "c" || es[1].ID != "b" || es[2].ID != "a" {
		t.Fatalf("unexpected order: %s %s %s", es[0].ID, es[1].ID, es[2].ID)
	}
	SortOldestFirst(es)
	if es[0].ID != "a" || es[2].ID != "c" {
		t.Fatalf("unexpected order: %s %s %s", es[0].ID, es[1].ID, es[2].ID)
	}
}
