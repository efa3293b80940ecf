// Package storagetest holds behaviour checks shared by every repository.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"pixnox/internal/core"
	"pixnox/internal/storage"
)

// Sample returns a valid creation payload.
func Sample(cents int64, c core.Category, date core.Date) core.NewExpense {
	return core.NewExpense{
		Amount:      core.Money{Cents: cents},
		Category:    c,
		Description: "sample",
		Date:        date,
	}
}

// Run exercises a fresh, empty repository from newRepo.
func Run(t *testing.T, newRepo func(t *testing.T) storage.Repository) {
	t.Helper()

	t.Run("create assigns id and defaults", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		e, err := repo.Create(ctx, Sample(1250, core.CategoryFood, core.NewDate(2024, 1, 5)))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if e.ID == "" || e.CreatedAt.IsZero() {
			t.Fatalf("id/createdAt not assigned: %+v", e)
		}
		if e.PaymentMethod != core.PaymentCash {
			t.Errorf("payment method = %q, want cash", e.PaymentMethod)
		}
		list, err := repo.List(ctx, storage.SortDateDesc)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(list) != 1 {
			t.Fatalf("list len = %d", len(list))
		}
		got := list[0]
		if got.ID != e.ID || got.Amount != e.Amount || got.Category != e.Category ||
			!got.Date.Equal(e.Date) || got.Description != e.Description || !got.CreatedAt.Equal(e.CreatedAt) {
			t.Errorf("stored %+v, listed %+v", e, got)
		}
	})

	t.Run("create rejects invalid input", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Create(context.Background(), Sample(0, core.CategoryFood, core.NewDate(2024, 1, 5)))
		if !errors.Is(err, core.ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
		list, _ := repo.List(context.Background(), storage.SortDateDesc)
		if len(list) != 0 {
			t.Fatalf("invalid record stored")
		}
	})

	t.Run("create then delete restores prior set", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		if _, err := repo.Create(ctx, Sample(100, core.CategoryBills, core.NewDate(2024, 2, 1))); err != nil {
			t.Fatal(err)
		}
		before, _ := repo.List(ctx, storage.SortDateDesc)

		e, err := repo.Create(ctx, Sample(200, core.CategoryTravel, core.NewDate(2024, 2, 2)))
		if err != nil {
			t.Fatal(err)
		}
		ok, err := repo.Delete(ctx, e.ID)
		if err != nil || !ok {
			t.Fatalf("delete = %v, %v", ok, err)
		}
		after, _ := repo.List(ctx, storage.SortDateDesc)
		if len(after) != len(before) || after[0].ID != before[0].ID {
			t.Fatalf("before %+v, after %+v", before, after)
		}

		ok, err = repo.Delete(ctx, e.ID)
		if err != nil || ok {
			t.Fatalf("second delete = %v, %v", ok, err)
		}
		ok, err = repo.Delete(ctx, "no-such-id")
		if err != nil || ok {
			t.Fatalf("unknown delete = %v, %v", ok, err)
		}
	})

	t.Run("list honours sort order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		for _, day := range []int{10, 3, 20} {
			if _, err := repo.Create(ctx, Sample(100, core.CategoryFood, core.NewDate(2024, 3, day))); err != nil {
				t.Fatal(err)
			}
		}
		desc, _ := repo.List(ctx, storage.SortDateDesc)
		asc, _ := repo.List(ctx, storage.SortDateAsc)
		if desc[0].Date.Day() != 20 || desc[2].Date.Day() != 3 {
			t.Errorf("desc order wrong: %v %v %v", desc[0].Date, desc[1].Date, desc[2].Date)
		}
		if asc[0].Date.Day() != 3 || asc[2].Date.Day() != 20 {
			t.Errorf("asc order wrong: %v %v %v", asc[0].Date, asc[1].Date, asc[2].Date)
		}
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		repo := newRepo(t)
		list, err := repo.List(context.Background(), storage.SortDateDesc)
		if err != nil || list == nil || len(list) != 0 {
			t.Fatalf("list = %v, %v", list, err)
		}
	})

	t.Run("clear removes everything", func(t *testing.T) {
		repo := newRepo(t)
		c, ok := repo.(storage.Clearer)
		if !ok {
			t.Skip("repository cannot clear")
		}
		ctx := context.Background()
		for i := 0; i < 3; i++ {
			if _, err := repo.Create(ctx, Sample(100, core.CategoryFood, core.NewDate(2024, 3, 1))); err != nil {
				t.Fatal(err)
			}
		}
		if err := c.Clear(ctx); err != nil {
			t.Fatal(err)
		}
		list, _ := repo.List(ctx, storage.SortDateDesc)
		if len(list) != 0 {
			t.Fatalf("len after clear = %d", len(list))
		}
	})
}
