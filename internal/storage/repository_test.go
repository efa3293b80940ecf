package storage_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pixnox/internal/core"
	"pixnox/internal/storage"
	"pixnox/internal/storage/storagetest"
)

func TestParseSortOrder(t *testing.T) {
	tests := []struct {
		in   string
		want storage.SortOrder
		err  bool
	}{
		{"", storage.SortDateDesc, false},
		{"-date", storage.SortDateDesc, false},
		{"date", storage.SortDateAsc, false},
		{"amount", "", true},
	}
	for _, tt := range tests {
		got, err := storage.ParseSortOrder(tt.in)
		if tt.err {
			if !errors.Is(err, storage.ErrInvalidSort) {
				t.Errorf("%q: expected ErrInvalidSort, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%q: got %q, %v", tt.in, got, err)
		}
	}
}

func TestSQLiteRepository(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Repository {
		repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "pixnox.db"))
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { repo.Close() })
		return repo
	})
}

func TestSQLiteRepositoryReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixnox.db")
	repo, err := storage.NewSQLiteRepository(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	e, err := repo.Create(ctx, storagetest.Sample(999, core.CategoryFood, core.NewDate(2024, 5, 1)))
	if err != nil {
		t.Fatal(err)
	}
	repo.Close()

	// Migrations must be idempotent on an existing file.
	repo, err = storage.NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	list, err := repo.List(ctx, storage.SortDateDesc)
	if err != nil || len(list) != 1 || list[0].ID != e.ID {
		t.Fatalf("after reopen: %+v, %v", list, err)
	}
}

func TestPostgresRepository(t *testing.T) {
	url := os.Getenv("PIXNOX_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PIXNOX_TEST_DATABASE_URL not set")
	}
	storagetest.Run(t, func(t *testing.T) storage.Repository {
		repo, err := storage.NewPostgresRepository(url)
		if err != nil {
			t.Fatalf("open postgres: %v", err)
		}
		if err := repo.Clear(context.Background()); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { repo.Close() })
		return repo
	})
}
