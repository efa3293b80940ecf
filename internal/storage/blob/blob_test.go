package blob

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pixnox/internal/core"
	"pixnox/internal/storage"
	"pixnox/internal/storage/storagetest"
)

func TestStoreOverMapKV(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Repository {
		return New(NewMapKV(), "", nil)
	})
}

func TestStoreOverFileKV(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Repository {
		kv, err := NewFileKV(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		return New(kv, DefaultKey, nil)
	})
}

func TestUnreadableContent(t *testing.T) {
	ctx := context.Background()
	for name, raw := range map[string]string{
		"garbage": "not json at all",
		"object":  `{"id":"x"}`,
	} {
		t.Run(name, func(t *testing.T) {
			kv := NewMapKV()
			if err := kv.Put(ctx, DefaultKey, []byte(raw)); err != nil {
				t.Fatal(err)
			}
			s := New(kv, "", nil)
			list, err := s.List(ctx, storage.SortDateDesc)
			if err != nil || len(list) != 0 {
				t.Fatalf("list = %v, %v", list, err)
			}

			_, err = s.Create(ctx, storagetest.Sample(500, core.CategoryFood, core.NewDate(2024, 1, 1)))
			if !errors.Is(err, ErrUnreadable) {
				t.Fatalf("Create error = %v, want ErrUnreadable", err)
			}
			if _, err := s.Delete(ctx, "x"); !errors.Is(err, ErrUnreadable) {
				t.Fatalf("Delete error = %v, want ErrUnreadable", err)
			}
			stored, _, _ := kv.Get(ctx, DefaultKey)
			if string(stored) != raw {
				t.Fatalf("content rewritten to %q", stored)
			}

			if err := s.Clear(ctx); err != nil {
				t.Fatal(err)
			}
			if _, err := s.Create(ctx, storagetest.Sample(500, core.CategoryFood, core.NewDate(2024, 1, 1))); err != nil {
				t.Fatalf("Create after Clear: %v", err)
			}
		})
	}
}

func TestNullContentIsEmpty(t *testing.T) {
	ctx := context.Background()
	kv := NewMapKV()
	if err := kv.Put(ctx, DefaultKey, []byte("null")); err != nil {
		t.Fatal(err)
	}
	s := New(kv, "", nil)
	if _, err := s.Create(ctx, storagetest.Sample(500, core.CategoryFood, core.NewDate(2024, 1, 1))); err != nil {
		t.Fatal(err)
	}
	list, _ := s.List(ctx, storage.SortDateDesc)
	if len(list) != 1 {
		t.Fatalf("len = %d", len(list))
	}
}

func TestBadRecordDoesNotHideValidOnes(t *testing.T) {
	ctx := context.Background()
	raw := `[{"id":"a","amount":50,"category":"food","date":"2024-01-05","payment_method":"cash","createdAt":"2024-01-05T12:00:00Z"},
{"id":"b","amount":20,"category":"food","date":"05/01/2024","payment_method":"cash","createdAt":"2024-01-05T12:00:00Z"},
{"id":"c","amount":"abc","category":"food","date":"2024-01-06"}]`

	tests := []struct {
		name   string
		mutate func(s *Store) error
		want   []string
	}{
		{"list", func(*Store) error { return nil }, []string{"a"}},
		{"create", func(s *Store) error {
			_, err := s.Create(ctx, storagetest.Sample(100, core.CategoryFood, core.NewDate(2023, 1, 1)))
			return err
		}, []string{"a", "new"}},
		{"delete missing", func(s *Store) error {
			_, err := s.Delete(ctx, "b")
			return err
		}, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := NewMapKV()
			if err := kv.Put(ctx, DefaultKey, []byte(raw)); err != nil {
				t.Fatal(err)
			}
			s := New(kv, "", nil)
			if err := tt.mutate(s); err != nil {
				t.Fatal(err)
			}

			list, err := s.List(ctx, storage.SortDateDesc)
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != len(tt.want) || list[0].ID != "a" {
				t.Fatalf("list = %+v, want %v", list, tt.want)
			}

			// Broken elements are written back untouched.
			stored, _, _ := kv.Get(ctx, DefaultKey)
			for _, frag := range []string{`"05/01/2024"`, `"abc"`} {
				if !strings.Contains(string(stored), frag) {
					t.Errorf("stored content lost %s: %s", frag, stored)
				}
			}
		})
	}
}

func TestCreatePrepends(t *testing.T) {
	ctx := context.Background()
	kv := NewMapKV()
	s := New(kv, "k", nil)
	a, _ := s.Create(ctx, storagetest.Sample(100, core.CategoryFood, core.NewDate(2024, 1, 1)))
	b, _ := s.Create(ctx, storagetest.Sample(200, core.CategoryFood, core.NewDate(2023, 1, 1)))

	c, err := s.load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	items := c.items
	if items[0].ID != b.ID || items[1].ID != a.ID {
		t.Fatalf("stored order %s %s", items[0].ID, items[1].ID)
	}
}

func TestReadsLegacyFloatAmounts(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	raw := `[{"id":"1","amount":19.99,"category":"food","description":"pizza","date":"2024-01-05","payment_method":"cash","createdAt":"2024-01-05T12:00:00.000Z"},
{"id":"2","amount":5,"category":"uncharted","date":"2024-01-06","payment_method":"credit_card","createdAt":"2024-01-06T12:00:00.000Z"}]`
	if err := os.WriteFile(filepath.Join(dir, DefaultKey+".json"), []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatal(err)
	}
	list, err := New(kv, "", nil).List(ctx, storage.SortDateAsc)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Amount.Cents != 1999 || list[1].Category != "uncharted" {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestFileKVRejectsPathKeys(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := kv.Put(context.Background(), "../escape", []byte("x")); err == nil {
		t.Fatal("expected error for path key")
	}
}
