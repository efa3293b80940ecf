package google

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pixnox/internal/core"
)

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	dir := t.TempDir()
	file := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(file, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr string
	}{
		{"inline wins", Options{CredentialsJSON: `{"inline":true}`, CredentialsFile: file}, `{"inline":true}`, ""},
		{"file", Options{CredentialsFile: file}, `{"type":"service_account"}`, ""},
		{"missing file", Options{CredentialsFile: filepath.Join(dir, "nope.json")}, "", "read service account file"},
		{"nothing set", Options{}, "", "missing service account credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loadCredentials(context.Background(), tt.opts)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("credentials = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClient_NotInitialized(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheetName: "Expenses"}
	ctx := context.Background()

	if _, err := c.Append(ctx, core.Expense{ID: "abc"}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Append error = %v, want ErrNotInitialized", err)
	}
	if _, err := c.Delete(ctx, "abc"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Delete error = %v, want ErrNotInitialized", err)
	}
	if err := c.Clear(ctx); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Clear error = %v, want ErrNotInitialized", err)
	}
	if _, err := c.Append(ctx, core.Expense{}); err == nil || errors.Is(err, ErrNotInitialized) {
		t.Errorf("Append without id should fail before touching the service, got %v", err)
	}
}

func TestEncodeRow(t *testing.T) {
	e := core.Expense{
		ID:            "abc",
		Amount:        core.Money{Cents: 1999},
		Category:      core.CategoryGroceries,
		Description:   "market",
		Date:          core.NewDate(2024, 3, 9),
		PaymentMethod: core.PaymentDebitCard,
		CreatedAt:     time.Date(2024, 3, 9, 18, 30, 0, 0, time.UTC),
	}
	row := encodeRow(e)
	if len(row) != len(headerRow) {
		t.Fatalf("row has %d cells, header has %d", len(row), len(headerRow))
	}
	want := []any{"abc", "2024-03-09", "groceries", "market", 19.99, "debit_card", "2024-03-09T18:30:00Z"}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("cell %d = %v, want %v", i, row[i], want[i])
		}
	}
}

func TestFindRowByID(t *testing.T) {
	values := [][]any{
		{"ID"},
		{"a1"},
		{},
		{" b2 "},
		{"c3"},
	}
	tests := []struct {
		id   string
		want int
	}{
		{"a1", 1},
		{"b2", 3},
		{"c3", 4},
		{"zz", -1},
		{"", -1},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := findRowByID(values, tt.id); got != tt.want {
				t.Errorf("findRowByID(%q) = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}

func TestRowRef(t *testing.T) {
	c := &Client{sheetName: "Expenses"}
	if got := c.rowRef(7); got != "Expenses!A7:G7" {
		t.Errorf("rowRef(7) = %q", got)
	}
}
