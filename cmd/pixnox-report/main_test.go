package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pixnox/internal/aggregate"
	"pixnox/internal/storage/blob"
)

const stored = `[
{"id":"a","amount":50,"category":"food","description":"groceries","date":"2024-01-05","payment_method":"cash","createdAt":"2024-01-05T12:00:00.000Z"},
{"id":"b","amount":20,"category":"transport","description":"train","date":"2024-01-10","payment_method":"debit_card","createdAt":"2024-01-10T12:00:00.000Z"},
{"id":"c","amount":10,"category":"food","description":"coffee","date":"2023-12-15","payment_method":"cash","createdAt":"2023-12-15T12:00:00.000Z"}
]`

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, blob.DefaultKey+".json"), []byte(stored), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("STORAGE_KEY", blob.DefaultKey)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("APP_TIMEZONE", "UTC")
	return dir
}

func params(dir string) *Params {
	return &Params{
		View:    "dashboard",
		Period:  "month",
		Backend: "blob",
		DataDir: dir,
		Today:   "2024-01-20",
		NoColor: true,
	}
}

func TestRunDashboardJSON(t *testing.T) {
	p := params(setup(t))
	p.JSON = true

	var out bytes.Buffer
	if err := run(context.Background(), p, &out); err != nil {
		t.Fatal(err)
	}

	var d aggregate.Dashboard
	if err := json.Unmarshal(out.Bytes(), &d); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	if d.Summary.Total.Cents != 7000 || d.Summary.Count != 2 {
		t.Errorf("summary = %+v", d.Summary)
	}
	if d.PreviousTotal.Cents != 1000 {
		t.Errorf("previous total = %d", d.PreviousTotal.Cents)
	}
}

func TestRunTables(t *testing.T) {
	tests := []struct {
		name string
		view string
		want []string
	}{
		{"dashboard", "dashboard", []string{"$70.00", "groceries", "train"}},
		{"report", "report", []string{"Jan 2024", "Dec 2023", "$80.00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := params(setup(t))
			p.View = tt.view
			p.Currency = "USD"

			var out bytes.Buffer
			if err := run(context.Background(), p, &out); err != nil {
				t.Fatal(err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out.String(), w) {
					t.Errorf("output missing %q:\n%s", w, out.String())
				}
			}
		})
	}
}

func TestRunWritesWorkbook(t *testing.T) {
	dir := setup(t)
	p := params(dir)
	p.XLSX = filepath.Join(t.TempDir(), "dashboard.xlsx")

	if err := run(context.Background(), p, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(p.XLSX)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("workbook is empty")
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"bad today", func(p *Params) { p.Today = "2024-13-01" }},
		{"bad period", func(p *Params) { p.Period = "decade" }},
		{"bad view", func(p *Params) { p.View = "pie" }},
		{"bad timezone", func(p *Params) { p.Timezone = "Nowhere/City" }},
		{"missing config", func(p *Params) { p.Config = filepath.Join(p.DataDir, "absent.yaml") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := params(setup(t))
			tt.mutate(p)
			if err := run(context.Background(), p, &bytes.Buffer{}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestPresentationMissingDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := presentation("")
	if err != nil || cfg != nil {
		t.Fatalf("presentation() = %v, %v", cfg, err)
	}
}
