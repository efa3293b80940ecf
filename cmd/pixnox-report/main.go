package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/GiGurra/boa/pkg/boa"

	"pixnox/internal/aggregate"
	"pixnox/internal/backend"
	"pixnox/internal/cli"
	"pixnox/internal/config"
	"pixnox/internal/core"
	"pixnox/internal/export"
	"pixnox/internal/log"
	"pixnox/internal/storage"
)

type Params struct {
	View        string `descr:"View to render" alts:"dashboard,report" strict:"true" default:"dashboard"`
	Period      string `descr:"Reporting period" alts:"week,month,year" strict:"true" default:"month"`
	Backend     string `descr:"Storage backend, overrides DATA_BACKEND" alts:"memory,blob,sqlite,postgres" optional:"true"`
	DataDir     string `descr:"Blob data directory, overrides DATA_DIR" optional:"true"`
	StorageKey  string `descr:"Blob storage key, overrides STORAGE_KEY" optional:"true"`
	DBPath      string `descr:"SQLite database path, overrides SQLITE_DB_PATH" optional:"true"`
	DatabaseURL string `descr:"Postgres URL, overrides DATABASE_URL" optional:"true"`
	Timezone    string `descr:"Calendar timezone, overrides APP_TIMEZONE" optional:"true"`
	Today       string `descr:"Reference day as YYYY-MM-DD; defaults to today" optional:"true"`
	Currency    string `descr:"ISO currency code for amounts" optional:"true"`
	Config      string `descr:"Presentation config file; defaults to ~/.pixnox/report.yaml" optional:"true"`
	XLSX        string `descr:"Also write the view to this .xlsx file" optional:"true"`
	JSON        bool   `descr:"Print the view as JSON instead of tables" optional:"true"`
	NoColor     bool   `descr:"Disable coloured output" optional:"true"`
}

func main() {
	boa.NewCmdT[Params]("pixnox-report").
		WithShort("Render the expense dashboard or report in the terminal").
		WithLong("Reads expenses from the configured backend and prints the dashboard or the time series report for a week, month or year, optionally exporting it to a spreadsheet.").
		WithRunFunc(func(params *Params) {
			cli.LoadEnvFile()
			if err := run(context.Background(), params, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}).
		Run()
}

func run(ctx context.Context, p *Params, stdout io.Writer) error {
	cfg := appConfig(p)
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := cli.SetupLoggerTo(os.Stderr, cfg, log.ComponentReport)

	pres, err := presentation(p.Config)
	if err != nil {
		return err
	}

	period, err := aggregate.ParsePeriod(p.Period)
	if err != nil {
		return err
	}
	today, err := referenceDay(p.Today, cfg.Location())
	if err != nil {
		return err
	}

	expenses, err := loadExpenses(ctx, cfg, logger)
	if err != nil {
		return err
	}

	code := p.Currency
	if code == "" && pres != nil {
		code = pres.Currency
	}
	opts := export.Options{
		Currency: export.NewCurrency(code),
		Config:   pres,
		Color:    !p.NoColor && !p.JSON,
	}

	switch p.View {
	case "report":
		r, err := aggregate.BuildReport(expenses, period, today)
		if err != nil {
			return err
		}
		if err := render(stdout, p.JSON, r, func(w io.Writer) { export.PrintReport(w, r, opts) }); err != nil {
			return err
		}
		return writeXLSX(p.XLSX, func(w io.Writer) error { return export.WriteReportXLSX(w, r, pres) })
	case "", "dashboard":
		d, err := aggregate.BuildDashboardWith(expenses, period, today, dashboardOptions(pres))
		if err != nil {
			return err
		}
		if err := render(stdout, p.JSON, d, func(w io.Writer) { export.PrintDashboard(w, d, opts) }); err != nil {
			return err
		}
		return writeXLSX(p.XLSX, func(w io.Writer) error { return export.WriteDashboardXLSX(w, d, pres) })
	default:
		return fmt.Errorf("unknown view %q", p.View)
	}
}

// appConfig starts from the environment and applies non-empty flags.
func appConfig(p *Params) *config.Config {
	cfg := config.Load()
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	override(&cfg.DataBackend, p.Backend)
	override(&cfg.DataDir, p.DataDir)
	override(&cfg.StorageKey, p.StorageKey)
	override(&cfg.SQLiteDBPath, p.DBPath)
	override(&cfg.DatabaseURL, p.DatabaseURL)
	override(&cfg.Timezone, p.Timezone)

	// The CLI neither publishes nor mirrors.
	cfg.AMQPURL = ""
	cfg.GoogleSpreadsheetID = ""
	if p.JSON && cfg.LogFormat == "tint" {
		cfg.LogFormat = "text"
	}
	return cfg
}

// presentation loads the config file. A missing default file is not an error.
func presentation(path string) (*export.Config, error) {
	explicit := path != ""
	if !explicit {
		path = export.DefaultConfigPath()
		if path == "" {
			return nil, nil
		}
	}
	cfg, err := export.LoadConfig(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return cfg, nil
}

func dashboardOptions(c *export.Config) aggregate.DashboardOptions {
	if c == nil {
		return aggregate.DashboardOptions{}
	}
	return aggregate.DashboardOptions{TopCategories: c.TopCategories, RecentLimit: c.RecentLimit}
}

func referenceDay(s string, loc *time.Location) (core.Date, error) {
	if s == "" {
		return aggregate.Today(time.Now(), loc), nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("invalid --today: %w", err)
	}
	return d, nil
}

func loadExpenses(ctx context.Context, cfg *config.Config, logger *log.Logger) ([]core.Expense, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, err
	}
	defer result.Cleanup()

	return result.Repository.List(ctx, storage.SortDateDesc)
}

func render(w io.Writer, asJSON bool, view any, table func(io.Writer)) error {
	if !asJSON {
		table(w)
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("encoding view: %w", err)
	}
	return nil
}

func writeXLSX(path string, write func(io.Writer) error) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
