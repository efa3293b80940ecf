package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"pixnox/internal/core"
)

// createdAtLayout is fixed width so text columns sort chronologically.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

// sqlRepository holds the queries shared by the SQLite and Postgres stores.
type sqlRepository struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

func (r *sqlRepository) bind(query string) string {
	if r.dialect != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

// encodeDate sends dates as text so Postgres never shifts them by session time zone.
func (r *sqlRepository) encodeDate(d core.Date) any {
	return d.String()
}

func (r *sqlRepository) encodeTime(t time.Time) any {
	if r.dialect == "postgres" {
		return t
	}
	return t.UTC().Format(createdAtLayout)
}

func (r *sqlRepository) List(ctx context.Context, order SortOrder) ([]core.Expense, error) {
	dir := "DESC"
	idDir := "ASC"
	if order == SortDateAsc {
		dir = "ASC"
	}
	query := fmt.Sprintf(`SELECT id, amount_cents, category, description, date, payment_method, created_at
FROM expenses ORDER BY date %s, created_at %s, id %s`, dir, dir, idDir)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	out := make([]core.Expense, 0)
	for rows.Next() {
		var (
			e                  core.Expense
			category, payment  string
			dateVal, createdAt any
		)
		if err := rows.Scan(&e.ID, &e.Amount.Cents, &category, &e.Description, &dateVal, &payment, &createdAt); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Category = core.Category(category)
		e.PaymentMethod = core.PaymentMethod(payment)
		if e.Date, err = decodeDate(dateVal); err != nil {
			return nil, fmt.Errorf("decode date of %s: %w", e.ID, err)
		}
		if e.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, fmt.Errorf("decode created_at of %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

func (r *sqlRepository) Create(ctx context.Context, n core.NewExpense) (core.Expense, error) {
	n = n.Normalize()
	if err := n.Validate(); err != nil {
		return core.Expense{}, err
	}
	e := n.Materialize(uuid.NewString(), r.now())

	_, err := r.db.ExecContext(ctx, r.bind(`INSERT INTO expenses
(id, amount_cents, category, description, date, payment_method, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.Amount.Cents, string(e.Category), e.Description,
		r.encodeDate(e.Date), string(e.PaymentMethod), r.encodeTime(e.CreatedAt))
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}

	slog.DebugContext(ctx, "Expense stored",
		"backend", r.dialect,
		"id", e.ID,
		"amount_cents", e.Amount.Cents,
		"category", e.Category)
	return e, nil
}

func (r *sqlRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.bind(`DELETE FROM expenses WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func (r *sqlRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM expenses`); err != nil {
		return fmt.Errorf("clear expenses: %w", err)
	}
	return nil
}

func (r *sqlRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *sqlRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func decodeDate(v any) (core.Date, error) {
	switch x := v.(type) {
	case time.Time:
		return core.DateOf(x), nil
	case string:
		return core.ParseDate(x)
	case []byte:
		return core.ParseDate(string(x))
	default:
		return core.Date{}, fmt.Errorf("unsupported date value %T", v)
	}
}

func decodeTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case string:
		return time.Parse(time.RFC3339Nano, x)
	case []byte:
		return time.Parse(time.RFC3339Nano, string(x))
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp value %T", v)
	}
}
