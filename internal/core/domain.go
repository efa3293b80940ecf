package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// MaxDescriptionLength bounds the free-text description of an expense.
const MaxDescriptionLength = 200

type (
	// Date is a calendar date without time of day, normalised to UTC midnight.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is a stored expense record. Records are never updated in place.
	Expense struct {
		ID            string        `json:"id"`
		Amount        Money         `json:"amount"`
		Category      Category      `json:"category"`
		Description   string        `json:"description,omitempty"`
		Date          Date          `json:"date"`
		PaymentMethod PaymentMethod `json:"payment_method"`
		CreatedAt     time.Time     `json:"createdAt"`
	}

	// NewExpense holds the client-supplied fields of an expense to create.
	// ID and CreatedAt are assigned by the repository.
	NewExpense struct {
		Amount        Money         `json:"amount"`
		Category      Category      `json:"category"`
		Description   string        `json:"description,omitempty"`
		Date          Date          `json:"date"`
		PaymentMethod PaymentMethod `json:"payment_method"`
	}
)

var (
	ErrInvalidDay           = errors.New("invalid day")
	ErrInvalidMonth         = errors.New("invalid month")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidCategory      = errors.New("invalid category")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrDescriptionTooLong   = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
)

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	_, month, day := d.Time.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// NewDate creates a new Date from year, month, day. Out of range values
// are normalised the way time.Date does (e.g. Jan 32 -> Feb 1).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// IsEmpty returns true if the date is zero (for backward compatibility with optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

// AddDays returns the date n calendar days after d (n may be negative).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// AddMonths shifts by calendar months, normalising overflowing days.
func (d Date) AddMonths(n int) Date {
	return Date{Time: d.Time.AddDate(0, n, 0)}
}

// AddYears shifts by calendar years.
func (d Date) AddYears(n int) Date {
	return Date{Time: d.Time.AddDate(n, 0, 0)}
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

// DaysUntil returns the number of calendar days from d to o.
func (d Date) DaysUntil(o Date) int {
	return int(math.Round(o.Time.Sub(d.Time).Hours() / 24))
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(data))
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	// Accept full timestamps too; only the calendar part is kept.
	if len(s) > len(DateLayout) {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			*d = DateOf(t)
			return nil
		}
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks the creation fields. Payment method may be empty and
// then defaults to cash (see Normalize).
func (n NewExpense) Validate() error {
	if err := n.Amount.Validate(); err != nil {
		return err
	}
	if !n.Category.IsKnown() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, n.Category)
	}
	if err := n.Date.Validate(); err != nil {
		return err
	}
	if len(n.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if n.PaymentMethod != "" && !n.PaymentMethod.IsKnown() {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, n.PaymentMethod)
	}
	return nil
}

// Normalize trims the description and applies the cash default.
func (n NewExpense) Normalize() NewExpense {
	n.Description = strings.TrimSpace(n.Description)
	if n.PaymentMethod == "" {
		n.PaymentMethod = PaymentCash
	}
	return n
}

// Materialize builds the stored record from creation fields.
func (n NewExpense) Materialize(id string, createdAt time.Time) Expense {
	return Expense{
		ID:            id,
		Amount:        n.Amount,
		Category:      n.Category,
		Description:   n.Description,
		Date:          n.Date,
		PaymentMethod: n.PaymentMethod,
		CreatedAt:     createdAt.UTC(),
	}
}
