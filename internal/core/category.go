package core

import (
	"fmt"
	"strings"
)

// Category is the spending category of an expense. Values outside the
// known set are carried through untouched.
type Category string

const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryShopping      Category = "shopping"
	CategoryBills         Category = "bills"
	CategoryEntertainment Category = "entertainment"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategoryTravel        Category = "travel"
	CategoryGroceries     Category = "groceries"
	CategorySubscriptions Category = "subscriptions"
	CategoryOther         Category = "other"
)

type categoryMeta struct {
	label string
	color string
}

var categoryOrder = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryShopping,
	CategoryBills,
	CategoryEntertainment,
	CategoryHealth,
	CategoryEducation,
	CategoryTravel,
	CategoryGroceries,
	CategorySubscriptions,
	CategoryOther,
}

var categoryTable = map[Category]categoryMeta{
	CategoryFood:          {"Food & Dining", "#f97316"},
	CategoryTransport:     {"Transport", "#3b82f6"},
	CategoryShopping:      {"Shopping", "#ec4899"},
	CategoryBills:         {"Bills & Utilities", "#8b5cf6"},
	CategoryEntertainment: {"Entertainment", "#10b981"},
	CategoryHealth:        {"Health", "#ef4444"},
	CategoryEducation:     {"Education", "#06b6d4"},
	CategoryTravel:        {"Travel", "#f59e0b"},
	CategoryGroceries:     {"Groceries", "#84cc16"},
	CategorySubscriptions: {"Subscriptions", "#6366f1"},
	CategoryOther:         {"Other", "#64748b"},
}

// Categories returns the known categories in display order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

func (c Category) IsKnown() bool {
	_, ok := categoryTable[c]
	return ok
}

// Label returns the display label; unknown categories render as "Other".
func (c Category) Label() string {
	if m, ok := categoryTable[c]; ok {
		return m.label
	}
	return categoryTable[CategoryOther].label
}

// Color returns the hex display colour, falling back to "Other"'s.
func (c Category) Color() string {
	if m, ok := categoryTable[c]; ok {
		return m.color
	}
	return categoryTable[CategoryOther].color
}

func (c Category) String() string { return string(c) }

// ParseCategory accepts a known category key, case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsKnown() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// PaymentMethod is how an expense was paid. It is carried but never aggregated.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentDebitCard    PaymentMethod = "debit_card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentOther        PaymentMethod = "other"
)

var paymentOrder = []PaymentMethod{
	PaymentCash,
	PaymentCreditCard,
	PaymentDebitCard,
	PaymentBankTransfer,
	PaymentOther,
}

var paymentLabels = map[PaymentMethod]string{
	PaymentCash:         "Cash",
	PaymentCreditCard:   "Credit Card",
	PaymentDebitCard:    "Debit Card",
	PaymentBankTransfer: "Bank Transfer",
	PaymentOther:        "Other",
}

// PaymentMethods returns the known payment methods in display order.
func PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, len(paymentOrder))
	copy(out, paymentOrder)
	return out
}

func (p PaymentMethod) IsKnown() bool {
	_, ok := paymentLabels[p]
	return ok
}

func (p PaymentMethod) Label() string {
	if l, ok := paymentLabels[p]; ok {
		return l
	}
	return paymentLabels[PaymentOther]
}

func (p PaymentMethod) String() string { return string(p) }

// ParsePaymentMethod accepts a known key; the empty string yields cash.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PaymentCash, nil
	}
	p := PaymentMethod(s)
	if !p.IsKnown() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, s)
	}
	return p, nil
}
