// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing request bodies. Clients may
// send JSON or form-encoded data.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"pixnox/internal/core"
)

// ErrMalformedBody is returned when the body is neither JSON nor a form.
var ErrMalformedBody = errors.New("malformed request body")

// RequestBodyParser handles different content types for request body parsing.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", ErrMalformedBody, p.err)
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	// JSON when declared or when it looks like an object
	if strings.HasPrefix(p.contentType, "application/json") || trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = fmt.Errorf("%w: %v", ErrMalformedBody, err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", ErrMalformedBody, p.err)
	}
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// NewExpense reads the creation fields. Field errors wrap the core
// sentinels so callers can map them to 422.
func (p *RequestBodyParser) NewExpense() (core.NewExpense, error) {
	if err := p.Parse(); err != nil {
		return core.NewExpense{}, err
	}

	amount, err := core.ParseMoney(p.Get("amount"))
	if err != nil {
		return core.NewExpense{}, err
	}
	category, err := core.ParseCategory(p.Get("category"))
	if err != nil {
		return core.NewExpense{}, err
	}
	date, err := core.ParseDate(p.Get("date"))
	if err != nil {
		return core.NewExpense{}, err
	}
	method, err := core.ParsePaymentMethod(p.Get("payment_method"))
	if err != nil {
		return core.NewExpense{}, err
	}

	return core.NewExpense{
		Amount:        amount,
		Category:      category,
		Description:   p.Get("description"),
		Date:          date,
		PaymentMethod: method,
	}, nil
}
