package http

import (
	"errors"
	"net/http"

	"pixnox/internal/core"
	"pixnox/internal/log"
	"pixnox/internal/services"
	"pixnox/internal/storage"
)

type expenseList struct {
	Expenses []core.Expense `json:"expenses"`
	Count    int            `json:"count"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	order, err := storage.ParseSortOrder(r.URL.Query().Get("sort"))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	items, err := s.expenses.List(r.Context(), order)
	if err != nil {
		storeFailed(r, "Failed to list expenses", log.OpList, err, log.NewFields())
		InternalServerError("could not load expenses").Write(w)
		return
	}
	if items == nil {
		items = []core.Expense{}
	}
	NewJSONResponse().Data(expenseList{Expenses: items, Count: len(items)}).Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	n, err := NewRequestBodyParser(r).NewExpense()
	switch {
	case errors.Is(err, ErrMalformedBody):
		BadRequestError("invalid request format").Write(w)
		return
	case err != nil:
		rejected(r, err)
		ValidationError(err).Write(w)
		return
	}

	e, err := s.expenses.Create(r.Context(), n)
	if err != nil {
		if isValidationError(err) {
			rejected(r, err)
			ValidationError(err).Write(w)
			return
		}
		fields := log.NewFields()
		fields[log.FieldAmountCents] = n.Amount.Cents
		fields[log.FieldCategory] = n.Category.String()
		storeFailed(r, "Failed to save expense", log.OpCreate, err, fields)
		InternalServerError("could not save expense").Write(w)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/expenses/"+e.ID).
		Data(e).
		Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := sanitizeInput(r.PathValue("id"))
	found, err := s.expenses.Delete(r.Context(), id)
	if err != nil {
		fields := log.NewFields()
		fields[log.FieldExpenseID] = id
		storeFailed(r, "Failed to delete expense", log.OpDelete, err, fields)
		InternalServerError("could not delete expense").Write(w)
		return
	}
	if !found {
		NotFoundError("expense not found").Write(w)
		return
	}
	NoContent().Write(w)
}

func (s *Server) handleClearExpenses(w http.ResponseWriter, r *http.Request) {
	err := s.expenses.Clear(r.Context())
	switch {
	case errors.Is(err, services.ErrClearUnsupported):
		ErrorResponse(http.StatusNotImplemented, err.Error()).Write(w)
	case err != nil:
		storeFailed(r, "Failed to clear expenses", log.OpClear, err, log.NewFields())
		InternalServerError("could not clear expenses").Write(w)
	default:
		NoContent().Write(w)
	}
}

func storeFailed(r *http.Request, msg, op string, err error, fields log.LogFields) {
	fields.WithError(err).WithErrorType(log.ErrorTypeDatabase).WithOperation(op)
	log.FromContext(r.Context()).ErrorContext(r.Context(), msg, fields.ToSlice()...)
}

// rejected logs an expense that failed validation.
func rejected(r *http.Request, err error) {
	fields := log.NewFields().WithError(err).WithErrorType(log.ErrorTypeValidation).WithOperation(log.OpValidate)
	log.FromContext(r.Context()).WarnContext(r.Context(), "Expense rejected", fields.ToSlice()...)
}
