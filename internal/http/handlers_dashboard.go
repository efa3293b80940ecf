package http

import (
	"errors"
	"net/http"

	"pixnox/internal/aggregate"
	"pixnox/internal/core"
	"pixnox/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p, ok := s.period(w, r)
	if !ok {
		return
	}
	d, err := s.reports.Dashboard(r.Context(), p)
	if err != nil {
		s.viewFailed(w, r, "dashboard", p, err)
		return
	}
	NewJSONResponse().Data(d).Write(w)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	p, ok := s.period(w, r)
	if !ok {
		return
	}
	rep, err := s.reports.Report(r.Context(), p)
	if err != nil {
		s.viewFailed(w, r, "report", p, err)
		return
	}
	NewJSONResponse().Data(rep).Write(w)
}

// period parses ?period, answering 400 itself when it is unknown.
func (s *Server) period(w http.ResponseWriter, r *http.Request) (aggregate.Period, bool) {
	p, err := aggregate.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return "", false
	}
	return p, true
}

func (s *Server) viewFailed(w http.ResponseWriter, r *http.Request, view string, p aggregate.Period, err error) {
	if errors.Is(err, aggregate.ErrUnknownPeriod) {
		BadRequestError(err.Error()).Write(w)
		return
	}
	fields := log.NewFields().WithError(err).WithOperation(log.OpAggregate).WithPeriod(p.String())
	fields["view"] = view
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to build view", fields.ToSlice()...)
	InternalServerError("could not compute " + view).Write(w)
}

type categoryInfo struct {
	Key   core.Category `json:"key"`
	Label string        `json:"label"`
	Color string        `json:"color"`
}

type paymentMethodInfo struct {
	Key   core.PaymentMethod `json:"key"`
	Label string             `json:"label"`
}

type taxonomy struct {
	Categories     []categoryInfo      `json:"categories"`
	PaymentMethods []paymentMethodInfo `json:"paymentMethods"`
	Periods        []aggregate.Period  `json:"periods"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	var out taxonomy
	for _, c := range core.Categories() {
		out.Categories = append(out.Categories, categoryInfo{Key: c, Label: c.Label(), Color: c.Color()})
	}
	for _, m := range core.PaymentMethods() {
		out.PaymentMethods = append(out.PaymentMethods, paymentMethodInfo{Key: m, Label: m.Label()})
	}
	out.Periods = []aggregate.Period{aggregate.PeriodWeek, aggregate.PeriodMonth, aggregate.PeriodYear}
	NewJSONResponse().
		Header("Cache-Control", "public, max-age=3600").
		Data(out).
		Write(w)
}
