package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"pixnox/internal/log"
	"pixnox/internal/metrics"
	"pixnox/internal/middleware/ratelimit"
	"pixnox/internal/middleware/security"
	"pixnox/internal/middleware/trace"
	"pixnox/internal/services"
)

// maxBodyBytes bounds request bodies; an expense is a handful of fields.
const maxBodyBytes = 64 << 10

// Pinger is implemented by repositories that can check their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the server routes to.
type Deps struct {
	Expenses *services.ExpenseService
	Reports  *services.ReportService
	Logger   *log.Logger
	// Optional
	Metrics  *metrics.Metrics
	Limiter  *ratelimit.Limiter
	Detector *security.Detector
	Headers  *security.HeadersConfig
	// Ready is checked by /readyz when set.
	Ready Pinger
}

type Server struct {
	http.Server
	expenses *services.ExpenseService
	reports  *services.ReportService
	logger   *log.Logger
	metrics  *metrics.Metrics
	limiter  *ratelimit.Limiter
	detector *security.Detector
	trace    *trace.Middleware
	ready    Pinger
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and the middleware chain. Expenses, Reports and
// Logger are required.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger.WithComponent(log.ComponentHTTP)
	detector := deps.Detector
	if detector == nil {
		detector = security.NewDetector()
	}
	headers := security.DefaultHeadersConfig()
	if deps.Headers != nil {
		headers = *deps.Headers
	}

	s := &Server{
		expenses: deps.Expenses,
		reports:  deps.Reports,
		logger:   logger,
		metrics:  deps.Metrics,
		limiter:  deps.Limiter,
		detector: detector,
		ready:    deps.Ready,
		started:  time.Now(),
	}
	s.trace = trace.NewMiddleware(logger, detector.ExtractClientIP, nil)

	mux := http.NewServeMux()
	s.handle(mux, "GET /api/expenses", s.handleListExpenses)
	s.handle(mux, "POST /api/expenses", s.handleCreateExpense)
	s.handle(mux, "DELETE /api/expenses", s.handleClearExpenses)
	s.handle(mux, "DELETE /api/expenses/{id}", s.handleDeleteExpense)
	s.handle(mux, "GET /api/dashboard", s.handleDashboard)
	s.handle(mux, "GET /api/reports", s.handleReports)
	s.handle(mux, "GET /api/categories", s.handleCategories)
	s.handle(mux, "GET /healthz", s.handleHealth)
	s.handle(mux, "GET /readyz", s.handleReady)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	var h http.Handler = mux
	if s.limiter != nil {
		h = s.limiter.Middleware(detector.ExtractClientIP, s.rateLimited)(h)
	}
	h = detector.Middleware(h)
	h = security.NewHeadersMiddleware(headers).Middleware(h)
	h = s.trace.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// handle registers h under pattern and records its duration by route.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	if s.metrics == nil {
		mux.HandleFunc(pattern, h)
		return
	}
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		s.metrics.ObserveHTTP(pattern, r.Method, rec.status, time.Since(start))
	})
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldComponent, log.ComponentRateLimit,
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
}

// ListenAndServe starts serving and treats a graceful close as success.
func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", "addr", s.Addr)
	if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server and stops background routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		s.logger.Info("HTTP server shutting down",
			"requests_served", s.trace.TotalRequests(),
			"uptime", time.Since(s.started).String())
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}
