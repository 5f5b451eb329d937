// Package http exposes the report pipeline as a JSON API plus a CSV
// download, with a snapshot cache in front of recomputation.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/ledger"
	"bilancio/internal/middleware/ratelimit"
	"bilancio/internal/services"
)

// ChangeNotifier publishes ledger-change messages after record writes.
// A nil notifier disables notifications; writes still succeed.
type ChangeNotifier interface {
	PublishLedgerChanged(ctx context.Context, owner, reason string, recordID int64) error
}

// LedgerWriter is the write side of the ledger consumed by the record
// entry handlers.
type LedgerWriter interface {
	ledger.ExpenseWriter
	ledger.IncomeWriter
}

type Server struct {
	http.Server

	reports      *services.ReportService
	writer       LedgerWriter
	notifier     ChangeNotifier
	defaultOwner string

	snapshots *snapshotCache
	limiter   *ratelimit.Limiter

	shutdownOnce sync.Once
}

// Options tune the server beyond its collaborators.
type Options struct {
	DefaultOwner      string
	CacheSize         int
	CacheTTL          time.Duration
	RequestsPerMinute int
}

// NewServer wires routes and returns a ready-to-run server. The writer
// and notifier may be nil for read-only deployments.
func NewServer(addr string, reports *services.ReportService, writer LedgerWriter, notifier ChangeNotifier, opts Options) *Server {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 100
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.DefaultOwner == "" {
		opts.DefaultOwner = "default"
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		reports:      reports,
		writer:       writer,
		notifier:     notifier,
		defaultOwner: opts.DefaultOwner,
		snapshots:    newSnapshotCache(opts.CacheSize, opts.CacheTTL),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RequestsPerMinute,
		}),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/api/report", s.withMiddleware(s.handleReport))
	mux.HandleFunc("/api/report/csv", s.withMiddleware(s.handleReportCSV))
	mux.HandleFunc("/api/years", s.withMiddleware(s.handleYears))
	mux.HandleFunc("/api/summary", s.withMiddleware(s.handleSummary))
	mux.HandleFunc("/api/chart", s.withMiddleware(s.handleChart))
	mux.HandleFunc("/api/expenses", s.withMiddleware(s.handleCreateExpense))
	mux.HandleFunc("/api/incomes", s.withMiddleware(s.handleCreateIncome))

	return s
}

// Shutdown stops the HTTP server once; safe to call repeatedly.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// withMiddleware adds a request ID, security headers and request
// logging around a handler.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(ratelimit.ClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		start := time.Now()
		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.status,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
