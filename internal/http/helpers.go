package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bilancio/internal/report"
	"bilancio/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Encode response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ownerParam resolves the owner from the query, falling back to the
// configured default.
func (s *Server) ownerParam(r *http.Request) string {
	if owner := strings.TrimSpace(r.URL.Query().Get("owner")); owner != "" {
		return owner
	}
	return s.defaultOwner
}

// periodParam parses mode/year/month query parameters. Absent
// parameters fall back to the service's default period; a present but
// malformed one is a client error.
func (s *Server) periodParam(r *http.Request) (report.Period, error) {
	p := s.reports.DefaultPeriod()
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("mode")); v != "" {
		switch report.Mode(v) {
		case report.ModeMonthly, report.ModeYearly:
			p.Mode = report.Mode(v)
		default:
			return report.Period{}, fmt.Errorf("invalid mode %q", v)
		}
	}
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil || year < 1 {
			return report.Period{}, fmt.Errorf("invalid year %q", v)
		}
		p.Year = year
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			return report.Period{}, fmt.Errorf("invalid month %q", v)
		}
		p.Month = time.Month(month)
	}
	return p, nil
}

// snapshot serves a cached bundle or triggers one recomputation.
func (s *Server) snapshot(r *http.Request) (*services.Snapshot, error) {
	owner := s.ownerParam(r)
	period, err := s.periodParam(r)
	if err != nil {
		return nil, errBadRequest{err}
	}

	if snap, ok := s.snapshots.Get(owner, period); ok {
		slog.DebugContext(r.Context(), "Snapshot cache hit", "owner", owner, "year", period.Year)
		return snap, nil
	}

	// Bounded so a slow ledger fetch cannot hang the request.
	ctx, cancel := context.WithTimeout(r.Context(), 7*time.Second)
	defer cancel()
	snap, err := s.reports.Refresh(ctx, owner, period)
	if err != nil {
		return nil, fmt.Errorf("refresh report: %w", err)
	}
	// The service may have snapped the year; cache under both the
	// requested and the effective period so repeats hit either way.
	s.snapshots.Put(owner, period, snap)
	if snap.Period != period {
		s.snapshots.Put(owner, snap.Period, snap)
	}
	return snap, nil
}

// errBadRequest marks client mistakes so handlers answer 400 instead
// of 500.
type errBadRequest struct{ err error }

func (e errBadRequest) Error() string { return e.err.Error() }
func (e errBadRequest) Unwrap() error { return e.err }
