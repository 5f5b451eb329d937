package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
)

type (
	createExpenseRequest struct {
		ExpenseTypeID int64  `json:"expense_type_id"`
		Amount        string `json:"amount"`
		Date          string `json:"date"`
	}

	createIncomeRequest struct {
		Amount string `json:"amount"`
		Date   string `json:"date"`
	}

	createdResponse struct {
		ID int64 `json:"id"`
	}
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.writer == nil {
		writeError(w, http.StatusNotImplemented, "ledger is read-only")
		return
	}

	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ExpenseTypeID <= 0 {
		writeError(w, http.StatusBadRequest, "expense_type_id is required")
		return
	}
	rec, err := parseRecord(req.Amount, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner := s.ownerParam(r)
	id, err := s.writer.AppendExpense(r.Context(), owner, req.ExpenseTypeID, rec)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to append expense", "error", err, "owner", owner)
		writeError(w, http.StatusInternalServerError, "failed to record expense")
		return
	}

	s.afterWrite(r, owner, amqp.ReasonExpenseAdded, id)
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.writer == nil {
		writeError(w, http.StatusNotImplemented, "ledger is read-only")
		return
	}

	var req createIncomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	rec, err := parseRecord(req.Amount, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner := s.ownerParam(r)
	id, err := s.writer.AppendIncome(r.Context(), owner, core.IncomeRecord(rec))
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to append income", "error", err, "owner", owner)
		writeError(w, http.StatusInternalServerError, "failed to record income")
		return
	}

	s.afterWrite(r, owner, amqp.ReasonIncomeAdded, id)
	writeJSON(w, http.StatusCreated, createdResponse{ID: id})
}

// afterWrite invalidates cached snapshots for the owner and, when a
// notifier is wired, publishes the change. A publish failure is logged
// but never fails the write that already committed.
func (s *Server) afterWrite(r *http.Request, owner, reason string, recordID int64) {
	s.snapshots.InvalidateOwner(owner)
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishLedgerChanged(r.Context(), owner, reason, recordID); err != nil {
		slog.ErrorContext(r.Context(), "Failed to publish ledger change",
			"error", err, "owner", owner, "reason", reason)
	}
}

// parseRecord validates the shared amount+date pair of the write
// surface. ExpenseRecord and IncomeRecord have the same shape, so the
// income handler converts the result.
func parseRecord(amount, date string) (core.ExpenseRecord, error) {
	amt, err := core.ParseAmount(amount)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	return core.ExpenseRecord{Amount: amt, Date: d}, nil
}
