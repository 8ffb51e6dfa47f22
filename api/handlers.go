/*
handlers.go - HTTP API handlers for the bill planner and interest-free tracker

PURPOSE:
  Exposes the planner and the interest-free tracker via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to the
  services.

ENDPOINTS:
  Bills:
    GET    /api/bills                       List bills (insertion order)
    POST   /api/bills                       Create bill
    GET    /api/bills/{id}                  Get bill
    PUT    /api/bills/{id}                  Replace bill
    DELETE /api/bills/{id}                  Delete bill

  Pay cycle:
    GET    /api/pay-cycle                   Current settings (defaults if unset)
    PUT    /api/pay-cycle                   Save settings
    GET    /api/cycles?count=N              Project stored bills
    POST   /api/cycles/preview              Project a posted bill list
    POST   /api/admin/rollover              Move the start forward to today

  Interest-free:
    GET    /api/periods                     List periods (newest first)
    POST   /api/periods                     Create period
    GET    /api/periods/{id}                Get period with totals
    PUT    /api/periods/{id}                Edit period
    DELETE /api/periods/{id}                Delete period
    POST   /api/periods/{id}/transactions   Add expense or repayment
    DELETE /api/periods/{id}/transactions/{txId}

  Transfer:
    GET    /api/export?type=both            Download backup file
    POST   /api/import?type=both            Replace data from a backup file

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/Fezbot3000/Interestfree-tracker/calendar"
	"github.com/Fezbot3000/Interestfree-tracker/factory"
	"github.com/Fezbot3000/Interestfree-tracker/interestfree"
	"github.com/Fezbot3000/Interestfree-tracker/planner"
)

// maxImportSize caps an uploaded backup file.
const maxImportSize = 10 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Planner      *planner.Service
	InterestFree *interestfree.Service
	Transfer     *factory.Transfer
	Log          logrus.FieldLogger
}

// NewHandler creates a new handler.
func NewHandler(p *planner.Service, f *interestfree.Service, t *factory.Transfer, log logrus.FieldLogger) *Handler {
	return &Handler{Planner: p, InterestFree: f, Transfer: t, Log: log}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// =============================================================================
// BILL HANDLERS
// =============================================================================

// ListBills returns all bills.
func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	bills, err := h.Planner.Bills(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list bills", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.BillsToJSON(bills))
}

// CreateBill validates and stores a new bill. Any client-supplied ID is ignored.
func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req factory.BillJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	b := req.ToBill()
	b.ID = ""
	saved, err := h.Planner.AddBill(r.Context(), b)
	if err != nil {
		h.writeDomainError(w, "Failed to create bill", err)
		return
	}
	writeJSON(w, http.StatusCreated, factory.BillToJSON(saved))
}

// GetBill returns a single bill.
func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	b, err := h.Planner.Store.GetBill(r.Context(), planner.BillID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, "Failed to get bill", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.BillToJSON(*b))
}

// UpdateBill replaces a bill. The ID comes from the path.
func (h *Handler) UpdateBill(w http.ResponseWriter, r *http.Request) {
	var req factory.BillJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	b := req.ToBill()
	b.ID = planner.BillID(chi.URLParam(r, "id"))
	saved, err := h.Planner.UpdateBill(r.Context(), b)
	if err != nil {
		h.writeDomainError(w, "Failed to update bill", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.BillToJSON(saved))
}

// DeleteBill removes a bill.
func (h *Handler) DeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := h.Planner.DeleteBill(r.Context(), planner.BillID(chi.URLParam(r, "id"))); err != nil {
		h.writeDomainError(w, "Failed to delete bill", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PAY CYCLE HANDLERS
// =============================================================================

// GetPayCycle returns the pay-cycle settings.
func (h *Handler) GetPayCycle(w http.ResponseWriter, r *http.Request) {
	pc, err := h.Planner.PayCycle(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to load pay cycle", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.PayCycleToJSON(pc))
}

// SetPayCycle saves the pay-cycle settings.
func (h *Handler) SetPayCycle(w http.ResponseWriter, r *http.Request) {
	var req factory.PayCycleJSON
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	pc, err := req.ToPayCycle()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pay cycle", err)
		return
	}

	saved, err := h.Planner.SetPayCycle(r.Context(), pc)
	if err != nil {
		h.writeDomainError(w, "Failed to save pay cycle", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.PayCycleToJSON(saved))
}

// GetCycles projects the stored bills.
// GET /api/cycles?count=N
func (h *Handler) GetCycles(w http.ResponseWriter, r *http.Request) {
	count, err := parseCount(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid count", err)
		return
	}

	ctx := r.Context()
	pc, err := h.Planner.PayCycle(ctx)
	if err != nil {
		h.writeDomainError(w, "Failed to load pay cycle", err)
		return
	}
	proj, err := h.Planner.Project(ctx, count)
	if err != nil {
		h.writeDomainError(w, "Failed to project cycles", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.ProjectionToJSON(pc, proj))
}

// PreviewCycles projects a posted bill list with posted settings. Nothing
// is stored.
func (h *Handler) PreviewCycles(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	pc, err := req.PayCycle.ToPayCycle()
	if err == nil {
		err = pc.Validate()
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pay cycle", err)
		return
	}

	bills := make([]planner.Bill, 0, len(req.Bills))
	for _, bj := range req.Bills {
		bills = append(bills, bj.ToBill())
	}

	opts := h.Planner.Options
	if req.Count != 0 {
		if err := checkCount(req.Count); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid count", err)
			return
		}
		opts.CycleCount = req.Count
	}
	writeJSON(w, http.StatusOK, factory.ProjectionToJSON(pc, planner.GenerateCycles(bills, pc, opts)))
}

// TriggerRollover moves the stored pay-cycle start forward to today.
// POST /api/admin/rollover
func (h *Handler) TriggerRollover(w http.ResponseWriter, r *http.Request) {
	pc, moved, err := h.Planner.Rollover(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to roll over pay cycle", err)
		return
	}
	writeJSON(w, http.StatusOK, RolloverResponse{PayCycle: factory.PayCycleToJSON(pc), Moved: moved})
}

// =============================================================================
// INTEREST-FREE HANDLERS
// =============================================================================

// ListPeriods returns every billing period with its totals, newest first.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.InterestFree.Periods(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list billing periods", err)
		return
	}

	today := h.InterestFree.Today()
	views := make([]factory.PeriodViewJSON, 0, len(periods))
	for _, p := range periods {
		views = append(views, factory.PeriodToView(p, today))
	}
	writeJSON(w, http.StatusOK, views)
}

// CreatePeriod starts a new billing period.
func (h *Handler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	in, err := decodePeriodRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	p, err := h.InterestFree.CreatePeriod(r.Context(), in)
	if err != nil {
		h.writeDomainError(w, "Failed to create billing period", err)
		return
	}
	writeJSON(w, http.StatusCreated, factory.PeriodToView(p, h.InterestFree.Today()))
}

// GetPeriod returns a billing period with its totals.
func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	p, err := h.InterestFree.Period(r.Context(), interestfree.PeriodID(chi.URLParam(r, "id")))
	if err != nil {
		h.writeDomainError(w, "Failed to get billing period", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.PeriodToView(p, h.InterestFree.Today()))
}

// UpdatePeriod edits dates and interest-free days.
func (h *Handler) UpdatePeriod(w http.ResponseWriter, r *http.Request) {
	in, err := decodePeriodRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	p, err := h.InterestFree.UpdatePeriod(r.Context(), interestfree.PeriodID(chi.URLParam(r, "id")), in)
	if err != nil {
		h.writeDomainError(w, "Failed to update billing period", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.PeriodToView(p, h.InterestFree.Today()))
}

// DeletePeriod removes a billing period and its transactions.
func (h *Handler) DeletePeriod(w http.ResponseWriter, r *http.Request) {
	if err := h.InterestFree.DeletePeriod(r.Context(), interestfree.PeriodID(chi.URLParam(r, "id"))); err != nil {
		h.writeDomainError(w, "Failed to delete billing period", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddTransaction records an expense or repayment.
func (h *Handler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}

	tx, err := h.InterestFree.AddTransaction(r.Context(), interestfree.PeriodID(chi.URLParam(r, "id")), interestfree.TransactionInput{
		Date:        date,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        interestfree.TransactionType(req.Type),
	})
	if err != nil {
		h.writeDomainError(w, "Failed to add transaction", err)
		return
	}
	writeJSON(w, http.StatusCreated, factory.TransactionToJSON(tx))
}

// DeleteTransaction removes one transaction.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	err := h.InterestFree.DeleteTransaction(r.Context(),
		interestfree.PeriodID(chi.URLParam(r, "id")),
		interestfree.TransactionID(chi.URLParam(r, "txId")),
	)
	if err != nil {
		h.writeDomainError(w, "Failed to delete transaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// TRANSFER HANDLERS
// =============================================================================

// Export downloads a backup file.
// GET /api/export?type=interest-free|bill-planner|both
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	scope, err := factory.ParseScope(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid export type", err)
		return
	}
	doc, err := h.Transfer.Export(r.Context(), scope)
	if err != nil {
		h.writeDomainError(w, "Failed to export data", err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", scope.Filename(h.InterestFree.Today())))
	writeJSON(w, http.StatusOK, doc)
}

// Import replaces data from an uploaded backup file.
// POST /api/import?type=interest-free|bill-planner|both
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	scope, err := factory.ParseScope(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid import type", err)
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}
	doc, err := factory.ParseDocument(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid import file", err)
		return
	}

	result, err := h.Transfer.Import(r.Context(), doc, scope)
	if err != nil {
		h.writeDomainError(w, "Failed to import data", err)
		return
	}
	h.log().WithFields(logrus.Fields{
		"scope":   scope,
		"bills":   result.Bills,
		"periods": result.BillingPeriods,
	}).Info("data imported")
	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// HELPERS
// =============================================================================

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	return json.NewDecoder(r.Body).Decode(v)
}

func decodePeriodRequest(r *http.Request) (interestfree.PeriodInput, error) {
	var req PeriodRequest
	if err := decodeJSON(r, &req); err != nil {
		return interestfree.PeriodInput{}, err
	}
	start, err := calendar.ParseDate(req.StartDate)
	if err != nil {
		return interestfree.PeriodInput{}, fmt.Errorf("startDate: %w", err)
	}
	end, err := calendar.ParseDate(req.EndDate)
	if err != nil {
		return interestfree.PeriodInput{}, fmt.Errorf("endDate: %w", err)
	}
	return interestfree.PeriodInput{Start: start, End: end, Days: req.InterestFreePeriodDays}, nil
}

func parseCount(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("count")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("count must be a number, got %q", raw)
	}
	return n, checkCount(n)
}

// maxCycleCount bounds a single projection request.
const maxCycleCount = 520

func checkCount(n int) error {
	if n < 1 || n > maxCycleCount {
		return fmt.Errorf("count must be between 1 and %d, got %d", maxCycleCount, n)
	}
	return nil
}

// writeDomainError maps service errors onto HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, planner.ErrNotFound),
		errors.Is(err, interestfree.ErrPeriodNotFound),
		errors.Is(err, interestfree.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, message, err)

	case errors.Is(err, planner.ErrInvalidBill),
		errors.Is(err, planner.ErrInvalidPayCycle),
		errors.Is(err, calendar.ErrInvalidDate),
		errors.Is(err, interestfree.ErrInvalidPeriod),
		errors.Is(err, interestfree.ErrInvalidTransaction),
		errors.Is(err, interestfree.ErrOutsidePeriod),
		errors.Is(err, factory.ErrMissingSection),
		errors.Is(err, factory.ErrInvalidDocument):
		writeError(w, http.StatusBadRequest, message, err)

	default:
		h.log().WithError(err).Error(message)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func (h *Handler) log() logrus.FieldLogger {
	if h.Log != nil {
		return h.Log
	}
	return logrus.StandardLogger()
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
