package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cryptophy/lottod/internal/domain"
	"github.com/cryptophy/lottod/internal/view"
)

// PurchaseSubmitter runs one purchase through its lifecycle.
type PurchaseSubmitter interface {
	SubmitPurchase(ctx context.Context, count int64) (view.PurchaseResult, error)
}

// PurchaseJournal lists a wallet's past purchases.
type PurchaseJournal interface {
	ListByWallet(ctx context.Context, wallet string, limit int) ([]domain.PurchaseRecord, error)
}

// Identity yields the authenticated wallet, if any.
type Identity interface {
	Profile() (domain.AccountProfile, bool)
}

// PurchaseHandler serves the purchase submit and journal endpoints.
type PurchaseHandler struct {
	submitter PurchaseSubmitter
	journal   PurchaseJournal
	identity  Identity
	logger    *slog.Logger
}

// NewPurchaseHandler creates a PurchaseHandler. journal may be nil when no
// database is configured.
func NewPurchaseHandler(submitter PurchaseSubmitter, journal PurchaseJournal, identity Identity, logger *slog.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		submitter: submitter,
		journal:   journal,
		identity:  identity,
		logger:    logHandler(logger, "purchase"),
	}
}

type submitRequest struct {
	Count int64 `json:"count"`
}

// SubmitPurchase runs a purchase to a terminal state and returns the outcome.
// The call blocks until the receipt lands or the submit timeout expires.
// POST /api/purchase
func (h *PurchaseHandler) SubmitPurchase(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.submitter.SubmitPurchase(r.Context(), req.Count)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPurchase), errors.Is(err, domain.ErrPriceUnknown):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrPurchaseInFlight):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, domain.ErrTxReverted), errors.Is(err, domain.ErrReceiptTimeout):
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":    err.Error(),
				"purchase": res.Purchase,
			})
		default:
			h.logger.ErrorContext(r.Context(), "submit purchase failed",
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "purchase failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"purchase":      res.Purchase,
		"share_message": res.ShareMessage,
	})
}

// ListPurchases returns the authenticated wallet's purchase journal.
// GET /api/purchases
func (h *PurchaseHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeError(w, http.StatusNotImplemented, "purchase journal not configured")
		return
	}
	profile, ok := h.identity.Profile()
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	limit := parseLimit(r, 50, 500)
	records, err := h.journal.ListByWallet(r.Context(), profile.Wallet, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list purchases failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "could not list purchases")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"purchases": records})
}
