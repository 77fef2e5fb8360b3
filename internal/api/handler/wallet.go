// internal/api/handler/wallet.go
package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"bike-wallet/internal/api/types"
	"bike-wallet/internal/domain"
	"bike-wallet/internal/service"
	"bike-wallet/internal/util" // For custom errors
)

// DefaultTimeout bounds every request handled by the router.
const DefaultTimeout = 15 * time.Second

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// WalletHandler handles HTTP requests related to wallet operations.
type WalletHandler struct {
	base
	service service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.WalletService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		base:    newBase(logger),
		service: svc,
	}
}

// CreateWalletRequest represents the request body for wallet creation.
type CreateWalletRequest struct {
	ClientID string `json:"clientId" validate:"required"`
}

// CreateWallet opens a wallet for a client.
// POST /wallet/add/{clientId} or POST /wallet/add with {"clientId": ...}
func (h *WalletHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientId")
	if clientID == "" {
		var req CreateWalletRequest
		if !h.decodeAndValidate(w, r, &req) {
			return
		}
		clientID = req.ClientID
	}

	wallet, err := h.service.CreateWallet(r.Context(), clientID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondOK(w, http.StatusCreated, "Wallet created successfully", wallet)
}

// MoneyRequest is the body shared by deposit and payment.
type MoneyRequest struct {
	ClientID    string           `json:"clientId" validate:"required"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Description string           `json:"description" validate:"max=255"`
}

// Deposit handles the deposit money request.
// POST /wallet/deposit
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req MoneyRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	wallet, _, err := h.service.Deposit(r.Context(), req.ClientID, *req.Amount, req.Description)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondOK(w, http.StatusOK, "Deposit successful", wallet)
}

// MakePayment handles the payment request.
// POST /wallet/payment
func (h *WalletHandler) MakePayment(w http.ResponseWriter, r *http.Request) {
	var req MoneyRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	wallet, _, err := h.service.MakePayment(r.Context(), req.ClientID, *req.Amount, req.Description)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondOK(w, http.StatusOK, "Payment successful", wallet)
}

// GetWallet returns a wallet with its balance and history.
// GET /wallet/{clientId}
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	clientID := strings.TrimSpace(chi.URLParam(r, "clientId"))
	if clientID == "" {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	wallet, err := h.service.GetWallet(r.Context(), clientID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondOK(w, http.StatusOK, "Wallet retrieved successfully", wallet)
}

// GetTransactions handles the get transaction history request.
// GET /wallet/{clientId}/transactions
func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	clientID := strings.TrimSpace(chi.URLParam(r, "clientId"))
	if clientID == "" {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	// Without paging parameters the whole history is returned.
	query := r.URL.Query()
	if !query.Has("limit") && !query.Has("offset") {
		transactions, _, err := h.service.GetTransactions(r.Context(), clientID, 0, 0)
		if err != nil {
			h.respondWithError(w, err)
			return
		}
		h.respondOK(w, http.StatusOK, "Transactions retrieved successfully", transactions)
		return
	}

	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset, err := strconv.Atoi(query.Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	transactions, total, err := h.service.GetTransactions(r.Context(), clientID, limit, offset)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondOK(w, http.StatusOK, "Transactions retrieved successfully", types.PaginatedResponse[domain.Transaction]{
		Data:       transactions,
		Limit:      limit,
		Offset:     offset,
		TotalCount: total,
	})
}

// DeleteWallet removes a client's wallet.
// DELETE /wallet/{clientId}
func (h *WalletHandler) DeleteWallet(w http.ResponseWriter, r *http.Request) {
	clientID := strings.TrimSpace(chi.URLParam(r, "clientId"))
	if clientID == "" {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	if err := h.service.DeleteWallet(r.Context(), clientID); err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondOK(w, http.StatusOK, "Wallet deleted successfully", nil)
}
