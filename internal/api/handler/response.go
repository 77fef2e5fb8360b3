// internal/api/handler/response.go
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"bike-wallet/internal/api/types"
	"bike-wallet/internal/lock"
	"bike-wallet/internal/util"
)

// base carries the response and validation helpers shared by all handlers.
type base struct {
	logger    *slog.Logger
	validator *validator.Validate
}

func newBase(logger *slog.Logger) base {
	return base{logger: logger, validator: NewValidator()}
}

// Helper function to send JSON responses.
func (h *base) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func (h *base) respondOK(w http.ResponseWriter, code int, message string, data interface{}) {
	h.respondWithJSON(w, code, types.Response{Message: message, Success: true, Data: data})
}

// Helper function to send error responses.
func (h *base) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidAmount):
		statusCode = http.StatusBadRequest
		message = "Amount must be greater than zero with at most 4 decimal places"
	case util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = "Invalid request"
	case util.IsError(err, util.ErrWalletAlreadyExists):
		statusCode = http.StatusBadRequest
		message = "Wallet already exists for this client"
	case util.IsError(err, util.ErrClientAlreadyExists):
		statusCode = http.StatusBadRequest
		message = "Phone number is already in use. Please use a different phone number."
	case util.IsError(err, util.ErrClientIDTaken):
		statusCode = http.StatusBadRequest
		message = "Client id is already registered"
	case util.IsError(err, util.ErrWalletNotFound):
		statusCode = http.StatusNotFound
		message = "Wallet not found"
	case util.IsError(err, util.ErrClientNotFound):
		statusCode = http.StatusNotFound
		message = "Client not found"
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired // 402 Payment Required
		message = "Insufficient balance"
	case util.IsError(err, util.ErrConcurrentUpdate):
		statusCode = http.StatusConflict
		message = "Wallet is busy, try again"
	case errors.Is(err, lock.ErrLockTimeout):
		statusCode = http.StatusServiceUnavailable
		message = "Wallet is busy, try again later"
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, types.ErrorResponse{Success: false, Msg: message})
}

// decodeAndValidate reads a JSON body into dst and runs struct validation on it.
// It writes the 400 response itself and reports whether the handler may continue.
func (h *base) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, types.ErrorResponse{Msg: "Invalid request body"})
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, types.ErrorResponse{
			Msg:    "Missing or invalid fields",
			Fields: fieldErrors(err),
		})
		return false
	}
	return true
}
