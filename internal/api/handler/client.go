// internal/api/handler/client.go
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bike-wallet/internal/service"
)

// ClientHandler handles client registration and lookup.
type ClientHandler struct {
	base
	service service.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(svc service.ClientService, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{
		base:    newBase(logger),
		service: svc,
	}
}

// RegisterClientRequest represents the request body for client registration.
type RegisterClientRequest struct {
	ID          string `json:"id" validate:"omitempty,max=64"`
	FullName    string `json:"fullName" validate:"required,max=255"`
	PhoneNumber string `json:"phoneNumber" validate:"required,max=32"`
}

// RegisterClient creates a client a wallet can then be opened for.
// POST /clients
func (h *ClientHandler) RegisterClient(w http.ResponseWriter, r *http.Request) {
	var req RegisterClientRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	client, err := h.service.RegisterClient(r.Context(), req.ID, req.FullName, req.PhoneNumber)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondOK(w, http.StatusCreated, "Client registered successfully", client)
}

// GetClient returns a client by id.
// GET /clients/{clientId}
func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	client, err := h.service.GetClient(r.Context(), chi.URLParam(r, "clientId"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondOK(w, http.StatusOK, "Client retrieved successfully", client)
}
