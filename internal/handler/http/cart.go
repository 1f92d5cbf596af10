package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MuzammilBaloch-22/Cakelora/internal/domain"
	"github.com/MuzammilBaloch-22/Cakelora/internal/service"
	apperrors "github.com/MuzammilBaloch-22/Cakelora/pkg/errors"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/httputil"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/logger"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints. The cart is chosen
// by the session the Session middleware resolved.
type CartHandler struct {
	sessions *service.CartSessions
	catalog  *service.CatalogService
	logger   *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(sessions *service.CartSessions, catalog *service.CatalogService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		catalog:  catalog,
		logger:   logger,
	}
}

// manager pins the session's cart for the rest of the request. Callers defer
// the returned release.
func (h *CartHandler) manager(r *http.Request) (string, *service.CartManager, func()) {
	sessionID := logger.SessionIDFromContext(r.Context())
	m, release := h.sessions.Acquire(r.Context(), sessionID)
	return sessionID, m, release
}

func (h *CartHandler) writeCart(w http.ResponseWriter, sessionID string, m *service.CartManager) {
	httputil.WriteData(w, http.StatusOK, newCartResponse(sessionID, m.View()))
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID, m, release := h.manager(r)
	defer release()
	h.writeCart(w, sessionID, m)
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID, m, release := h.manager(r)
	defer release()
	m.Clear(r.Context())
	h.writeCart(w, sessionID, m)
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	size, ok := domain.ParseSize(req.Size)
	if !ok {
		httputil.WriteError(w, r, apperrors.InvalidInput("unknown size "+req.Size), h.logger)
		return
	}
	product, err := h.catalog.Product(req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	sessionID, m, release := h.manager(r)
	defer release()
	if err := m.AddItem(r.Context(), product, size, req.Quantity); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.writeCart(w, sessionID, m)
}

// UpdateItemQuantity handles PUT /api/v1/cart/items/{key}
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sessionID, m, release := h.manager(r)
	defer release()
	m.UpdateQuantity(r.Context(), chi.URLParam(r, "key"), req.Quantity)
	h.writeCart(w, sessionID, m)
}

// RemoveItem handles DELETE /api/v1/cart/items/{key}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID, m, release := h.manager(r)
	defer release()
	m.RemoveItem(r.Context(), chi.URLParam(r, "key"))
	h.writeCart(w, sessionID, m)
}

// SetVisibility handles PUT /api/v1/cart/visibility
func (h *CartHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	var req SetVisibilityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	sessionID, m, release := h.manager(r)
	defer release()
	m.SetOpen(*req.Open)
	h.writeCart(w, sessionID, m)
}
