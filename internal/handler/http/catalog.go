package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MuzammilBaloch-22/Cakelora/internal/domain"
	"github.com/MuzammilBaloch-22/Cakelora/internal/service"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/httputil"
)

// CatalogHandler handles HTTP requests for catalog endpoints.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: svc,
		logger:  logger,
	}
}

// ListProducts handles GET /api/v1/catalog/products[?category=<code>].
// An unknown category yields an empty list.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("category") {
		httputil.WriteData(w, http.StatusOK, newProductList(h.service.All()))
		return
	}

	category, ok := domain.ParseCategory(q.Get("category"))
	if !ok {
		httputil.WriteData(w, http.StatusOK, []ProductResponse{})
		return
	}
	httputil.WriteData(w, http.StatusOK, newProductList(h.service.ByCategory(category)))
}

// GetProduct handles GET /api/v1/catalog/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Product(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, newProductResponse(p))
}

// BestSellers handles GET /api/v1/catalog/best-sellers
func (h *CatalogHandler) BestSellers(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteData(w, http.StatusOK, newProductList(h.service.BestSellers()))
}

// NewArrivals handles GET /api/v1/catalog/new-arrivals
func (h *CatalogHandler) NewArrivals(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteData(w, http.StatusOK, newProductList(h.service.NewArrivals()))
}

// Finder handles GET /api/v1/catalog/finder?occasion=&recipient=&size=[&limit=all].
// Empty parameters are ignored. A parameter naming an unknown value matches
// nothing. Without limit=all at most three cakes are returned.
func (h *CatalogHandler) Finder(w http.ResponseWriter, r *http.Request) {
	query, ok := parseFacets(r)
	if !ok {
		httputil.WriteData(w, http.StatusOK, []ProductResponse{})
		return
	}

	var products []domain.Product
	if r.URL.Query().Get("limit") == "all" {
		products = h.service.Filter(query)
	} else {
		products = h.service.Recommend(query)
	}
	httputil.WriteData(w, http.StatusOK, newProductList(products))
}

// Labels handles GET /api/v1/catalog/labels
func (h *CatalogHandler) Labels(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteData(w, http.StatusOK, h.service.Labels())
}

// parseFacets reads the finder facets. It reports false when a facet names
// a value outside its enum.
func parseFacets(r *http.Request) (service.FacetQuery, bool) {
	q := r.URL.Query()
	var query service.FacetQuery

	if v := q.Get("occasion"); v != "" {
		o, ok := domain.ParseOccasion(v)
		if !ok {
			return query, false
		}
		query.Occasion = &o
	}
	if v := q.Get("recipient"); v != "" {
		rt, ok := domain.ParseRecipientType(v)
		if !ok {
			return query, false
		}
		query.Recipient = &rt
	}
	if v := q.Get("size"); v != "" {
		s, ok := domain.ParseSize(v)
		if !ok {
			return query, false
		}
		query.Size = &s
	}
	return query, true
}
