package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuzammilBaloch-22/Cakelora/internal/domain"
	"github.com/MuzammilBaloch-22/Cakelora/internal/repository"
	"github.com/MuzammilBaloch-22/Cakelora/internal/repository/memory"
	"github.com/MuzammilBaloch-22/Cakelora/internal/service"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/health"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/httputil"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/logger"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/middleware"
)

// ============================================================================
// Test helpers
// ============================================================================

const testSession = "0f8fad5b-d9cb-469f-a165-70867728950e"

type failingSlot struct {
	*memory.SlotStore
}

func (failingSlot) Set(context.Context, string, []byte) error { return errors.New("disk full") }

type testServer struct {
	handler http.Handler
	slot    *memory.SlotStore
}

func newTestServerWithSlot(t *testing.T, slot repository.SlotStore) http.Handler {
	t.Helper()
	log := logger.Discard()
	catalogRepo := memory.NewCatalogRepository()
	catalog := service.NewCatalogService(catalogRepo)
	sessions := service.NewCartSessions(slot, catalogRepo, nil, log, time.Hour)
	orders := service.NewCustomOrderService(nil, log)

	hh := health.NewHandler()
	hh.Register("slot", func(context.Context) error { return nil })

	return NewRouter(catalog, sessions, orders, hh, middleware.DefaultCORSConfig("test", []string{"https://cakelora.example"}),
		middleware.RateLimitConfig{}, log)
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	slot := memory.NewSlotStore()
	return testServer{handler: newTestServerWithSlot(t, slot), slot: slot}
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.SessionIDHeader, testSession)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Data  T                       `json:"data"`
		Error *httputil.ErrorResponse `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.Nil(t, env.Error, rec.Body.String())
	return env.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var env httputil.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.NotNil(t, env.Error, rec.Body.String())
	return *env.Error
}

func productIDs(products []ProductResponse) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

// ============================================================================
// Health / metrics
// ============================================================================

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv.handler, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv.handler, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"slot"`)

	rec = doRequest(t, srv.handler, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ============================================================================
// Catalog
// ============================================================================

func TestCatalog_ListProducts(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv.handler, http.MethodGet, "/api/v1/catalog/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeData[[]ProductResponse](t, rec), 12)
	assert.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))

	rec = doRequest(t, srv.handler, http.MethodGet, "/api/v1/catalog/products?category=kids", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"cake-4", "cake-7", "cake-10"}, productIDs(decodeData[[]ProductResponse](t, rec)))

	rec = doRequest(t, srv.handler, http.MethodGet, "/api/v1/catalog/products?category=pastry", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[[]ProductResponse](t, rec))
}

func TestCatalog_GetProduct(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv.handler, http.MethodGet, "/api/v1/catalog/products/cake-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decodeData[ProductResponse](t, rec)
	assert.Equal(t, "Chocolate Symphony", p.Name)
	assert.Equal(t, "95.00", p.Price.String())
	require.Len(t, p.SizePrices, 4)
	assert.Equal(t, SizePrice{Size: domain.SizeMedium, Label: `8" (10-14 servings)`, Price: "133.00"}, p.SizePrices[1])
	assert.Equal(t, "209.00", p.SizePrices[3].Price)

	rec = doRequest(t, srv.handler, http.MethodGet, "/api/v1/catalog/products/cake-404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)
}

func TestCatalog_BestSellersAndNewArrivals(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv.handler, http.MethodGet, "/api/v1/catalog/best-sellers", nil)
	assert.Equal(t, []string{"cake-1", "cake-2", "cake-4"}, productIDs(decodeData[[]ProductResponse](t, rec)))

	rec = doRequest(t, srv.handler, http.MethodGet, "/api/v1/catalog/new-arrivals", nil)
	assert.Equal(t, []string{"cake-5", "cake-9"}, productIDs(decodeData[[]ProductResponse](t, rec)))
}

func TestCatalog_Finder(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"no facets", "", []string{}},
		{"empty facets", "?occasion=&recipient=&size=", []string{}},
		{"birthday top three", "?occasion=birthday", []string{"cake-2", "cake-4", "cake-5"}},
		{"birthday all", "?occasion=birthday&limit=all", []string{"cake-2", "cake-4", "cake-5", "cake-7", "cake-9", "cake-10", "cake-12"}},
		{"kids medium", "?recipient=kids&size=medium", []string{"cake-4", "cake-7", "cake-10"}},
		{"unknown occasion", "?occasion=retirement", []string{}},
		{"unknown size", "?occasion=birthday&size=huge", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv.handler, http.MethodGet, "/api/v1/catalog/finder"+tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, productIDs(decodeData[[]ProductResponse](t, rec)))
		})
	}
}

func TestCatalog_Labels(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv.handler, http.MethodGet, "/api/v1/catalog/labels", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	labels := decodeData[service.Labels](t, rec)
	assert.Len(t, labels.Occasions, 8)
	assert.Equal(t, "2.2", labels.Sizes[3].Multiplier)
}

// ============================================================================
// Cart
// ============================================================================

func TestCart_EmptyAndSessionEcho(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv.handler, http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, testSession, rec.Header().Get(middleware.SessionIDHeader))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	cart := decodeData[CartResponse](t, rec)
	assert.Equal(t, testSession, cart.SessionID)
	assert.Empty(t, cart.Items)
	assert.Equal(t, "0.00", cart.TotalPrice)
	assert.False(t, cart.Open)
	assert.True(t, cart.Persisted)
}

func TestCart_AddMergeUpdateRemove(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv.handler, http.MethodPost, "/api/v1/cart/items",
		AddItemRequest{ProductID: "cake-2", Size: "medium"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, srv.handler, http.MethodPost, "/api/v1/cart/items",
		AddItemRequest{ProductID: "cake-2", Size: "medium", Quantity: 2})
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeData[CartResponse](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, LineItemResponse{
		Key:        "cake-2-medium",
		ProductID:  "cake-2",
		Name:       "Chocolate Symphony",
		Image:      "/placeholder.svg",
		Size:       domain.SizeMedium,
		SizeLabel:  `8" (10-14 servings)`,
		Quantity:   3,
		UnitPrice:  "133.00",
		TotalPrice: "399.00",
	}, cart.Items[0])
	assert.Equal(t, 3, cart.ItemCount)
	assert.Equal(t, "399.00", cart.TotalPrice)
	assert.True(t, cart.Open)

	rec = doRequest(t, srv.handler, http.MethodPut, "/api/v1/cart/items/cake-2-medium", UpdateQuantityRequest{Quantity: 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "133.00", decodeData[CartResponse](t, rec).TotalPrice)

	rec = doRequest(t, srv.handler, http.MethodPut, "/api/v1/cart/items/cake-2-medium", UpdateQuantityRequest{Quantity: 0})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeData[CartResponse](t, rec).Items)

	rec = doRequest(t, srv.handler, http.MethodDelete, "/api/v1/cart/items/cake-2-medium", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCart_PersistedUnderSessionKey(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv.handler, http.MethodPost, "/api/v1/cart/items",
		AddItemRequest{ProductID: "cake-1", Size: "small", Quantity: 2})
	require.Equal(t, http.StatusOK, rec.Code)

	raw, err := srv.slot.Get(context.Background(), service.SessionSlotKey(testSession))
	require.NoError(t, err)
	snap, err := domain.DecodeSnapshot(raw)
	require.NoError(t, err)
	assert.NotZero(t, snap.Sequence)
	assert.Equal(t, []domain.SnapshotItem{{ProductID: "cake-1", Size: "small", Quantity: 2}}, snap.Items)
}

func TestCart_AddItemErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"missing product", AddItemRequest{Size: "small"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"negative quantity", AddItemRequest{ProductID: "cake-1", Size: "small", Quantity: -1}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown field", `{"product_id":"cake-1","size":"small","price":1}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"malformed json", `{"product_id":`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown size", AddItemRequest{ProductID: "cake-1", Size: "huge"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"size not offered", AddItemRequest{ProductID: "cake-3", Size: "small"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown product", AddItemRequest{ProductID: "cake-404", Size: "small"}, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv.handler, http.MethodPost, "/api/v1/cart/items", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}

	rec := doRequest(t, srv.handler, http.MethodGet, "/api/v1/cart", nil)
	assert.Empty(t, decodeData[CartResponse](t, rec).Items)
}

func TestCart_RejectsNonJSONContentType(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader("product_id=cake-1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestCart_ClearAndVisibility(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv.handler, http.MethodPost, "/api/v1/cart/items", AddItemRequest{ProductID: "cake-1", Size: "small"})

	rec := doRequest(t, srv.handler, http.MethodDelete, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeData[CartResponse](t, rec)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Open)

	rec = doRequest(t, srv.handler, http.MethodPut, "/api/v1/cart/visibility", map[string]bool{"open": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeData[CartResponse](t, rec).Open)

	rec = doRequest(t, srv.handler, http.MethodPut, "/api/v1/cart/visibility", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Fields, "open")
}

func TestCart_SessionsAreIsolated(t *testing.T) {
	srv := newTestServer(t)
	doRequest(t, srv.handler, http.MethodPost, "/api/v1/cart/items", AddItemRequest{ProductID: "cake-1", Size: "small"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	minted := rec.Header().Get(middleware.SessionIDHeader)
	assert.NotEmpty(t, minted)
	assert.NotEqual(t, testSession, minted)
	assert.Empty(t, decodeData[CartResponse](t, rec).Items)
}

func TestCart_PersistFailureSurfaced(t *testing.T) {
	h := newTestServerWithSlot(t, failingSlot{memory.NewSlotStore()})

	rec := doRequest(t, h, http.MethodPost, "/api/v1/cart/items", AddItemRequest{ProductID: "cake-1", Size: "small"})
	require.Equal(t, http.StatusOK, rec.Code)
	cart := decodeData[CartResponse](t, rec)
	assert.False(t, cart.Persisted)
	assert.Len(t, cart.Items, 1)
}

// ============================================================================
// Custom orders
// ============================================================================

func futureDate() string {
	return time.Now().AddDate(0, 1, 0).Format(domain.EventDateLayout)
}

func multipartOrder(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="reference_image"; filename="idea.png"`)
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func orderFields() map[string]string {
	return map[string]string{
		"name":              "Sam Rivera",
		"email":             "sam@example.com",
		"event_date":        futureDate(),
		"size":              "large",
		"category":          "wedding",
		"design_preference": "replicate",
	}
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func postForm(h http.Handler, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/custom-orders", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCustomOrder_SubmitMultipart(t *testing.T) {
	srv := newTestServer(t)
	body, ct := multipartOrder(t, orderFields(), pngHeader)

	rec := postForm(srv.handler, body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	receipt := decodeData[service.CustomOrderReceipt](t, rec)
	assert.NotEmpty(t, receipt.Reference)
	assert.Equal(t, domain.CustomOrderStatusSubmitted, receipt.Status)
	assert.Equal(t, "Wedding", receipt.Summary.Category)
	assert.Equal(t, "Replicate exactly", receipt.Summary.DesignPreference)
}

func TestCustomOrder_SubmitURLEncoded(t *testing.T) {
	srv := newTestServer(t)
	form := url.Values{}
	for k, v := range orderFields() {
		form.Set(k, v)
	}

	rec := postForm(srv.handler, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCustomOrder_ValidationErrors(t *testing.T) {
	srv := newTestServer(t)
	fields := orderFields()
	delete(fields, "email")
	fields["size"] = "huge"
	body, ct := multipartOrder(t, fields, nil)

	rec := postForm(srv.handler, body, ct)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", errResp.Code)
	assert.Contains(t, errResp.Fields, "email")
	assert.Contains(t, errResp.Fields, "size")
}

func TestCustomOrder_RejectsNonImage(t *testing.T) {
	srv := newTestServer(t)
	body, ct := multipartOrder(t, orderFields(), []byte("%PDF-1.7 not an image"))

	rec := postForm(srv.handler, body, ct)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "must be an image")
}

func TestCustomOrder_RejectsOversizedImage(t *testing.T) {
	srv := newTestServer(t)
	image := append(append([]byte{}, pngHeader...), make([]byte, domain.MaxReferenceImageBytes)...)
	body, ct := multipartOrder(t, orderFields(), image)

	rec := postForm(srv.handler, body, ct)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "smaller than 5MB")
}

func TestCustomOrder_RejectsHugeBody(t *testing.T) {
	srv := newTestServer(t)
	body, ct := multipartOrder(t, orderFields(), make([]byte, maxCustomOrderBody+1))

	rec := postForm(srv.handler, body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCustomOrder_RateLimited(t *testing.T) {
	log := logger.Discard()
	catalogRepo := memory.NewCatalogRepository()
	h := NewRouter(
		service.NewCatalogService(catalogRepo),
		service.NewCartSessions(memory.NewSlotStore(), catalogRepo, nil, log, 0),
		service.NewCustomOrderService(nil, log),
		health.NewHandler(),
		middleware.DefaultCORSConfig("test", nil),
		middleware.RateLimitConfig{PerMinute: 1, Burst: 1},
		log,
	)

	body, ct := multipartOrder(t, orderFields(), nil)
	rec := postForm(h, body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body, ct = multipartOrder(t, orderFields(), nil)
	rec = postForm(h, body, ct)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, rec).Code)
}
