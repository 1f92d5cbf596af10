package http

import (
	"github.com/MuzammilBaloch-22/Cakelora/internal/domain"
	"github.com/MuzammilBaloch-22/Cakelora/internal/service"
)

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a cake to the cart.
// A missing quantity means one.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,max=64"`
	Size      string `json:"size" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1,max=100"`
}

// UpdateQuantityRequest is the JSON request body for changing a line's
// quantity. Zero or less removes the line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"max=100"`
}

// SetVisibilityRequest is the JSON request body for showing or hiding the cart.
type SetVisibilityRequest struct {
	Open *bool `json:"open" validate:"required"`
}

// --- Response DTOs ---

// SizePrice is the price of a product at one size.
type SizePrice struct {
	Size  domain.Size `json:"size"`
	Label string      `json:"label"`
	Price string      `json:"price"`
}

// ProductResponse is a catalog product with its per-size prices.
type ProductResponse struct {
	domain.Product
	SizePrices []SizePrice `json:"size_prices"`
}

func newProductResponse(p domain.Product) ProductResponse {
	prices := make([]SizePrice, 0, len(p.Sizes))
	for _, s := range p.Sizes {
		prices = append(prices, SizePrice{
			Size:  s,
			Label: s.Label(),
			Price: p.UnitPrice(s).StringFixed(2),
		})
	}
	return ProductResponse{Product: p, SizePrices: prices}
}

func newProductList(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, newProductResponse(p))
	}
	return out
}

// LineItemResponse is one cart line with derived prices.
type LineItemResponse struct {
	Key        string      `json:"key"`
	ProductID  string      `json:"product_id"`
	Name       string      `json:"name"`
	Image      string      `json:"image"`
	Size       domain.Size `json:"size"`
	SizeLabel  string      `json:"size_label"`
	Quantity   int         `json:"quantity"`
	UnitPrice  string      `json:"unit_price"`
	TotalPrice string      `json:"total_price"`
}

// CartResponse is the cart as seen by the presentation layer.
type CartResponse struct {
	SessionID  string             `json:"session_id"`
	Items      []LineItemResponse `json:"items"`
	ItemCount  int                `json:"item_count"`
	TotalPrice string             `json:"total_price"`
	Open       bool               `json:"open"`
	// Persisted is false when the cart could not be saved.
	Persisted bool `json:"persisted"`
}

func newCartResponse(sessionID string, view service.CartView) CartResponse {
	items := make([]LineItemResponse, 0, len(view.Items))
	for _, li := range view.Items {
		items = append(items, LineItemResponse{
			Key:        li.Key,
			ProductID:  li.Product.ID,
			Name:       li.Product.Name,
			Image:      li.Product.Image,
			Size:       li.Size,
			SizeLabel:  li.Size.Label(),
			Quantity:   li.Quantity,
			UnitPrice:  li.UnitPrice().StringFixed(2),
			TotalPrice: li.TotalPrice().StringFixed(2),
		})
	}
	return CartResponse{
		SessionID:  sessionID,
		Items:      items,
		ItemCount:  view.ItemCount(),
		TotalPrice: view.TotalPrice().StringFixed(2),
		Open:       view.Open,
		Persisted:  view.Persisted,
	}
}
