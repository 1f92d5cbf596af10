package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Product is a cake in the catalog. Products are defined at startup and never
// mutated; everything handed out by the catalog is a copy (see Clone).
type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          Money           `json:"price"`
	Category       Category        `json:"category"`
	Occasions      []Occasion      `json:"occasions"`
	RecipientTypes []RecipientType `json:"recipient_types"`
	Sizes          []Size          `json:"sizes"`
	Image          string          `json:"image"`
	IsBestSeller   bool            `json:"is_best_seller"`
	IsNew          bool            `json:"is_new"`
}

// UnitPrice returns the price of one cake at the given size.
func (p *Product) UnitPrice(size Size) decimal.Decimal {
	return p.Price.Mul(size.Multiplier())
}

// HasOccasion reports whether o is one of the product's occasions.
func (p *Product) HasOccasion(o Occasion) bool {
	return slices.Contains(p.Occasions, o)
}

// HasRecipient reports whether r is one of the product's recipient types.
func (p *Product) HasRecipient(r RecipientType) bool {
	return slices.Contains(p.RecipientTypes, r)
}

// OffersSize reports whether the product can be ordered at size s.
func (p *Product) OffersSize(s Size) bool {
	return slices.Contains(p.Sizes, s)
}

// Clone returns a deep copy so callers can never alias catalog state.
func (p Product) Clone() Product {
	p.Occasions = slices.Clone(p.Occasions)
	p.RecipientTypes = slices.Clone(p.RecipientTypes)
	p.Sizes = slices.Clone(p.Sizes)
	return p
}

// CloneProducts deep-copies a product list. The result is never nil.
func CloneProducts(in []Product) []Product {
	out := make([]Product, 0, len(in))
	for i := range in {
		out = append(out, in[i].Clone())
	}
	return out
}
