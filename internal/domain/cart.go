package domain

import (
	"github.com/shopspring/decimal"
)

// LineItem is one (product, size) pairing in a cart. The line total is
// always derived from quantity, base price and size multiplier.
type LineItem struct {
	Key      string  `json:"key"`
	Product  Product `json:"product"`
	Size     Size    `json:"size"`
	Quantity int     `json:"quantity"`
}

// LineKey builds the merge key for a product at a size, e.g. "cake-2-medium".
func LineKey(productID string, size Size) string {
	return productID + "-" + size.String()
}

// UnitPrice returns the price of a single unit of this line.
func (li LineItem) UnitPrice() decimal.Decimal {
	return li.Product.UnitPrice(li.Size)
}

// TotalPrice returns quantity × unit price.
func (li LineItem) TotalPrice() decimal.Decimal {
	return li.UnitPrice().Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart is a read-only view of a cart's contents at one point in time.
// Sequence grows with every mutation of the cart it was taken from.
type Cart struct {
	Items    []LineItem `json:"items"`
	Open     bool       `json:"open"`
	Sequence uint64     `json:"sequence"`
}

// TotalPrice sums the line totals.
func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.TotalPrice())
	}
	return total
}

// ItemCount returns the total number of cakes in the cart.
func (c Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// FindItemIndex returns the index of the line with the given key, or -1.
func (c Cart) FindItemIndex(key string) int {
	for i := range c.Items {
		if c.Items[i].Key == key {
			return i
		}
	}
	return -1
}
