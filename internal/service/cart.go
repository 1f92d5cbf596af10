package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MuzammilBaloch-22/Cakelora/internal/domain"
	"github.com/MuzammilBaloch-22/Cakelora/internal/event"
	"github.com/MuzammilBaloch-22/Cakelora/internal/repository"
	apperrors "github.com/MuzammilBaloch-22/Cakelora/pkg/errors"
)

// SlotKey is the logical key the cart snapshot is stored under.
const SlotKey = "cakelora-cart"

// DefaultPersistTimeout bounds a single snapshot write.
const DefaultPersistTimeout = 5 * time.Second

// SessionSlotKey namespaces SlotKey by session, e.g. "cakelora-cart:abc".
func SessionSlotKey(sessionID string) string {
	if sessionID == "" {
		return SlotKey
	}
	return SlotKey + ":" + sessionID
}

// CartOption configures a CartManager.
type CartOption func(*CartManager)

// WithSessionID scopes the manager to a session: the slot key and published
// events carry the ID.
func WithSessionID(id string) CartOption {
	return func(m *CartManager) {
		m.sessionID = id
		m.key = SessionSlotKey(id)
	}
}

// WithPersistTimeout overrides DefaultPersistTimeout.
func WithPersistTimeout(d time.Duration) CartOption {
	return func(m *CartManager) {
		if d > 0 {
			m.persistTimeout = d
		}
	}
}

// CartView is a cart together with its persistence status.
type CartView struct {
	domain.Cart
	// Persisted is false when the last snapshot write failed.
	Persisted bool
}

// CartManager owns one cart. Every mutation is serialized and followed by a
// write of the whole line collection to the slot store, so the last write
// always reflects the last completed mutation.
type CartManager struct {
	slot    repository.SlotStore
	catalog repository.CatalogRepository
	events  event.Publisher
	logger  *slog.Logger

	key            string
	sessionID      string
	persistTimeout time.Duration

	mu         sync.Mutex
	items      []domain.LineItem
	open       bool
	seq        uint64
	written    bool
	persistErr error
}

// NewCartManager creates a manager and restores the prior snapshot, if any.
// A missing or unreadable snapshot yields an empty cart; it is never an error.
func NewCartManager(
	ctx context.Context,
	slot repository.SlotStore,
	catalog repository.CatalogRepository,
	events event.Publisher,
	logger *slog.Logger,
	opts ...CartOption,
) *CartManager {
	if events == nil {
		events = event.NoopPublisher{}
	}
	m := &CartManager{
		slot:           slot,
		catalog:        catalog,
		events:         events,
		logger:         logger,
		key:            SlotKey,
		persistTimeout: DefaultPersistTimeout,
		items:          []domain.LineItem{},
		// The clock seed covers sessions whose slot was discarded; restore
		// raises it to the persisted sequence.
		seq: uint64(time.Now().UnixNano()),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.restore(ctx)
	return m
}

// restore loads the snapshot once. Prices are re-derived from the live
// catalog; lines that no longer resolve are dropped.
func (m *CartManager) restore(ctx context.Context) {
	data, err := m.slot.Get(ctx, m.key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			cartRestoresTotal.WithLabelValues(restoreEmpty).Inc()
			return
		}
		cartRestoresTotal.WithLabelValues(restoreError).Inc()
		m.logger.WarnContext(ctx, "cart snapshot could not be read, starting empty",
			slog.String("slot_key", m.key),
			slog.String("error", err.Error()),
		)
		return
	}

	snap, err := domain.DecodeSnapshot(data)
	if err != nil {
		cartRestoresTotal.WithLabelValues(restoreCorrupt).Inc()
		m.logger.WarnContext(ctx, "cart snapshot is corrupt, starting empty",
			slog.String("slot_key", m.key),
			slog.String("error", err.Error()),
		)
		return
	}
	if snap.Sequence > m.seq {
		m.seq = snap.Sequence
	}

	for _, si := range snap.Items {
		reason := ""
		product, ok := m.catalog.Get(si.ProductID)
		size, sizeOK := domain.ParseSize(si.Size)
		switch {
		case !ok:
			reason = dropUnknownProduct
		case !sizeOK:
			reason = dropUnknownSize
		case !product.OffersSize(size):
			reason = dropSizeNotOffered
		case si.Quantity < 1:
			reason = dropBadQuantity
		}
		if reason != "" {
			cartRestoreDroppedItemsTotal.WithLabelValues(reason).Inc()
			m.logger.WarnContext(ctx, "dropping cart line on restore",
				slog.String("slot_key", m.key),
				slog.String("product_id", si.ProductID),
				slog.String("size", si.Size),
				slog.Int("quantity", si.Quantity),
				slog.String("reason", reason),
			)
			continue
		}
		m.merge(product, size, si.Quantity)
	}

	cartRestoresTotal.WithLabelValues(restoreRestored).Inc()
	m.logger.DebugContext(ctx, "cart restored",
		slog.String("slot_key", m.key),
		slog.Int("lines", len(m.items)),
	)
}

// merge adds qty of product at size, appending a new line when the key is new.
// Callers hold mu or have exclusive access.
func (m *CartManager) merge(product domain.Product, size domain.Size, qty int) {
	key := domain.LineKey(product.ID, size)
	if i := m.indexOf(key); i >= 0 {
		m.items[i].Quantity += qty
		return
	}
	m.items = append(m.items, domain.LineItem{
		Key:      key,
		Product:  product.Clone(),
		Size:     size,
		Quantity: qty,
	})
}

func (m *CartManager) indexOf(key string) int {
	return domain.Cart{Items: m.items}.FindItemIndex(key)
}

// AddItem adds qty cakes of product at size, merging into an existing line
// with the same key, and opens the cart.
func (m *CartManager) AddItem(ctx context.Context, product domain.Product, size domain.Size, qty int) error {
	if qty < 1 {
		return apperrors.InvalidInput("quantity must be at least 1")
	}
	if !product.OffersSize(size) {
		return apperrors.InvalidInput(fmt.Sprintf("product %q is not offered in size %q", product.ID, size))
	}

	m.mu.Lock()
	m.merge(product, size, qty)
	m.open = true
	cart := m.persistLocked(ctx, "add_item")
	m.mu.Unlock()

	m.publishUpdated(ctx, cart)
	return nil
}

// RemoveItem deletes the line with key. A missing key is a no-op.
func (m *CartManager) RemoveItem(ctx context.Context, key string) {
	m.mu.Lock()
	removed := m.removeLocked(key)
	cart := m.persistLocked(ctx, "remove_item")
	m.mu.Unlock()

	if removed {
		m.publishUpdated(ctx, cart)
	}
}

func (m *CartManager) removeLocked(key string) bool {
	i := m.indexOf(key)
	if i < 0 {
		return false
	}
	m.items = slices.Delete(m.items, i, i+1)
	return true
}

// UpdateQuantity sets the quantity of the line with key. A quantity of zero
// or less removes the line. A missing key is a no-op.
func (m *CartManager) UpdateQuantity(ctx context.Context, key string, qty int) {
	m.mu.Lock()
	changed := false
	if qty <= 0 {
		changed = m.removeLocked(key)
	} else if i := m.indexOf(key); i >= 0 {
		m.items[i].Quantity = qty
		changed = true
	}
	cart := m.persistLocked(ctx, "update_quantity")
	m.mu.Unlock()

	if changed {
		m.publishUpdated(ctx, cart)
	}
}

// Clear empties the cart. The open flag is left as it is.
func (m *CartManager) Clear(ctx context.Context) {
	m.mu.Lock()
	m.items = []domain.LineItem{}
	cart := m.persistLocked(ctx, "clear")
	m.mu.Unlock()

	if err := m.events.PublishCartCleared(ctx, m.sessionID, cart.Sequence); err != nil {
		m.logger.WarnContext(ctx, "failed to publish cart.cleared event",
			slog.String("session_id", m.sessionID),
			slog.String("error", err.Error()),
		)
	}
}

// SetOpen shows or hides the cart. Visibility is not persisted.
func (m *CartManager) SetOpen(open bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = open
}

// persistLocked writes the snapshot and returns the resulting view. A write
// failure is logged and counted but never returned. Callers hold mu.
func (m *CartManager) persistLocked(ctx context.Context, operation string) domain.Cart {
	cartOperationsTotal.WithLabelValues(operation).Inc()
	m.seq++

	err := m.writeSnapshot(ctx)
	if err != nil {
		cartPersistFailuresTotal.Inc()
		m.logger.ErrorContext(ctx, "failed to persist cart snapshot",
			slog.String("slot_key", m.key),
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
	}
	m.persistErr = err
	if err == nil {
		m.written = true
	}
	return m.cartLocked()
}

func (m *CartManager) writeSnapshot(ctx context.Context) error {
	snap := domain.NewSnapshot(m.items)
	snap.Sequence = m.seq
	data, err := snap.Marshal()
	if err != nil {
		return fmt.Errorf("marshal cart snapshot: %w", err)
	}

	// The write must complete even if the caller goes away.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.persistTimeout)
	defer cancel()

	if err := m.slot.Set(ctx, m.key, data); err != nil {
		return fmt.Errorf("write cart snapshot: %w", err)
	}
	return nil
}

func (m *CartManager) publishUpdated(ctx context.Context, cart domain.Cart) {
	if err := m.events.PublishCartUpdated(ctx, m.sessionID, &cart); err != nil {
		m.logger.WarnContext(ctx, "failed to publish cart.updated event",
			slog.String("session_id", m.sessionID),
			slog.String("error", err.Error()),
		)
	}
}

func (m *CartManager) cartLocked() domain.Cart {
	items := make([]domain.LineItem, len(m.items))
	for i, li := range m.items {
		li.Product = li.Product.Clone()
		items[i] = li
	}
	return domain.Cart{Items: items, Open: m.open, Sequence: m.seq}
}

// discardable reports whether the slot holds nothing worth keeping: this
// manager wrote an empty cart and that write succeeded. A cart that came up
// empty because its snapshot could not be read is never discardable.
func (m *CartManager) discardable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.written && m.persistErr == nil && len(m.items) == 0
}

// Cart returns a copy of the current cart.
func (m *CartManager) Cart() domain.Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cartLocked()
}

// View returns the current cart and whether its last write succeeded.
func (m *CartManager) View() CartView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return CartView{Cart: m.cartLocked(), Persisted: m.persistErr == nil}
}

// Items returns a copy of the lines in insertion order.
func (m *CartManager) Items() []domain.LineItem {
	c := m.Cart()
	return c.Items
}

// ItemCount returns the total number of cakes in the cart.
func (m *CartManager) ItemCount() int {
	c := m.Cart()
	return c.ItemCount()
}

// TotalPrice returns the sum of all line totals.
func (m *CartManager) TotalPrice() decimal.Decimal {
	c := m.Cart()
	return c.TotalPrice()
}

// IsOpen reports whether the cart is shown.
func (m *CartManager) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// LastPersistError returns the error from the most recent snapshot write,
// or nil if it succeeded.
func (m *CartManager) LastPersistError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persistErr
}

// SlotKey returns the key this cart is persisted under.
func (m *CartManager) SlotKey() string {
	return m.key
}
