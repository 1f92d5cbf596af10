package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// SnapshotVersion is the schema version written by this build.
const SnapshotVersion = 1

// ErrUnsupportedSnapshot is returned for snapshots written by a newer schema.
var ErrUnsupportedSnapshot = errors.New("unsupported snapshot version")

// Snapshot is the persisted form of a cart. Prices are not stored; they are
// re-derived from the live catalog on load. Sequence is the cart sequence at
// the time of the write; older snapshots carry none.
type Snapshot struct {
	Version  int            `json:"version"`
	Sequence uint64         `json:"sequence,omitempty"`
	Items    []SnapshotItem `json:"items"`
}

// SnapshotItem is one persisted line. Size is kept as its wire code so a
// single unknown size does not invalidate the whole snapshot.
type SnapshotItem struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// NewSnapshot captures the persisted fields of the given lines.
func NewSnapshot(items []LineItem) Snapshot {
	s := Snapshot{Version: SnapshotVersion, Items: make([]SnapshotItem, 0, len(items))}
	for _, item := range items {
		s.Items = append(s.Items, SnapshotItem{
			ProductID: item.Product.ID,
			Size:      item.Size.String(),
			Quantity:  item.Quantity,
		})
	}
	return s
}

// Marshal encodes the snapshot as JSON.
func (s Snapshot) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// legacyItem matches the unversioned array written by earlier storefront builds,
// where each entry embedded the whole cake and a cached total.
type legacyItem struct {
	ID        string `json:"id"`
	ProductID string `json:"productId"`
	Cake      *struct {
		ID string `json:"id"`
	} `json:"cake"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// DecodeSnapshot parses a versioned snapshot or migrates a legacy array.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Snapshot{}, errors.New("empty snapshot")
	}

	if trimmed[0] == '[' {
		var legacy []legacyItem
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return Snapshot{}, fmt.Errorf("unmarshal legacy snapshot: %w", err)
		}
		s := Snapshot{Version: SnapshotVersion, Items: make([]SnapshotItem, 0, len(legacy))}
		for _, li := range legacy {
			productID := li.ProductID
			if productID == "" && li.Cake != nil {
				productID = li.Cake.ID
			}
			s.Items = append(s.Items, SnapshotItem{
				ProductID: productID,
				Size:      li.Size,
				Quantity:  li.Quantity,
			})
		}
		return s, nil
	}

	var s Snapshot
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if s.Version < 1 || s.Version > SnapshotVersion {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedSnapshot, s.Version)
	}
	return s, nil
}
