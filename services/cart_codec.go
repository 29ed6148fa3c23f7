package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"storefront/models"
)

// EntryError describes a persisted cart entry that was dropped while
// decoding.
type EntryError struct {
	Index  int
	Reason string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("cart entry %d: %s", e.Index, e.Reason)
}

type persistedItem struct {
	ID       *string `json:"id"`
	Title    *string `json:"title"`
	Price    *int    `json:"price"`
	Image    *string `json:"image"`
	Quantity *int    `json:"quantity"`
}

// EncodeCart serializes the full cart. An empty cart encodes as "[]".
func EncodeCart(items []models.LineItem) (string, error) {
	if items == nil {
		items = []models.LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode cart: %w", err)
	}
	return string(data), nil
}

// DecodeCart parses a persisted cart. A payload that is not a JSON array
// yields an empty cart. Inside an array every entry is validated on its own:
// invalid entries are dropped, a missing image gets defaultImage and repeated
// ids are merged into the first occurrence. The returned slice is never nil.
func DecodeCart(payload, defaultImage string) ([]models.LineItem, []error) {
	items := []models.LineItem{}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(payload)), &raw); err != nil {
		return items, []error{fmt.Errorf("decode cart: %w", err)}
	}

	var problems []error
	index := make(map[string]int, len(raw))
	for i, entry := range raw {
		item, err := decodeEntry(entry, defaultImage)
		if err != nil {
			problems = append(problems, &EntryError{Index: i, Reason: err.Error()})
			continue
		}
		if pos, seen := index[item.ID]; seen {
			items[pos].Quantity += item.Quantity
			problems = append(problems, &EntryError{Index: i, Reason: "duplicate id " + item.ID + " merged"})
			continue
		}
		index[item.ID] = len(items)
		items = append(items, item)
	}
	return items, problems
}

func decodeEntry(entry json.RawMessage, defaultImage string) (models.LineItem, error) {
	var p persistedItem
	if err := json.Unmarshal(entry, &p); err != nil {
		return models.LineItem{}, err
	}

	switch {
	case p.ID == nil || *p.ID == "":
		return models.LineItem{}, fmt.Errorf("missing id")
	case p.Title == nil:
		return models.LineItem{}, fmt.Errorf("missing title")
	case p.Price == nil:
		return models.LineItem{}, fmt.Errorf("missing price")
	case *p.Price < 0:
		return models.LineItem{}, fmt.Errorf("negative price %d", *p.Price)
	case p.Quantity == nil:
		return models.LineItem{}, fmt.Errorf("missing quantity")
	case *p.Quantity < 1:
		return models.LineItem{}, fmt.Errorf("non-positive quantity %d", *p.Quantity)
	}

	image := defaultImage
	if p.Image != nil && *p.Image != "" {
		image = *p.Image
	}

	return models.LineItem{
		ID:       *p.ID,
		Title:    *p.Title,
		Price:    *p.Price,
		Image:    image,
		Quantity: *p.Quantity,
	}, nil
}
