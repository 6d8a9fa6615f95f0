package grocery

import (
	"encoding/json"
	"fmt"

	"github.com/dukerupert/grocer/internal/model"
)

// Encode serializes items in insertion order. Timestamps are written as
// RFC 3339 strings with nanosecond precision.
func Encode(items []model.GroceryItem) (string, error) {
	if items == nil {
		items = []model.GroceryItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode items: %w", err)
	}
	return string(data), nil
}

// Decode parses the stored form back into items, restoring timestamps.
func Decode(raw string) ([]model.GroceryItem, error) {
	var items []model.GroceryItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	for i, item := range items {
		if item.ID == "" {
			return nil, fmt.Errorf("decode items: item %d has no id", i)
		}
	}
	return items, nil
}
