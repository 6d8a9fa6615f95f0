package grocery

import (
	"math"
	"sort"
	"time"

	"github.com/dukerupert/grocer/internal/model"
)

// DisplayOrder returns items to buy first, sorted high to low priority with
// ties kept in insertion order, followed by purchased items in insertion
// order. The stored order is not changed.
func DisplayOrder(items []model.GroceryItem) []model.GroceryItem {
	var pending, purchased []model.GroceryItem
	for _, item := range items {
		if item.IsPurchased {
			purchased = append(purchased, item)
		} else {
			pending = append(pending, item)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Priority.Rank() < pending[j].Priority.Rank()
	})
	return append(pending, purchased...)
}

func Summarize(items []model.GroceryItem) model.ListSummary {
	sum := model.ListSummary{Total: len(items)}
	for _, item := range items {
		if item.IsPurchased {
			sum.Purchased++
			continue
		}
		switch item.Priority {
		case model.PriorityHigh:
			sum.High++
		case model.PriorityMedium:
			sum.Medium++
		case model.PriorityLow:
			sum.Low++
		}
	}
	return sum
}

// DaysLeft reports whole days, rounded up, until item escalates. ok is false
// when the item has no escalation deadline.
func DaysLeft(item model.GroceryItem, now time.Time) (days int, ok bool) {
	if item.WillBecomeCriticalAt == nil {
		return 0, false
	}
	remaining := item.WillBecomeCriticalAt.Sub(now)
	return int(math.Ceil(remaining.Hours() / 24)), true
}
