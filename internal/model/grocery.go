package model

import "time"

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities for display: high first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

type GroceryItem struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Quantity             string     `json:"quantity,omitempty"`
	Priority             Priority   `json:"priority"`
	IsPurchased          bool       `json:"is_purchased"`
	CreatedAt            time.Time  `json:"created_at"`
	DaysUntilCritical    *int       `json:"days_until_critical,omitempty"`
	WillBecomeCriticalAt *time.Time `json:"will_become_critical_at,omitempty"`
}

// ListSummary counts items the way the list view reports them. The priority
// tiers only count items still to buy.
type ListSummary struct {
	Total     int `json:"total"`
	High      int `json:"high"`
	Medium    int `json:"medium"`
	Low       int `json:"low"`
	Purchased int `json:"purchased"`
}
