package grocery

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukerupert/grocer/internal/model"
)

// DefaultDaysUntilCritical is offered for medium items when the user does
// not pick a delay.
const DefaultDaysUntilCritical = 3

var (
	ErrEmptyName       = errors.New("item name is required")
	ErrInvalidPriority = errors.New("priority must be high, medium or low")
	ErrInvalidDays     = errors.New("days until critical must be at least 1")
)

// Draft is the user input for a new item.
type Draft struct {
	Name              string
	Quantity          string
	Priority          model.Priority
	DaysUntilCritical *int
}

// Normalize trims the draft and checks it the way the add form does before
// calling AddItem. Escalation delays are dropped for non-medium priorities.
func (d Draft) Normalize() (Draft, error) {
	d.Name = strings.TrimSpace(d.Name)
	d.Quantity = strings.TrimSpace(d.Quantity)

	if d.Name == "" {
		return d, ErrEmptyName
	}
	if !d.Priority.Valid() {
		return d, fmt.Errorf("%w: %q", ErrInvalidPriority, d.Priority)
	}

	if d.Priority != model.PriorityMedium {
		d.DaysUntilCritical = nil
		return d, nil
	}
	if d.DaysUntilCritical != nil && *d.DaysUntilCritical < 1 {
		return d, ErrInvalidDays
	}
	return d, nil
}

// ParsePriority accepts a priority name in any case.
func ParsePriority(s string) (model.Priority, error) {
	p := model.Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

// Update is a partial update; nil fields are left unchanged. The escalation
// deadline is not recomputed when DaysUntilCritical changes.
type Update struct {
	Name              *string
	Quantity          *string
	Priority          *model.Priority
	IsPurchased       *bool
	DaysUntilCritical *int
}

func (u Update) apply(item *model.GroceryItem) {
	if u.Name != nil {
		item.Name = *u.Name
	}
	if u.Quantity != nil {
		item.Quantity = *u.Quantity
	}
	if u.Priority != nil {
		item.Priority = *u.Priority
	}
	if u.IsPurchased != nil {
		item.IsPurchased = *u.IsPurchased
	}
	if u.DaysUntilCritical != nil {
		days := *u.DaysUntilCritical
		item.DaysUntilCritical = &days
	}
}
