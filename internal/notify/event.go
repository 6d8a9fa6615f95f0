// Package notify carries transient user-feedback events. Events are fire and
// forget: nothing is persisted and no store depends on them being delivered.
package notify

type Kind string

const (
	KindItemAdded           Kind = "item_added"
	KindItemRemoved         Kind = "item_removed"
	KindItemPurchased       Kind = "item_purchased"
	KindItemUnpurchased     Kind = "item_unpurchased"
	KindPrioritiesEscalated Kind = "priorities_escalated"
	KindSaveFailed          Kind = "save_failed"
)

// Event is a short title/description pair meant for a toast-style display.
type Event struct {
	Kind        Kind   `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ItemID      string `json:"item_id,omitempty"`
}

// Publisher accepts events. Implementations must not block.
type Publisher interface {
	Publish(Event)
}

// PublishAll sends each event to p. A nil p discards them.
func PublishAll(p Publisher, events []Event) {
	if p == nil {
		return
	}
	for _, e := range events {
		p.Publish(e)
	}
}
