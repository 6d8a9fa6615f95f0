// Package grocery owns the grocery item collection: its persistence, the
// mutation operations and the medium-to-high priority escalation sweep.
package grocery

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dukerupert/grocer/internal/model"
	"github.com/dukerupert/grocer/internal/notify"
	"github.com/dukerupert/grocer/internal/store"
	"github.com/google/uuid"
)

const day = 24 * time.Hour

// LoadErrorMessage is reported through Err when the stored list cannot be read.
const LoadErrorMessage = "failed to load the grocery list"

// Option configures a ListStore.
type Option func(*ListStore)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *ListStore) { s.now = now }
}

// WithIDFunc replaces the item id generator.
func WithIDFunc(newID func() string) Option {
	return func(s *ListStore) { s.newID = newID }
}

// WithPublisher delivers every event a mutation produces to p, after the
// mutation has been applied.
func WithPublisher(p notify.Publisher) Option {
	return func(s *ListStore) { s.pub = p }
}

// ListStore holds the item collection. All operations are serialized, so a
// sweep never interleaves with a user mutation.
type ListStore struct {
	mu      sync.Mutex
	backend store.Backend
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
	pub     notify.Publisher

	items   []model.GroceryItem
	loading bool
	loadErr string

	initOnce sync.Once
}

func NewListStore(backend store.Backend, logger *slog.Logger, opts ...Option) *ListStore {
	s := &ListStore{
		backend: backend,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
		loading: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize hydrates the collection from storage. Only the first call has
// any effect. A corrupt or unreadable list leaves the collection empty and
// sets Err; the store stays usable.
func (s *ListStore) Initialize() {
	s.initOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		defer func() { s.loading = false }()

		raw, ok, err := s.backend.Get(store.KeyGroceryItems)
		if err != nil {
			s.logger.Error("load grocery list", "error", err)
			s.loadErr = LoadErrorMessage
			return
		}
		if !ok {
			return
		}

		items, err := Decode(raw)
		if err != nil {
			s.logger.Error("load grocery list", "error", err)
			s.loadErr = LoadErrorMessage
			return
		}
		s.items = items
		s.logger.Debug("grocery list loaded", "items", len(items))
	})
}

// Items returns a copy of the collection in insertion order.
func (s *ListStore) Items() []model.GroceryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.GroceryItem, len(s.items))
	copy(out, s.items)
	return out
}

// Item returns the item with the given id.
func (s *ListStore) Item(id string) (model.GroceryItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	return model.GroceryItem{}, false
}

func (s *ListStore) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the load error message, or "" when loading succeeded.
func (s *ListStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// AddItem appends a new item built from d. The caller must pass a trimmed,
// non-empty name (see Draft.Normalize); it is not checked again here.
func (s *ListStore) AddItem(d Draft) (model.GroceryItem, []notify.Event) {
	s.mu.Lock()
	now := s.now().UTC()
	item := model.GroceryItem{
		ID:        s.uniqueID(),
		Name:      d.Name,
		Quantity:  d.Quantity,
		Priority:  d.Priority,
		CreatedAt: now,
	}
	if d.DaysUntilCritical != nil {
		days := *d.DaysUntilCritical
		item.DaysUntilCritical = &days
		if d.Priority == model.PriorityMedium && days > 0 {
			at := now.Add(time.Duration(days) * day)
			item.WillBecomeCriticalAt = &at
		}
	}

	s.items = append(s.items, item)
	events := s.persist()
	s.mu.Unlock()

	events = append(events, notify.Event{
		Kind:        notify.KindItemAdded,
		Title:       "Item added",
		Description: fmt.Sprintf("%q was added to the list", item.Name),
		ItemID:      item.ID,
	})
	s.logger.Debug("item added", "id", item.ID, "name", item.Name, "priority", item.Priority)
	return item, s.emit(events)
}

// UpdateItem merges u into the item with the given id. Unknown ids are a
// no-op and report false.
func (s *ListStore) UpdateItem(id string, u Update) (bool, []notify.Event) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Debug("update: no such item", "id", id)
		return false, nil
	}

	u.apply(&s.items[i])
	events := s.persist()
	s.mu.Unlock()

	return true, s.emit(events)
}

// DeleteItem removes the item with the given id. Deleting an unknown id is
// a no-op, so repeated deletes are safe.
func (s *ListStore) DeleteItem(id string) (bool, []notify.Event) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Debug("delete: no such item", "id", id)
		return false, nil
	}

	removed := s.items[i]
	items := make([]model.GroceryItem, 0, len(s.items)-1)
	items = append(items, s.items[:i]...)
	s.items = append(items, s.items[i+1:]...)
	events := s.persist()
	s.mu.Unlock()

	events = append(events, notify.Event{
		Kind:        notify.KindItemRemoved,
		Title:       "Item removed",
		Description: fmt.Sprintf("%q was removed from the list", removed.Name),
		ItemID:      removed.ID,
	})
	return true, s.emit(events)
}

// TogglePurchased flips the purchased flag of the item with the given id.
func (s *ListStore) TogglePurchased(id string) (bool, []notify.Event) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Debug("toggle: no such item", "id", id)
		return false, nil
	}

	s.items[i].IsPurchased = !s.items[i].IsPurchased
	item := s.items[i]
	events := s.persist()
	s.mu.Unlock()

	e := notify.Event{
		Kind:        notify.KindItemPurchased,
		Title:       "Marked purchased",
		Description: fmt.Sprintf("%q was purchased", item.Name),
		ItemID:      item.ID,
	}
	if !item.IsPurchased {
		e.Kind = notify.KindItemUnpurchased
		e.Title = "Unmarked"
		e.Description = fmt.Sprintf("%q is no longer purchased", item.Name)
	}
	return true, s.emit(append(events, e))
}

// SweepPriorities promotes every unpurchased medium item whose escalation
// deadline has passed to high priority and returns how many changed.
// Running it again without time passing changes nothing.
func (s *ListStore) SweepPriorities() (int, []notify.Event) {
	s.mu.Lock()
	now := s.now()
	changed := 0
	for i := range s.items {
		item := &s.items[i]
		if item.Priority != model.PriorityMedium || item.IsPurchased || item.WillBecomeCriticalAt == nil {
			continue
		}
		if now.Before(*item.WillBecomeCriticalAt) {
			continue
		}
		item.Priority = model.PriorityHigh
		changed++
	}
	if changed == 0 {
		s.mu.Unlock()
		return 0, nil
	}

	events := s.persist()
	s.mu.Unlock()

	s.logger.Info("priorities escalated", "count", changed)
	events = append(events, notify.Event{
		Kind:        notify.KindPrioritiesEscalated,
		Title:       "Priorities updated",
		Description: fmt.Sprintf("%d item(s) became high priority", changed),
	})
	return changed, s.emit(events)
}

// persist writes the whole collection. A failed write keeps the in-memory
// state and yields a save_failed event. Callers hold s.mu.
func (s *ListStore) persist() []notify.Event {
	raw, err := Encode(s.items)
	if err == nil {
		err = s.backend.Set(store.KeyGroceryItems, raw)
	}
	if err != nil {
		s.logger.Error("save grocery list", "error", err)
		return []notify.Event{{
			Kind:        notify.KindSaveFailed,
			Title:       "Save failed",
			Description: "Your changes were not saved",
		}}
	}
	return nil
}

func (s *ListStore) emit(events []notify.Event) []notify.Event {
	notify.PublishAll(s.pub, events)
	return events
}

func (s *ListStore) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// uniqueID draws ids until one is unused. Callers hold s.mu.
func (s *ListStore) uniqueID() string {
	for {
		id := s.newID()
		if s.indexOf(id) < 0 {
			return id
		}
	}
}
