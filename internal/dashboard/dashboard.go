// Package dashboard holds the content listing state: the cached full list,
// the platform filter and the detail modal.
package dashboard

import (
	"github.com/slemppa/storized/internal/domain"
)

// Dashboard is the view state for one signed-in user.
type Dashboard struct {
	User     domain.User
	Selected PlatformLabel
	Modal    Modal

	items    []domain.ContentItem
	filtered []domain.ContentItem
}

// New builds the dashboard over the full list, unfiltered and with the modal
// closed.
func New(user domain.User, items []domain.ContentItem) *Dashboard {
	if items == nil {
		items = []domain.ContentItem{}
	}
	d := &Dashboard{User: user, items: items}
	d.SelectPlatform(string(PlatformAll))
	return d
}

// SelectPlatform re-derives the filtered view from the full list. Unknown
// labels select everything.
func (d *Dashboard) SelectPlatform(label string) {
	if _, ok := LookupPlatform(label); !ok {
		label = string(PlatformAll)
	}
	d.Selected = PlatformLabel(label)
	d.filtered = Filter(d.items, label)
}

// Items is the full, unfiltered list, newest first.
func (d *Dashboard) Items() []domain.ContentItem {
	return d.items
}

// Filtered is the list currently shown.
func (d *Dashboard) Filtered() []domain.ContentItem {
	return d.filtered
}

// IsEmpty reports whether the shown list is empty.
func (d *Dashboard) IsEmpty() bool {
	return len(d.filtered) == 0
}

// Find returns the item with id from the full list.
func (d *Dashboard) Find(id string) (domain.ContentItem, bool) {
	for _, item := range d.items {
		if item.ID == id {
			return item, true
		}
	}
	return domain.ContentItem{}, false
}

// ViewItem opens the modal on the item with id. It reports false and leaves
// the modal unchanged when no such item is loaded.
func (d *Dashboard) ViewItem(id string) bool {
	item, ok := d.Find(id)
	if !ok {
		return false
	}
	d.Modal = d.Modal.View(item)
	return true
}

// CloseModal closes the detail modal.
func (d *Dashboard) CloseModal() {
	d.Modal = d.Modal.Close()
}

// HandleKey forwards a key press to the modal.
func (d *Dashboard) HandleKey(key string) {
	d.Modal = d.Modal.HandleKey(key)
}
