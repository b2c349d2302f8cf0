package dashboard

import "github.com/slemppa/storized/internal/domain"

// EscapeKey is the key that closes an open modal.
const EscapeKey = "Escape"

// Modal is either closed or open on one item. The zero value is closed.
type Modal struct {
	item *domain.ContentItem
}

// Open reports whether an item is shown.
func (m Modal) Open() bool {
	return m.item != nil
}

// Item returns the shown item, or nil when closed.
func (m Modal) Item() *domain.ContentItem {
	return m.item
}

// View opens the modal on item, replacing any previous selection.
func (m Modal) View(item domain.ContentItem) Modal {
	return Modal{item: &item}
}

// Close clears the selection.
func (m Modal) Close() Modal {
	return Modal{}
}

// HandleKey closes an open modal on Escape. Other keys, and any key while
// closed, leave it unchanged.
func (m Modal) HandleKey(key string) Modal {
	if key == EscapeKey && m.Open() {
		return m.Close()
	}
	return m
}

// ListensForKeys reports whether a key listener must be attached. It is true
// exactly while the modal is open.
func (m Modal) ListensForKeys() bool {
	return m.Open()
}
