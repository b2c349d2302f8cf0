package dashboard

import "github.com/slemppa/storized/internal/domain"

// PlatformLabel is a filter label shown in the sidebar.
type PlatformLabel string

const (
	PlatformAll        PlatformLabel = "Kaikki"
	PlatformNewsletter PlatformLabel = "Uutiskirje"
	PlatformBlog       PlatformLabel = "Blogi"
	PlatformInstagram  PlatformLabel = "Instagram"
	PlatformLinkedIn   PlatformLabel = "LinkedIn"
	PlatformFacebook   PlatformLabel = "Facebook"
)

// Platform maps a sidebar label to the value stored in content.platform.
// Stored is empty for the label that disables filtering.
type Platform struct {
	Label  PlatformLabel
	Stored string
	Icon   string
}

// Platforms is the sidebar in display order. Note "Blogi" filters on the
// stored value "Blog".
var Platforms = [...]Platform{
	{Label: PlatformAll, Icon: "📱"},
	{Label: PlatformNewsletter, Stored: "Uutiskirje", Icon: "📧"},
	{Label: PlatformBlog, Stored: "Blog", Icon: "📝"},
	{Label: PlatformInstagram, Stored: "Instagram", Icon: "📷"},
	{Label: PlatformLinkedIn, Stored: "LinkedIn", Icon: "💼"},
	{Label: PlatformFacebook, Stored: "Facebook", Icon: "📘"},
}

// LookupPlatform finds the table entry for label.
func LookupPlatform(label string) (Platform, bool) {
	for _, p := range Platforms {
		if string(p.Label) == label {
			return p, true
		}
	}
	return Platform{}, false
}

// Filter returns the items whose platform matches the stored value for label.
// The "all" label and unknown labels return every item. items is not modified.
func Filter(items []domain.ContentItem, label string) []domain.ContentItem {
	p, ok := LookupPlatform(label)
	if !ok || p.Stored == "" {
		out := make([]domain.ContentItem, len(items))
		copy(out, items)
		return out
	}
	out := make([]domain.ContentItem, 0, len(items))
	for _, item := range items {
		if item.Platform == p.Stored {
			out = append(out, item)
		}
	}
	return out
}
