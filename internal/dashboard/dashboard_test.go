package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/slemppa/storized/internal/domain"
)

func sampleItems() []domain.ContentItem {
	base := time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)
	return []domain.ContentItem{
		{ID: "c-5", Idea: "Blogikirjoitus kesästä", Platform: "Blog", Status: domain.ContentStatusDraft, CreatedAt: base},
		{ID: "c-4", Idea: "Toukokuun uutiskirje", Platform: "Uutiskirje", Status: domain.ContentStatusScheduled, CreatedAt: base.Add(-time.Hour)},
		{ID: "c-3", Idea: "Karuselli", Platform: "Instagram", Status: domain.ContentStatusDone, CreatedAt: base.Add(-2 * time.Hour)},
		{ID: "c-2", Idea: "Toinen blogi", Platform: "Blog", Status: domain.ContentStatusPublished, CreatedAt: base.Add(-3 * time.Hour)},
		{ID: "c-1", Idea: "Ilman alustaa", Status: domain.ContentStatusInProgress, CreatedAt: base.Add(-4 * time.Hour)},
	}
}

func ids(items []domain.ContentItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPlatformTableIsComplete(t *testing.T) {
	want := map[PlatformLabel]string{
		PlatformAll:        "",
		PlatformNewsletter: "Uutiskirje",
		PlatformBlog:       "Blog",
		PlatformInstagram:  "Instagram",
		PlatformLinkedIn:   "LinkedIn",
		PlatformFacebook:   "Facebook",
	}
	if len(Platforms) != len(want) {
		t.Fatalf("platform table has %d entries, want %d", len(Platforms), len(want))
	}
	for _, p := range Platforms {
		stored, ok := want[p.Label]
		if !ok {
			t.Fatalf("unexpected label %q", p.Label)
		}
		if p.Stored != stored {
			t.Fatalf("%s maps to %q, want %q", p.Label, p.Stored, stored)
		}
		if p.Icon == "" {
			t.Fatalf("%s has no icon", p.Label)
		}
	}
	if Platforms[0].Label != PlatformAll {
		t.Fatal("the unfiltered entry must come first")
	}
}

func TestFilter(t *testing.T) {
	items := sampleItems()
	cases := []struct {
		label string
		want  []string
	}{
		{"Kaikki", []string{"c-5", "c-4", "c-3", "c-2", "c-1"}},
		{"Blogi", []string{"c-5", "c-2"}},
		{"Uutiskirje", []string{"c-4"}},
		{"Instagram", []string{"c-3"}},
		{"LinkedIn", []string{}},
		{"Facebook", []string{}},
		{"Blog", []string{"c-5", "c-4", "c-3", "c-2", "c-1"}},
		{"", []string{"c-5", "c-4", "c-3", "c-2", "c-1"}},
		{"TikTok", []string{"c-5", "c-4", "c-3", "c-2", "c-1"}},
	}
	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			got := ids(Filter(items, tc.label))
			if !equalIDs(got, tc.want) {
				t.Fatalf("Filter(%q) = %v, want %v", tc.label, got, tc.want)
			}
		})
	}
}

func TestFilterIsIdempotentAndPure(t *testing.T) {
	items := sampleItems()
	once := Filter(items, "Blogi")
	twice := Filter(once, "Blogi")
	if !equalIDs(ids(once), ids(twice)) {
		t.Fatalf("filter not idempotent: %v vs %v", ids(once), ids(twice))
	}
	if len(items) != 5 || items[0].ID != "c-5" {
		t.Fatal("input list was modified")
	}
}

func TestDashboardSelectPlatform(t *testing.T) {
	d := New(domain.User{ID: "user-1"}, sampleItems())
	if d.Selected != PlatformAll || len(d.Filtered()) != 5 {
		t.Fatalf("initial state: selected=%s shown=%d", d.Selected, len(d.Filtered()))
	}

	d.SelectPlatform("Blogi")
	if got := ids(d.Filtered()); !equalIDs(got, []string{"c-5", "c-2"}) {
		t.Fatalf("Blogi shows %v", got)
	}
	for _, item := range d.Filtered() {
		if item.Platform != "Blog" {
			t.Fatalf("Blogi shows platform %q", item.Platform)
		}
	}
	if len(d.Items()) != 5 {
		t.Fatal("full list must be retained while filtered")
	}

	d.SelectPlatform("Kaikki")
	if len(d.Filtered()) != 5 {
		t.Fatalf("Kaikki shows %d items", len(d.Filtered()))
	}

	d.SelectPlatform("Tuntematon")
	if d.Selected != PlatformAll || len(d.Filtered()) != 5 {
		t.Fatalf("unknown label: selected=%s shown=%d", d.Selected, len(d.Filtered()))
	}
}

func TestDashboardEmpty(t *testing.T) {
	d := New(domain.User{}, nil)
	if !d.IsEmpty() || d.Filtered() == nil {
		t.Fatal("expected empty, non-nil list")
	}
	d = New(domain.User{}, sampleItems())
	d.SelectPlatform("Facebook")
	if !d.IsEmpty() {
		t.Fatal("filter without matches should be empty")
	}
}

func TestModalStateMachine(t *testing.T) {
	var m Modal
	if m.Open() || m.ListensForKeys() {
		t.Fatal("initial state must be closed without a key listener")
	}

	m = m.HandleKey(EscapeKey)
	if m.Open() {
		t.Fatal("Escape while closed must be a no-op")
	}

	item := domain.ContentItem{ID: "x", Idea: "Karuselli"}
	m = m.View(item)
	if !m.Open() || m.Item().ID != "x" || !m.ListensForKeys() {
		t.Fatalf("view should open on x: %+v", m.Item())
	}

	if still := m.HandleKey("Enter"); !still.Open() {
		t.Fatal("other keys must not close the modal")
	}

	m = m.HandleKey(EscapeKey)
	if m.Open() || m.Item() != nil || m.ListensForKeys() {
		t.Fatal("Escape while open must close")
	}

	m = m.View(item).Close()
	if m.Open() {
		t.Fatal("close must clear the selection")
	}
}

func TestDashboardViewItem(t *testing.T) {
	d := New(domain.User{}, sampleItems())
	if !d.ViewItem("c-3") {
		t.Fatal("expected c-3 to open")
	}
	if d.Modal.Item().Idea != "Karuselli" {
		t.Fatalf("modal shows %q", d.Modal.Item().Idea)
	}
	if d.ViewItem("missing") {
		t.Fatal("unknown id must not open")
	}
	if d.Modal.Item().ID != "c-3" {
		t.Fatal("unknown id must leave the modal unchanged")
	}
	d.HandleKey(EscapeKey)
	if d.Modal.Open() {
		t.Fatal("Escape should close")
	}
	d.ViewItem("c-5")
	d.CloseModal()
	if d.Modal.Open() {
		t.Fatal("CloseModal should close")
	}
}

type fakeContent struct {
	items []domain.ContentItem
	err   error
	calls int
}

func (f *fakeContent) ListByUser(context.Context, string) ([]domain.ContentItem, error) {
	f.calls++
	return f.items, f.err
}

type memCache struct {
	entries map[string][]domain.ContentItem
	puts    int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]domain.ContentItem{}}
}

func (m *memCache) GetContent(_ context.Context, sessionID, userID string) ([]domain.ContentItem, bool, error) {
	items, ok := m.entries[sessionID+"/"+userID]
	return items, ok, nil
}

func (m *memCache) PutContent(_ context.Context, sessionID, userID string, items []domain.ContentItem) error {
	m.puts++
	m.entries[sessionID+"/"+userID] = items
	return nil
}

func (m *memCache) DeleteContent(_ context.Context, sessionID string) error {
	for k := range m.entries {
		if len(k) > len(sessionID) && k[:len(sessionID)+1] == sessionID+"/" {
			delete(m.entries, k)
		}
	}
	return nil
}

func TestLoaderMountCachesList(t *testing.T) {
	content := &fakeContent{items: sampleItems()}
	cache := newMemCache()
	l := NewLoader(content, cache, zerolog.Nop())
	user := domain.User{ID: "user-1"}

	first := l.Mount(context.Background(), "sess", user)
	second := l.Mount(context.Background(), "sess", user)
	if len(first) != 5 || len(second) != 5 {
		t.Fatalf("unexpected lengths %d/%d", len(first), len(second))
	}
	if content.calls != 1 {
		t.Fatalf("backend calls = %d, want 1", content.calls)
	}
}

func TestLoaderRefreshRefetches(t *testing.T) {
	content := &fakeContent{items: sampleItems()}
	cache := newMemCache()
	l := NewLoader(content, cache, zerolog.Nop())
	user := domain.User{ID: "user-1"}

	l.Mount(context.Background(), "sess", user)
	content.items = content.items[:2]
	got := l.Refresh(context.Background(), "sess", user)
	if len(got) != 2 || content.calls != 2 {
		t.Fatalf("refresh got %d items after %d calls", len(got), content.calls)
	}
	if again := l.Mount(context.Background(), "sess", user); len(again) != 2 {
		t.Fatalf("cache not replaced, got %d", len(again))
	}
}

func TestLoaderFetchFailureYieldsEmptyList(t *testing.T) {
	content := &fakeContent{err: errors.New("backend down")}
	cache := newMemCache()
	l := NewLoader(content, cache, zerolog.Nop())

	got := l.Mount(context.Background(), "sess", domain.User{ID: "user-1"})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
	if cache.puts != 0 {
		t.Fatal("failed fetch must not be cached")
	}

	d := New(domain.User{ID: "user-1"}, got)
	d.SelectPlatform("Blogi")
	if !d.IsEmpty() {
		t.Fatal("expected empty dashboard")
	}
}

func TestLoaderWithoutCache(t *testing.T) {
	content := &fakeContent{}
	l := NewLoader(content, nil, zerolog.Nop())
	got := l.Mount(context.Background(), "", domain.User{ID: "u"})
	if got == nil || content.calls != 1 {
		t.Fatalf("got=%v calls=%d", got, content.calls)
	}
}
