package listview

import (
	"context"
	"sync"

	"github.com/iliyamo/directory-admin/internal/apiclient"
)

// State is where a list is in its load cycle.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateEmpty   State = "empty"
	StateFailed  State = "error"
)

// EmptyMessage is shown when a successful fetch returns no records.
const EmptyMessage = "No records found"

// Fetcher loads the full collection.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// List is the state behind one paginated table.
type List[T any] struct {
	mu       sync.Mutex
	fetch    Fetcher[T]
	fallback string // message used when a fetch error carries none
	items    []T
	page     int
	size     int
	state    State
	message  string
}

// New creates a list that loads through fetch and shows size rows per page.
// fallback is the message shown for failures that carry no server text.
func New[T any](fetch Fetcher[T], size int, fallback string) *List[T] {
	if size < 1 {
		size = 1
	}
	return &List[T]{fetch: fetch, fallback: fallback, items: []T{}, page: 1, size: size, state: StateIdle}
}

// Load fetches the collection. On failure the list is reset to empty and the
// error text is kept for display; the error is also returned to the caller.
func (l *List[T]) Load(ctx context.Context) error {
	l.mu.Lock()
	l.state = StateLoading
	l.message = ""
	l.mu.Unlock()

	items, err := l.fetch(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.items = []T{}
		l.state = StateFailed
		l.message = apiclient.Describe(err, l.fallback)
		return err
	}
	if items == nil {
		items = []T{}
	}
	l.items = items
	if len(items) == 0 {
		l.state = StateEmpty
		l.message = EmptyMessage
	} else {
		l.state = StateReady
	}
	return nil
}

// Retry re-runs Load. There is no automatic retry anywhere.
func (l *List[T]) Retry(ctx context.Context) error { return l.Load(ctx) }

// Mutate runs a create or update and refetches on success. When fn fails the
// list is left exactly as it was.
func (l *List[T]) Mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return l.Load(ctx)
}

// Delete runs fn and refetches. If the removed row was the only one on the
// current page and that page is not the first, the list steps back one page
// so it never shows an empty page while earlier pages have content. The
// list does not need to be loaded beforehand: the page set with Seek is
// checked against the refetched rows.
func (l *List[T]) Delete(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	if err := l.Load(ctx); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if last := PageCount(len(l.items), l.size); l.page > 1 && l.page > last {
		l.page = max(last, 1)
	}
	return nil
}

// Seek sets the page without clamping, for a list that has not been loaded
// yet. Delete and SetPage clamp it later.
func (l *List[T]) Seek(p int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.page = max(p, 1)
}

// SetPage moves to page p, clamped to the pages that exist.
func (l *List[T]) SetPage(p int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	last := PageCount(len(l.items), l.size)
	if last < 1 {
		last = 1
	}
	switch {
	case p < 1:
		p = 1
	case p > last:
		p = last
	}
	l.page = p
}

// Visible returns the rows of the current page.
func (l *List[T]) Visible() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Paginate(l.items, l.page, l.size)
}

// Items returns the full collection.
func (l *List[T]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items
}

func (l *List[T]) Page() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page
}

func (l *List[T]) Size() int { return l.size }

func (l *List[T]) Pages() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return PageCount(len(l.items), l.size)
}

func (l *List[T]) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

func (l *List[T]) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Message is the error or empty-state text to show, if any.
func (l *List[T]) Message() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.message
}

// Snapshot is the serialisable view of a list page.
type Snapshot[T any] struct {
	Items    []T    `json:"items"`
	Page     int    `json:"page"`
	Pages    int    `json:"pages"`
	Total    int    `json:"total"`
	PageSize int    `json:"page_size"`
	State    State  `json:"state"`
	Message  string `json:"message,omitempty"`
}

// Snapshot captures the current page.
func (l *List[T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot[T]{
		Items:    Paginate(l.items, l.page, l.size),
		Page:     l.page,
		Pages:    PageCount(len(l.items), l.size),
		Total:    len(l.items),
		PageSize: l.size,
		State:    l.state,
		Message:  l.message,
	}
}
