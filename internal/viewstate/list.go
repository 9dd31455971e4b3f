package viewstate

import (
	"context"
	"errors"
	"sync"
	"time"

	"elibrary/internal/microservices/http-api/models"
)

// ErrNoPendingDelete is returned by ConfirmDelete without a prior RequestDelete.
var ErrNoPendingDelete = errors.New("no delete awaiting confirmation")

// Filter is what the list is narrowed by.
type Filter struct {
	Genre  string
	Search string
}

// ListState is a snapshot handed to OnChange subscribers.
type ListState struct {
	Filter        Filter
	Books         []models.Book
	Loading       bool
	Err           error
	PendingDelete string
}

// BookList keeps the catalogue list in sync with the filter. Genre changes
// fetch at once, search changes are debounced, and a response older than the
// newest fetch is discarded.
type BookList struct {
	api      API
	debounce *Debouncer
	onChange func(ListState)

	mu    sync.Mutex
	state ListState
	seq   uint64
}

type ListOption func(*BookList)

// WithSearchDelay overrides DefaultSearchDelay.
func WithSearchDelay(d time.Duration) ListOption {
	return func(l *BookList) { l.debounce = NewDebouncer(d) }
}

// WithOnChange registers fn to receive a snapshot after every state change.
// fn runs on whichever goroutine made the change.
func WithOnChange(fn func(ListState)) ListOption {
	return func(l *BookList) { l.onChange = fn }
}

func NewBookList(api API, opts ...ListOption) *BookList {
	l := &BookList{
		api:      api,
		debounce: NewDebouncer(DefaultSearchDelay),
		state:    ListState{Filter: Filter{Genre: models.GenreAll}},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns a snapshot of the current list state.
func (l *BookList) State() ListState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// Refresh fetches with the current filter.
func (l *BookList) Refresh(ctx context.Context) error {
	return l.fetch(ctx)
}

// SetGenre switches the genre and fetches immediately, superseding any
// debounced search that was still waiting.
func (l *BookList) SetGenre(ctx context.Context, genre string) error {
	if genre == "" {
		genre = models.GenreAll
	}
	l.debounce.Cancel()
	l.update(func(s *ListState) { s.Filter.Genre = genre })
	return l.fetch(ctx)
}

// SetSearch records the search text now and fetches once typing pauses.
// Errors from the deferred fetch land in ListState.Err.
func (l *BookList) SetSearch(ctx context.Context, search string) {
	l.update(func(s *ListState) { s.Filter.Search = search })
	l.debounce.Call(func() {
		l.fetch(ctx)
	})
}

func (l *BookList) fetch(ctx context.Context) error {
	var filter Filter
	var seq uint64
	l.update(func(s *ListState) {
		l.seq++
		seq = l.seq
		filter = s.Filter
		s.Loading = true
	})

	books, err := l.api.ListBooks(ctx, filter.Search, filter.Genre)

	stale := false
	l.update(func(s *ListState) {
		if seq != l.seq {
			stale = true
			return
		}
		s.Loading = false
		s.Err = err
		if err == nil {
			s.Books = books
		}
	})
	if stale {
		return nil
	}
	return err
}

// RequestDelete marks id as awaiting confirmation.
func (l *BookList) RequestDelete(id string) {
	l.update(func(s *ListState) { s.PendingDelete = id })
}

// PendingDelete returns the id awaiting confirmation.
func (l *BookList) PendingDelete() (string, bool) {
	s := l.State()
	return s.PendingDelete, s.PendingDelete != ""
}

func (l *BookList) CancelDelete() {
	l.update(func(s *ListState) { s.PendingDelete = "" })
}

// ConfirmDelete deletes the pending book and drops it from the local list
// without refetching.
func (l *BookList) ConfirmDelete(ctx context.Context) error {
	id, ok := l.PendingDelete()
	if !ok {
		return ErrNoPendingDelete
	}

	err := l.api.DeleteBook(ctx, id)
	l.update(func(s *ListState) {
		s.PendingDelete = ""
		if err != nil {
			s.Err = err
			return
		}
		s.Err = nil
		s.Books = removeBook(s.Books, id)
	})
	return err
}

// Apply folds a book changed elsewhere (borrowed, returned, edited) into the
// list. A book the filter no longer matches is dropped.
func (l *BookList) Apply(b models.Book) {
	l.update(func(s *ListState) {
		filter := models.NewBookFilter(s.Filter.Search, s.Filter.Genre)
		for i := range s.Books {
			if s.Books[i].ID != b.ID {
				continue
			}
			if filter.Matches(b) {
				s.Books[i] = b
			} else {
				s.Books = removeBook(s.Books, b.ID)
			}
			return
		}
	})
}

// Close stops any pending debounced fetch.
func (l *BookList) Close() {
	l.debounce.Cancel()
}

// update mutates state under the lock, then notifies outside it.
func (l *BookList) update(fn func(s *ListState)) {
	l.mu.Lock()
	fn(&l.state)
	snap := l.snapshotLocked()
	l.mu.Unlock()

	if l.onChange != nil {
		l.onChange(snap)
	}
}

func (l *BookList) snapshotLocked() ListState {
	snap := l.state
	if l.state.Books != nil {
		snap.Books = append([]models.Book(nil), l.state.Books...)
	}
	return snap
}

func removeBook(books []models.Book, id string) []models.Book {
	out := books[:0:0]
	for _, b := range books {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}
