package viewstate

import (
	"context"
	"errors"
	"sync"

	"elibrary/internal/microservices/http-api/models"
)

// ErrDeleteNotRequested is returned by ConfirmDelete without a prior RequestDelete.
var ErrDeleteNotRequested = errors.New("delete was not requested")

// DetailState is a snapshot of one book's view.
type DetailState struct {
	Book             *models.Book
	Loading          bool
	Err              error
	ConfirmingDelete bool
	Deleted          bool
}

// BookDetail is the view model behind a single book page.
type BookDetail struct {
	api      API
	id       string
	onChange func(DetailState)

	mu    sync.Mutex
	state DetailState
}

func NewBookDetail(api API, id string, onChange func(DetailState)) *BookDetail {
	return &BookDetail{api: api, id: id, onChange: onChange}
}

func (d *BookDetail) ID() string { return d.id }

func (d *BookDetail) State() DetailState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *BookDetail) Load(ctx context.Context) error {
	d.update(func(s *DetailState) { s.Loading = true })
	return d.settle(d.api.GetBook(ctx, d.id))
}

// Borrow takes the book for the signed-in user.
func (d *BookDetail) Borrow(ctx context.Context) error {
	d.update(func(s *DetailState) { s.Loading = true })
	return d.settle(d.api.BorrowBook(ctx, d.id))
}

// Return gives the book back.
func (d *BookDetail) Return(ctx context.Context) error {
	d.update(func(s *DetailState) { s.Loading = true })
	return d.settle(d.api.ReturnBook(ctx, d.id))
}

// CanBorrow reports whether the loaded book is on the shelf.
func (d *BookDetail) CanBorrow() bool {
	s := d.State()
	return s.Book != nil && s.Book.Available
}

// CanReturn reports whether the session's user holds the book.
func (d *BookDetail) CanReturn(session *Session) bool {
	s := d.State()
	if s.Book == nil || session == nil {
		return false
	}
	userID := session.UserID()
	return userID != "" && s.Book.IsBorrowedBy(userID)
}

func (d *BookDetail) RequestDelete() {
	d.update(func(s *DetailState) { s.ConfirmingDelete = true })
}

func (d *BookDetail) CancelDelete() {
	d.update(func(s *DetailState) { s.ConfirmingDelete = false })
}

func (d *BookDetail) ConfirmDelete(ctx context.Context) error {
	if !d.State().ConfirmingDelete {
		return ErrDeleteNotRequested
	}

	err := d.api.DeleteBook(ctx, d.id)
	d.update(func(s *DetailState) {
		s.ConfirmingDelete = false
		s.Err = err
		if err == nil {
			s.Deleted = true
			s.Book = nil
		}
	})
	return err
}

func (d *BookDetail) settle(b *models.Book, err error) error {
	d.update(func(s *DetailState) {
		s.Loading = false
		s.Err = err
		if err == nil {
			s.Book = b
		}
	})
	return err
}

func (d *BookDetail) update(fn func(s *DetailState)) {
	d.mu.Lock()
	fn(&d.state)
	snap := d.snapshotLocked()
	d.mu.Unlock()

	if d.onChange != nil {
		d.onChange(snap)
	}
}

func (d *BookDetail) snapshotLocked() DetailState {
	snap := d.state
	if d.state.Book != nil {
		b := *d.state.Book
		snap.Book = &b
	}
	return snap
}
