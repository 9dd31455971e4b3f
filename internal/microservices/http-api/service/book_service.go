package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"elibrary/internal/microservices/http-api/dto"
	"elibrary/internal/microservices/http-api/models"
	"elibrary/internal/microservices/http-api/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BookService holds the catalogue rules: CRUD plus the borrow/return state
// machine (Available --borrow(u)--> Borrowed(u) --return(u)--> Available).
type BookService interface {
	List(ctx context.Context, search, genre string) ([]models.Book, error)
	Get(ctx context.Context, id string) (*models.Book, error)
	Create(ctx context.Context, b *models.Book, requesterID string) (*models.Book, error)
	// Update merges only the supplied fields into the stored book.
	Update(ctx context.Context, id string, in dto.UpdateBookRequest, requesterID string) (*models.Book, error)
	Delete(ctx context.Context, id, requesterID string) error
	Borrow(ctx context.Context, id, requesterID string) (*models.Book, error)
	Return(ctx context.Context, id, requesterID string) (*models.Book, error)
}

// BookServiceOptions tunes deployment specific rules.
type BookServiceOptions struct {
	// RestrictDeleteToOwner limits Delete to the user who created the book.
	RestrictDeleteToOwner bool
}

type bookService struct {
	repo   repository.BookRepository
	opts   BookServiceOptions
	tracer trace.Tracer
}

func NewBookService(repo repository.BookRepository, opts BookServiceOptions) BookService {
	return &bookService{
		repo:   repo,
		opts:   opts,
		tracer: otel.Tracer("elibrary/books"),
	}
}

func (s *bookService) List(ctx context.Context, search, genre string) ([]models.Book, error) {
	filter := models.NewBookFilter(search, genre)
	ctx, span := s.tracer.Start(ctx, "books.list", trace.WithAttributes(
		attribute.String("filter.genre", filter.Genre),
		attribute.Bool("filter.search", filter.Search != ""),
	))
	list, err := s.repo.List(ctx, filter)
	endSpan(span, err)
	return list, err
}

func (s *bookService) Get(ctx context.Context, id string) (*models.Book, error) {
	ctx, span := s.tracer.Start(ctx, "books.get", trace.WithAttributes(attribute.String("book.id", id)))
	if err := checkBookID(id); err != nil {
		endSpan(span, err)
		return nil, err
	}
	b, err := s.repo.GetByID(ctx, id)
	err = translateNotFound(err)
	endSpan(span, err)
	return b, err
}

func (s *bookService) Create(ctx context.Context, b *models.Book, requesterID string) (_ *models.Book, err error) {
	ctx, span := s.tracer.Start(ctx, "books.create", trace.WithAttributes(attribute.String("user.id", requesterID)))
	defer func() { endSpan(span, err) }()

	if requesterID == "" {
		return nil, ErrUnauthenticated
	}
	normalizeBook(b)
	if err := validateBook(b); err != nil {
		return nil, err
	}

	// Server owned fields; anything the client sent is ignored
	b.ID = ""
	b.Available = true
	b.BorrowedBy = nil
	b.CreatedBy = requesterID
	b.Version = 1

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("book.id", b.ID))
	return b, nil
}

func (s *bookService) Update(ctx context.Context, id string, in dto.UpdateBookRequest, requesterID string) (_ *models.Book, err error) {
	ctx, span := s.tracer.Start(ctx, "books.update", trace.WithAttributes(
		attribute.String("book.id", id),
		attribute.String("user.id", requesterID),
	))
	defer func() { endSpan(span, err) }()

	if requesterID == "" {
		return nil, ErrUnauthenticated
	}
	if err := checkBookID(id); err != nil {
		return nil, err
	}
	if in.IsEmpty() {
		return nil, validationError([]string{"no fields to update"})
	}

	// One retry when another writer bumped the version between read and write
	for attempt := 0; attempt < 2; attempt++ {
		current, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, translateNotFound(err)
		}

		in.ApplyTo(current)
		normalizeBook(current)
		if err := validateBook(current); err != nil {
			return nil, err
		}

		updated, err := s.repo.Update(ctx, current)
		if errors.Is(err, repository.ErrConditionNotMet) {
			span.AddEvent("version conflict", trace.WithAttributes(attribute.Int("attempt", attempt)))
			continue
		}
		if err != nil {
			return nil, translateNotFound(err)
		}
		return updated, nil
	}
	return nil, ErrConcurrentUpdate
}

func (s *bookService) Delete(ctx context.Context, id, requesterID string) (err error) {
	ctx, span := s.tracer.Start(ctx, "books.delete", trace.WithAttributes(
		attribute.String("book.id", id),
		attribute.String("user.id", requesterID),
	))
	defer func() { endSpan(span, err) }()

	if requesterID == "" {
		return ErrUnauthenticated
	}
	if err := checkBookID(id); err != nil {
		return err
	}

	if s.opts.RestrictDeleteToOwner {
		b, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return translateNotFound(err)
		}
		if b.CreatedBy != requesterID {
			return ErrNotOwner
		}
	}

	return translateNotFound(s.repo.Delete(ctx, id))
}

func (s *bookService) Borrow(ctx context.Context, id, requesterID string) (_ *models.Book, err error) {
	ctx, span := s.tracer.Start(ctx, "books.borrow", trace.WithAttributes(
		attribute.String("book.id", id),
		attribute.String("user.id", requesterID),
	))
	defer func() { endSpan(span, err) }()

	if requesterID == "" {
		return nil, ErrUnauthenticated
	}
	if err := checkBookID(id); err != nil {
		return nil, err
	}

	b, err := s.repo.Borrow(ctx, id, requesterID)
	if errors.Is(err, repository.ErrConditionNotMet) {
		return nil, ErrBookUnavailable
	}
	if err != nil {
		return nil, translateNotFound(err)
	}
	return b, nil
}

func (s *bookService) Return(ctx context.Context, id, requesterID string) (_ *models.Book, err error) {
	ctx, span := s.tracer.Start(ctx, "books.return", trace.WithAttributes(
		attribute.String("book.id", id),
		attribute.String("user.id", requesterID),
	))
	defer func() { endSpan(span, err) }()

	if requesterID == "" {
		return nil, ErrUnauthenticated
	}
	if err := checkBookID(id); err != nil {
		return nil, err
	}

	b, err := s.repo.Return(ctx, id, requesterID)
	if errors.Is(err, repository.ErrConditionNotMet) {
		return nil, ErrNotHolder
	}
	if err != nil {
		return nil, translateNotFound(err)
	}
	return b, nil
}

func normalizeBook(b *models.Book) {
	b.Title = strings.TrimSpace(b.Title)
	b.Author = strings.TrimSpace(b.Author)
	b.Genre = strings.TrimSpace(b.Genre)
	b.Description = strings.TrimSpace(b.Description)
	b.CoverImage = strings.TrimSpace(b.CoverImage)
}

// validateBook checks the fields every stored book must carry.
func validateBook(b *models.Book) error {
	var problems []string
	if b.Title == "" {
		problems = append(problems, "title is required")
	}
	if b.Author == "" {
		problems = append(problems, "author is required")
	}
	switch {
	case b.Genre == "":
		problems = append(problems, "genre is required")
	case !models.IsValidGenre(b.Genre):
		problems = append(problems, "genre must be one of: "+strings.Join(models.Genres, ", "))
	}
	if b.PublishDate.IsZero() {
		problems = append(problems, "publishDate is required")
	}
	if b.Description == "" {
		problems = append(problems, "description is required")
	}
	switch {
	case b.CoverImage == "":
		problems = append(problems, "coverImage is required")
	case !isHTTPURL(b.CoverImage):
		problems = append(problems, "coverImage must be an http(s) URL")
	}

	if len(problems) > 0 {
		return validationError(problems)
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// checkBookID rejects ids that cannot name a stored book. Postgres refuses
// non-uuid text for the uuid column instead of finding nothing.
func checkBookID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrBookNotFound
	}
	return nil
}

func translateNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrBookNotFound
	}
	return err
}

// endSpan records err on the span unless it is an expected domain outcome.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		if !isDomainError(err) {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrUnauthenticated, ErrBookNotFound,
		ErrBookUnavailable, ErrForbidden, ErrConcurrentUpdate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
