package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"elibrary/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no row has the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrConditionNotMet is returned when a conditional write matched no row
	// although the record exists: the state or version changed underneath.
	ErrConditionNotMet = errors.New("write condition not met")
)

// BookRepository is the catalogue store. Borrow, Return and Update are
// conditional single-statement writes so that concurrent callers cannot both
// win a state transition.
type BookRepository interface {
	List(ctx context.Context, filter models.BookFilter) ([]models.Book, error)
	GetByID(ctx context.Context, id string) (*models.Book, error)
	Create(ctx context.Context, b *models.Book) error
	// Update writes the editable fields of b if the stored version still equals b.Version.
	Update(ctx context.Context, b *models.Book) (*models.Book, error)
	Delete(ctx context.Context, id string) error
	// Borrow marks the book as held by userID if it is currently available.
	Borrow(ctx context.Context, id, userID string) (*models.Book, error)
	// Return releases the book if it is currently held by userID.
	Return(ctx context.Context, id, userID string) (*models.Book, error)
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) List(ctx context.Context, filter models.BookFilter) ([]models.Book, error) {
	list := make([]models.Book, 0)
	q := applyBookFilter(r.db.WithContext(ctx).Model(&models.Book{}), filter)
	if err := q.Order("created_at desc").Order("id desc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return list, nil
}

func (r *bookRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	var b models.Book
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &b, nil
}

func (r *bookRepository) Create(ctx context.Context, b *models.Book) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	// GORM populates b.ID (BeforeCreate) and b.CreatedAt
	return nil
}

func (r *bookRepository) Update(ctx context.Context, b *models.Book) (*models.Book, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND version = ?", b.ID, b.Version).
		Updates(map[string]any{
			"title":        b.Title,
			"author":       b.Author,
			"genre":        b.Genre,
			"publish_date": b.PublishDate,
			"description":  b.Description,
			"cover_image":  b.CoverImage,
			"version":      gorm.Expr("version + 1"),
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("update book: %w", res.Error)
	}
	return r.afterConditionalWrite(ctx, b.ID, res.RowsAffected)
}

func (r *bookRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Book{})
	if res.Error != nil {
		return fmt.Errorf("delete book: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *bookRepository) Borrow(ctx context.Context, id, userID string) (*models.Book, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND available = ?", id, true).
		Updates(map[string]any{
			"available":   false,
			"borrowed_by": userID,
			"version":     gorm.Expr("version + 1"),
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("borrow book: %w", res.Error)
	}
	return r.afterConditionalWrite(ctx, id, res.RowsAffected)
}

func (r *bookRepository) Return(ctx context.Context, id, userID string) (*models.Book, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ? AND available = ? AND borrowed_by = ?", id, false, userID).
		Updates(map[string]any{
			"available":   true,
			"borrowed_by": nil,
			"version":     gorm.Expr("version + 1"),
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("return book: %w", res.Error)
	}
	return r.afterConditionalWrite(ctx, id, res.RowsAffected)
}

// afterConditionalWrite reloads the row after a conditional UPDATE. When
// nothing was written it tells a missing row apart from a failed condition.
func (r *bookRepository) afterConditionalWrite(ctx context.Context, id string, rows int64) (*models.Book, error) {
	b, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return b, ErrConditionNotMet
	}
	return b, nil
}
