package dto

import (
	"elibrary/internal/microservices/http-api/models"
)

// CreateBookRequest used for POST /api/books. Field-level rules (non-blank,
// genre enum, cover URL) are enforced by the book service.
type CreateBookRequest struct {
	Title       string      `json:"title"`
	Author      string      `json:"author"`
	Genre       string      `json:"genre"`
	PublishDate models.Date `json:"publishDate"`
	Description string      `json:"description"`
	CoverImage  string      `json:"coverImage"`
}

// UpdateBookRequest used for PUT /api/books/:id. Only non-nil fields are applied.
type UpdateBookRequest struct {
	Title       *string      `json:"title,omitempty"`
	Author      *string      `json:"author,omitempty"`
	Genre       *string      `json:"genre,omitempty"`
	PublishDate *models.Date `json:"publishDate,omitempty"`
	Description *string      `json:"description,omitempty"`
	CoverImage  *string      `json:"coverImage,omitempty"`
}

// ListBooksQuery binds GET /api/books query parameters.
type ListBooksQuery struct {
	Search string `form:"search"`
	Genre  string `form:"genre"`
}

// MessageResponse carries a human readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// Converters
func (d CreateBookRequest) ToModel() models.Book {
	return models.Book{
		Title:       d.Title,
		Author:      d.Author,
		Genre:       d.Genre,
		PublishDate: d.PublishDate,
		Description: d.Description,
		CoverImage:  d.CoverImage,
	}
}

// IsEmpty reports whether the request carries no field at all.
func (d UpdateBookRequest) IsEmpty() bool {
	return d.Title == nil && d.Author == nil && d.Genre == nil &&
		d.PublishDate == nil && d.Description == nil && d.CoverImage == nil
}

// ApplyTo merges the supplied fields into m, leaving the others untouched.
func (d UpdateBookRequest) ApplyTo(m *models.Book) {
	if d.Title != nil {
		m.Title = *d.Title
	}
	if d.Author != nil {
		m.Author = *d.Author
	}
	if d.Genre != nil {
		m.Genre = *d.Genre
	}
	if d.PublishDate != nil {
		m.PublishDate = *d.PublishDate
	}
	if d.Description != nil {
		m.Description = *d.Description
	}
	if d.CoverImage != nil {
		m.CoverImage = *d.CoverImage
	}
}
