// Package viewstate holds client side state for browsing and editing the
// catalogue: the signed-in session, the filtered book list, a single book's
// detail view and the create/edit form. It talks to the server only through API.
package viewstate

import (
	"context"
	"errors"
	"net/http"

	"elibrary/internal/microservices/http-api/dto"
	"elibrary/internal/microservices/http-api/models"
)

// API is the slice of the REST API the view models use.
type API interface {
	SetToken(token string)

	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context) (*dto.UserResponse, error)

	ListBooks(ctx context.Context, search, genre string) ([]models.Book, error)
	GetBook(ctx context.Context, id string) (*models.Book, error)
	CreateBook(ctx context.Context, req dto.CreateBookRequest) (*models.Book, error)
	UpdateBook(ctx context.Context, id string, req dto.UpdateBookRequest) (*models.Book, error)
	DeleteBook(ctx context.Context, id string) error
	BorrowBook(ctx context.Context, id string) (*models.Book, error)
	ReturnBook(ctx context.Context, id string) (*models.Book, error)
}

// APIError is a non-2xx answer decoded from the server's error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.Status)
}

// GenericErrorMessage is shown when the server gave nothing better.
const GenericErrorMessage = "Something went wrong. Please try again."

// ErrorMessage returns what a user should see for err.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var formErr FormErrors
	if errors.As(err, &formErr) {
		return formErr.Error()
	}
	for _, local := range []error{ErrNoChanges, ErrNoPendingDelete, ErrDeleteNotRequested} {
		if errors.Is(err, local) {
			return local.Error()
		}
	}
	return GenericErrorMessage
}

func isUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
