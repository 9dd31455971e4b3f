package viewstate

import (
	"context"
	"net/http"
	"sync"

	"elibrary/internal/microservices/http-api/dto"
	"elibrary/internal/microservices/http-api/models"

	"github.com/google/uuid"
)

type listCall struct {
	Search, Genre string
}

// fakeAPI is an in-memory server. ListBooks can be held per call through gate.
type fakeAPI struct {
	mu        sync.Mutex
	token     string
	books     []models.Book
	users     map[string]dto.UserResponse // token -> user
	listCalls []listCall
	deleted   []string
	updates   []dto.UpdateBookRequest

	// gate, when set, is consulted before each ListBooks answers
	gate func(call listCall)

	listErr   error
	deleteErr error
	meErr     error
	loginErr  error
}

func newFakeAPI(books ...models.Book) *fakeAPI {
	return &fakeAPI{books: books, users: map[string]dto.UserResponse{}}
}

func (f *fakeAPI) SetToken(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func (f *fakeAPI) currentToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeAPI) issue(username, email string) *dto.AuthResponse {
	u := dto.UserResponse{ID: uuid.NewString(), Username: username, Email: email}
	token := "tok-" + u.ID
	f.users[token] = u
	return &dto.AuthResponse{Token: token, ExpiresIn: 3600, User: u}
}

func (f *fakeAPI) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issue(req.Username, req.Email), nil
}

func (f *fakeAPI) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.issue("reader", req.Email), nil
}

func (f *fakeAPI) Me(ctx context.Context) (*dto.UserResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.meErr != nil {
		return nil, f.meErr
	}
	u, ok := f.users[f.token]
	if !ok {
		return nil, &APIError{Status: http.StatusUnauthorized, Code: "INVALID_TOKEN", Message: "not authorized"}
	}
	return &u, nil
}

func (f *fakeAPI) ListBooks(ctx context.Context, search, genre string) ([]models.Book, error) {
	call := listCall{Search: search, Genre: genre}
	f.mu.Lock()
	f.listCalls = append(f.listCalls, call)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		gate(call)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	filter := models.NewBookFilter(search, genre)
	out := []models.Book{}
	for _, b := range f.books {
		if filter.Matches(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeAPI) calls() []listCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]listCall(nil), f.listCalls...)
}

func (f *fakeAPI) find(id string) (int, bool) {
	for i, b := range f.books {
		if b.ID == id {
			return i, true
		}
	}
	return 0, false
}

func notFound() error {
	return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "Book not found"}
}

func (f *fakeAPI) GetBook(ctx context.Context, id string) (*models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.find(id)
	if !ok {
		return nil, notFound()
	}
	b := f.books[i]
	return &b, nil
}

func (f *fakeAPI) CreateBook(ctx context.Context, req dto.CreateBookRequest) (*models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := req.ToModel()
	b.ID = uuid.NewString()
	b.Available = true
	f.books = append(f.books, b)
	return &b, nil
}

func (f *fakeAPI) UpdateBook(ctx context.Context, id string, req dto.UpdateBookRequest) (*models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.find(id)
	if !ok {
		return nil, notFound()
	}
	f.updates = append(f.updates, req)
	req.ApplyTo(&f.books[i])
	b := f.books[i]
	return &b, nil
}

func (f *fakeAPI) DeleteBook(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	i, ok := f.find(id)
	if !ok {
		return notFound()
	}
	f.books = append(f.books[:i], f.books[i+1:]...)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) BorrowBook(ctx context.Context, id string) (*models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.find(id)
	if !ok {
		return nil, notFound()
	}
	if !f.books[i].Available {
		return nil, &APIError{Status: http.StatusBadRequest, Code: "BOOK_UNAVAILABLE", Message: "Book is not available"}
	}
	holder := f.users[f.token].ID
	f.books[i].Available = false
	f.books[i].BorrowedBy = &holder
	b := f.books[i]
	return &b, nil
}

func (f *fakeAPI) ReturnBook(ctx context.Context, id string) (*models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.find(id)
	if !ok {
		return nil, notFound()
	}
	if !f.books[i].IsBorrowedBy(f.users[f.token].ID) {
		return nil, &APIError{Status: http.StatusForbidden, Code: "FORBIDDEN", Message: "Not authorized to return this book"}
	}
	f.books[i].Available = true
	f.books[i].BorrowedBy = nil
	b := f.books[i]
	return &b, nil
}

// memoryStore is a TokenStore kept in memory.
type memoryStore struct {
	mu    sync.Mutex
	token string
}

func (m *memoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", ErrNoToken
	}
	return m.token, nil
}

func (m *memoryStore) Save(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Clear() error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	return nil
}
