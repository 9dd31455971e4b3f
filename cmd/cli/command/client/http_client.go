package client

// http_client.go talks to the elibrary REST API on behalf of the CLI.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"elibrary/internal/microservices/http-api/dto"
	"elibrary/internal/microservices/http-api/models"
	"elibrary/internal/viewstate"
)

// TokenHeader carries the session token on authenticated requests.
const TokenHeader = "x-auth-token"

// HTTPClient implements viewstate.API over HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

var _ viewstate.API = (*HTTPClient)(nil)

// constructor for HTTP client
func NewHTTPClient(apiURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *HTTPClient) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Auth

func (c *HTTPClient) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Me(ctx context.Context) (*dto.UserResponse, error) {
	var out dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Books

func (c *HTTPClient) ListBooks(ctx context.Context, search, genre string) ([]models.Book, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if genre != "" {
		q.Set("genre", genre)
	}
	path := "/api/books"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	books := []models.Book{}
	if err := c.do(ctx, http.MethodGet, path, nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (c *HTTPClient) GetBook(ctx context.Context, id string) (*models.Book, error) {
	return c.book(ctx, http.MethodGet, bookPath(id), nil)
}

func (c *HTTPClient) CreateBook(ctx context.Context, req dto.CreateBookRequest) (*models.Book, error) {
	return c.book(ctx, http.MethodPost, "/api/books", req)
}

func (c *HTTPClient) UpdateBook(ctx context.Context, id string, req dto.UpdateBookRequest) (*models.Book, error) {
	return c.book(ctx, http.MethodPut, bookPath(id), req)
}

func (c *HTTPClient) DeleteBook(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, bookPath(id), nil, nil)
}

func (c *HTTPClient) BorrowBook(ctx context.Context, id string) (*models.Book, error) {
	return c.book(ctx, http.MethodPost, bookPath(id)+"/borrow", nil)
}

func (c *HTTPClient) ReturnBook(ctx context.Context, id string) (*models.Book, error) {
	return c.book(ctx, http.MethodPost, bookPath(id)+"/return", nil)
}

// ListGenres returns the genre names the server accepts, "All" first.
func (c *HTTPClient) ListGenres(ctx context.Context) ([]string, error) {
	var out struct {
		Genres []string `json:"genres"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/genres", nil, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

func bookPath(id string) string {
	return "/api/books/" + url.PathEscape(id)
}

func (c *HTTPClient) book(ctx context.Context, method, path string, body any) (*models.Book, error) {
	var out models.Book
	if err := c.do(ctx, method, path, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends one request. Non-2xx answers come back as *viewstate.APIError.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set(TokenHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() // Ensure the response body is closed

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &viewstate.APIError{Status: resp.StatusCode}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}

// IsStatus reports whether err is an API answer with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *viewstate.APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
