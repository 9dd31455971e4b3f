package handler

import (
	"context"
	"log/slog"
	"net/http"

	"elibrary/internal/microservices/http-api/dto"
	"elibrary/internal/microservices/http-api/middleware"
	"elibrary/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type BookHandler struct {
	svc    service.BookService
	logger *slog.Logger
}

func NewBookHandler(svc service.BookService, logger *slog.Logger) *BookHandler {
	return &BookHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the catalogue under rg. Reads are public, writes go through guard.
func (h *BookHandler) RegisterRoutes(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)

	rg.POST("", guard, h.Create)
	rg.PUT("/:id", guard, h.Update)
	rg.DELETE("/:id", guard, h.Delete)
	rg.POST("/:id/borrow", guard, h.Borrow)
	rg.POST("/:id/return", guard, h.Return)
}

// GET /api/books?search=&genre=
func (h *BookHandler) List(c *gin.Context) {
	var q dto.ListBooksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	books, err := h.svc.List(ctx, q.Search, q.Genre)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, books)
}

// GET /api/books/:id
func (h *BookHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	book, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// POST /api/books
func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	book := req.ToModel()
	created, err := h.svc.Create(ctx, &book, requesterID(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// PUT /api/books/:id
func (h *BookHandler) Update(c *gin.Context) {
	var req dto.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	updated, err := h.svc.Update(ctx, c.Param("id"), req, requesterID(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DELETE /api/books/:id
func (h *BookHandler) Delete(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Delete(ctx, c.Param("id"), requesterID(c)); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Book deleted successfully"})
}

// POST /api/books/:id/borrow
func (h *BookHandler) Borrow(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	book, err := h.svc.Borrow(ctx, c.Param("id"), requesterID(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

// POST /api/books/:id/return
func (h *BookHandler) Return(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	book, err := h.svc.Return(ctx, c.Param("id"), requesterID(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func requesterID(c *gin.Context) string {
	if id, ok := middleware.IdentityFromContext(c.Request.Context()); ok {
		return id.UserID
	}
	return c.GetString(middleware.ContextUserID)
}
