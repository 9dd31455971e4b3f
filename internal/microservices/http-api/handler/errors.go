package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"elibrary/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const requestTimeout = 5 * time.Second

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

// respondServiceError maps service sentinels onto statuses. Anything unknown
// is logged and reported as a bare 500.
func respondServiceError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": "))
	case errors.Is(err, service.ErrBookUnavailable):
		respondError(c, http.StatusBadRequest, "BOOK_UNAVAILABLE", "Book is not available")
	case errors.Is(err, service.ErrNameInUse):
		respondError(c, http.StatusBadRequest, "USERNAME_TAKEN", "Username already in use")
	case errors.Is(err, service.ErrEmailInUse):
		respondError(c, http.StatusBadRequest, "EMAIL_TAKEN", "Email already in use")
	case errors.Is(err, service.ErrUnauthenticated), errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusUnauthorized, "INVALID_TOKEN", "not authorized")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
	case errors.Is(err, service.ErrNotOwner):
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Only the creator may delete this book")
	case errors.Is(err, service.ErrForbidden):
		respondError(c, http.StatusForbidden, "FORBIDDEN", "Not authorized to return this book")
	case errors.Is(err, service.ErrBookNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Book not found")
	case errors.Is(err, service.ErrConcurrentUpdate):
		respondError(c, http.StatusConflict, "CONFLICT", "Book was modified concurrently, reload and retry")
	default:
		logger.Error("request_failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err.Error(),
		)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Server Error")
	}
}

// respondBindError turns a gin binding failure into a 400 with a readable message.
func respondBindError(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", bindingMessage(err))
}

func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email")
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}
