package handler

import (
	"net/http"

	"elibrary/internal/microservices/http-api/models"

	"github.com/gin-gonic/gin"
)

// ListGenres serves the closed genre set, "All" first, for filter dropdowns.
func ListGenres(c *gin.Context) {
	genres := make([]string, 0, len(models.Genres)+1)
	genres = append(genres, models.GenreAll)
	genres = append(genres, models.Genres...)
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}
