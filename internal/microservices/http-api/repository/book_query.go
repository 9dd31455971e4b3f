package repository

import (
	"strings"

	"elibrary/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// applyBookFilter adds f's WHERE clauses to db. It selects the same rows
// models.BookFilter.Matches accepts; LIKE wildcards in the search are escaped
// so it stays a plain substring.
func applyBookFilter(db *gorm.DB, f models.BookFilter) *gorm.DB {
	if f.Genre != "" {
		db = db.Where("genre = ?", f.Genre)
	}
	if f.Search != "" {
		p := "%" + escapeLike(f.Search) + "%"
		db = db.Where(
			`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(author) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`,
			p, p, p,
		)
	}
	return db
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
