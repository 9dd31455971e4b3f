package models

// GenreAll is the list filter sentinel meaning "any genre". It is never a valid book genre.
const GenreAll = "All"

// Genres is the closed set of genres a book may carry, in display order.
var Genres = []string{
	"Fiction",
	"Non-Fiction",
	"Science Fiction",
	"Fantasy",
	"Mystery",
	"Thriller",
	"Romance",
	"Biography",
	"History",
	"Science",
}

// IsValidGenre reports whether g is one of Genres. Matching is exact.
func IsValidGenre(g string) bool {
	for _, known := range Genres {
		if g == known {
			return true
		}
	}
	return false
}
