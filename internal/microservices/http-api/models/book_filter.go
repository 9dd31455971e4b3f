package models

import "strings"

// BookFilter narrows a book listing. Zero values mean "no constraint" on
// that axis.
type BookFilter struct {
	Genre  string // exact genre, empty for any
	Search string // lowercased substring, empty for any
}

// NewBookFilter turns raw list parameters into a BookFilter. A blank search
// and the genre sentinel "All" are both treated as unconstrained.
func NewBookFilter(search, genre string) BookFilter {
	var f BookFilter
	if g := strings.TrimSpace(genre); g != "" && g != GenreAll {
		f.Genre = g
	}
	if s := strings.TrimSpace(search); s != "" {
		f.Search = strings.ToLower(s)
	}
	return f
}

// IsZero reports whether the filter matches every book.
func (f BookFilter) IsZero() bool {
	return f.Genre == "" && f.Search == ""
}

// Matches reports whether b passes the filter. Search is a case-insensitive
// substring of title, author or description.
func (f BookFilter) Matches(b Book) bool {
	if f.Genre != "" && b.Genre != f.Genre {
		return false
	}
	if f.Search == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.Title), f.Search) ||
		strings.Contains(strings.ToLower(b.Author), f.Search) ||
		strings.Contains(strings.ToLower(b.Description), f.Search)
}
