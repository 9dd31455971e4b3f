package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBookFilter(t *testing.T) {
	assert.True(t, NewBookFilter("", "").IsZero())
	assert.True(t, NewBookFilter("   ", GenreAll).IsZero())

	f := NewBookFilter("  DuNe ", "Science Fiction")
	assert.Equal(t, BookFilter{Genre: "Science Fiction", Search: "dune"}, f)
}

func TestBookFilterMatches(t *testing.T) {
	dune := Book{Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction"}
	sequel := Book{Title: "Messiah", Author: "Frank Herbert", Genre: "Science Fiction", Description: "After dune"}
	other := Book{Title: "Emma", Author: "Jane Austen", Genre: "Romance", Description: "Matchmaking"}

	f := NewBookFilter("dune", GenreAll)
	assert.True(t, f.Matches(dune))
	assert.True(t, f.Matches(sequel))
	assert.False(t, f.Matches(other))

	assert.True(t, NewBookFilter("HERBERT", "").Matches(dune))
	assert.True(t, NewBookFilter("100%", "").Matches(Book{Title: "100% Wolf"}))
	assert.False(t, NewBookFilter("", "Romance").Matches(dune))
	assert.True(t, NewBookFilter("", "").Matches(other))
}
