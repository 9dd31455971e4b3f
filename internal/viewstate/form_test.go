package viewstate

import (
	"context"
	"testing"
	"time"

	"elibrary/internal/microservices/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditForm_Validate(t *testing.T) {
	form := NewCreateForm()
	errs := form.Validate()
	require.NotNil(t, errs)
	assert.Len(t, errs, 6)
	assert.Equal(t, "title is required", errs["title"])

	form.Fields = FormFields{
		Title:       "Dune",
		Author:      "Frank Herbert",
		Genre:       "Space Opera",
		PublishDate: "1965/08/01",
		Description: "Desert planet",
		CoverImage:  "covers/dune.jpg",
	}
	errs = form.Validate()
	assert.Len(t, errs, 3)
	assert.Contains(t, errs["genre"], "genre must be one of")
	assert.Contains(t, errs["publishDate"], "YYYY-MM-DD")
	assert.Contains(t, errs["coverImage"], "http(s)")

	form.Fields.Genre = "Science Fiction"
	form.Fields.PublishDate = "1965-08-01"
	form.Fields.CoverImage = "https://covers.example/dune.jpg"
	assert.Nil(t, form.Validate())
}

func TestEditForm_SubmitCreate(t *testing.T) {
	api := newFakeAPI()
	form := NewCreateForm()
	form.Fields = FormFields{
		Title:       " Dune ",
		Author:      "Frank Herbert",
		Genre:       "Science Fiction",
		PublishDate: "1965-08-01",
		Description: "Desert planet",
		CoverImage:  "https://covers.example/dune.jpg",
	}

	b, err := form.Submit(context.Background(), api)
	require.NoError(t, err)
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, "1965-08-01", b.PublishDate.String())
	assert.Len(t, api.books, 1)
}

func TestEditForm_SubmitInvalidNeverCallsAPI(t *testing.T) {
	api := newFakeAPI()
	_, err := NewCreateForm().Submit(context.Background(), api)

	var formErrs FormErrors
	require.ErrorAs(t, err, &formErrs)
	assert.Empty(t, api.books)
	assert.Contains(t, ErrorMessage(err), "title is required")
}

func TestEditForm_SubmitEditSendsOnlyChanges(t *testing.T) {
	book := models.Book{
		ID:          "dune",
		Title:       "Dune",
		Author:      "Frank Herbert",
		Genre:       "Science Fiction",
		PublishDate: models.NewDate(1965, time.August, 1),
		Description: "Desert planet",
		CoverImage:  "https://covers.example/dune.jpg",
	}
	api := newFakeAPI(book)
	ctx := context.Background()

	form := NewEditForm(book)
	assert.True(t, form.IsEdit())
	assert.Equal(t, "1965-08-01", form.Fields.PublishDate)

	_, err := form.Submit(ctx, api)
	assert.ErrorIs(t, err, ErrNoChanges)

	form.Fields.Description = "Spice must flow"
	form.Fields.PublishDate = "1965-08-02"
	updated, err := form.Submit(ctx, api)
	require.NoError(t, err)
	assert.Equal(t, "Spice must flow", updated.Description)

	require.Len(t, api.updates, 1)
	sent := api.updates[0]
	require.NotNil(t, sent.Description)
	require.NotNil(t, sent.PublishDate)
	assert.Equal(t, "1965-08-02", sent.PublishDate.String())
	assert.Nil(t, sent.Title)
	assert.Nil(t, sent.Author)
	assert.Nil(t, sent.Genre)
	assert.Nil(t, sent.CoverImage)

	// Saved values become the new baseline
	_, err = form.Submit(ctx, api)
	assert.ErrorIs(t, err, ErrNoChanges)
}
