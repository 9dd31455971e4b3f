package viewstate

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strings"

	"elibrary/internal/microservices/http-api/dto"
	"elibrary/internal/microservices/http-api/models"
)

// ErrNoChanges is returned when an edit form is submitted untouched.
var ErrNoChanges = errors.New("nothing to save")

// FormErrors maps a field name to what is wrong with it.
type FormErrors map[string]string

func (e FormErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e[k])
	}
	return strings.Join(msgs, "; ")
}

// FormFields are the editable values as typed. PublishDate is YYYY-MM-DD.
type FormFields struct {
	Title       string
	Author      string
	Genre       string
	PublishDate string
	Description string
	CoverImage  string
}

// EditForm backs both "add book" and "edit book".
type EditForm struct {
	id       string
	original FormFields
	Fields   FormFields
}

func NewCreateForm() *EditForm {
	return &EditForm{}
}

// NewEditForm starts from b's current values.
func NewEditForm(b models.Book) *EditForm {
	f := FormFields{
		Title:       b.Title,
		Author:      b.Author,
		Genre:       b.Genre,
		PublishDate: b.PublishDate.String(),
		Description: b.Description,
		CoverImage:  b.CoverImage,
	}
	return &EditForm{id: b.ID, original: f, Fields: f}
}

func (f *EditForm) IsEdit() bool { return f.id != "" }

// Validate mirrors the server's field rules so most mistakes never leave the client.
func (f *EditForm) Validate() FormErrors {
	errs := FormErrors{}
	v := f.Fields

	required := []struct{ name, value string }{
		{"title", v.Title},
		{"author", v.Author},
		{"genre", v.Genre},
		{"publishDate", v.PublishDate},
		{"description", v.Description},
		{"coverImage", v.CoverImage},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs[r.name] = r.name + " is required"
		}
	}

	if _, ok := errs["genre"]; !ok && !models.IsValidGenre(strings.TrimSpace(v.Genre)) {
		errs["genre"] = "genre must be one of: " + strings.Join(models.Genres, ", ")
	}
	if _, ok := errs["publishDate"]; !ok {
		if _, err := models.ParseDate(v.PublishDate); err != nil {
			errs["publishDate"] = "publishDate must be a date (YYYY-MM-DD)"
		}
	}
	if _, ok := errs["coverImage"]; !ok {
		u, err := url.Parse(strings.TrimSpace(v.CoverImage))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs["coverImage"] = "coverImage must be an http(s) URL"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Changes returns only the fields that differ from the loaded book.
func (f *EditForm) Changes() dto.UpdateBookRequest {
	var req dto.UpdateBookRequest
	cur, orig := f.Fields, f.original

	if cur.Title != orig.Title {
		req.Title = ptr(strings.TrimSpace(cur.Title))
	}
	if cur.Author != orig.Author {
		req.Author = ptr(strings.TrimSpace(cur.Author))
	}
	if cur.Genre != orig.Genre {
		req.Genre = ptr(strings.TrimSpace(cur.Genre))
	}
	if cur.PublishDate != orig.PublishDate {
		if d, err := models.ParseDate(cur.PublishDate); err == nil {
			req.PublishDate = &d
		}
	}
	if cur.Description != orig.Description {
		req.Description = ptr(strings.TrimSpace(cur.Description))
	}
	if cur.CoverImage != orig.CoverImage {
		req.CoverImage = ptr(strings.TrimSpace(cur.CoverImage))
	}
	return req
}

// Submit validates and sends a create, or an update of the changed fields.
func (f *EditForm) Submit(ctx context.Context, api API) (*models.Book, error) {
	if errs := f.Validate(); errs != nil {
		return nil, errs
	}

	if f.IsEdit() {
		changes := f.Changes()
		if changes.IsEmpty() {
			return nil, ErrNoChanges
		}
		b, err := api.UpdateBook(ctx, f.id, changes)
		if err != nil {
			return nil, err
		}
		f.original = f.Fields
		return b, nil
	}

	date, _ := models.ParseDate(f.Fields.PublishDate)
	return api.CreateBook(ctx, dto.CreateBookRequest{
		Title:       strings.TrimSpace(f.Fields.Title),
		Author:      strings.TrimSpace(f.Fields.Author),
		Genre:       strings.TrimSpace(f.Fields.Genre),
		PublishDate: date,
		Description: strings.TrimSpace(f.Fields.Description),
		CoverImage:  strings.TrimSpace(f.Fields.CoverImage),
	})
}

func ptr(s string) *string { return &s }
