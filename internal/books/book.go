// Package books defines the book record and the factory every record is built through.
//
// Records come from three places (the manual form, the bundled dataset, the API)
// and all of them pass through New so they share one shape.
package books

import (
	"errors"

	"github.com/google/uuid"
)

// Source tags where a record came from. Set at creation, never changed.
type Source string

const (
	SourceManual Source = "manual"
	SourceRandom Source = "random"
	SourceAPI    Source = "api"
)

// Book is one record in the library.
type Book struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Author     string `json:"author"`
	Source     Source `json:"source"`
	IsFavorite bool   `json:"isFavorite"`
}

// Raw is an unidentified title/author pair, as typed into the form,
// read from the dataset, or returned by the API.
type Raw struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Complete reports whether both title and author are non-empty.
func (r Raw) Complete() bool {
	return r.Title != "" && r.Author != ""
}

// ErrMissingFields is returned by ValidateManual. Its message is shown to the user as is.
var ErrMissingFields = errors.New("You must fill title and author")

// ValidateManual checks a form submission. Fields are taken as typed, so "   " counts.
func ValidateManual(raw Raw) error {
	if !raw.Complete() {
		return ErrMissingFields
	}
	return nil
}

// New builds a record with a fresh random (v4) id and IsFavorite=false.
func New(raw Raw, source Source) Book {
	return Book{
		ID:     uuid.NewString(),
		Title:  raw.Title,
		Author: raw.Author,
		Source: source,
	}
}
