package state

import (
	"strings"

	"github.com/abelbrown/booklib/internal/books"
	"golang.org/x/text/cases"
)

// SelectBooks returns the whole collection in insertion order.
func SelectBooks(s State) []books.Book { return s.Books.Books }

// SelectIsLoadingViaAPI reports whether an API fetch is in flight.
func SelectIsLoadingViaAPI(s State) bool { return s.Books.IsLoadingViaAPI }

// SelectErrorMessage returns the pending error message, or "".
func SelectErrorMessage(s State) string { return s.Error.Message }

func SelectTitleFilter(s State) string      { return s.Filter.Title }
func SelectAuthorFilter(s State) string     { return s.Filter.Author }
func SelectOnlyFavoriteFilter(s State) bool { return s.Filter.OnlyFavorite }

// SelectFilteredBooks returns the books matching every active filter, in insertion order.
// Title and author match on case-folded substrings.
func SelectFilteredBooks(s State) []books.Book {
	f := s.Filter
	if f.Title == "" && f.Author == "" && !f.OnlyFavorite {
		return s.Books.Books
	}

	fold := cases.Fold()
	title := fold.String(f.Title)
	author := fold.String(f.Author)

	out := make([]books.Book, 0, len(s.Books.Books))
	for _, b := range s.Books.Books {
		if f.OnlyFavorite && !b.IsFavorite {
			continue
		}
		if title != "" && !strings.Contains(fold.String(b.Title), title) {
			continue
		}
		if author != "" && !strings.Contains(fold.String(b.Author), author) {
			continue
		}
		out = append(out, b)
	}
	return out
}
