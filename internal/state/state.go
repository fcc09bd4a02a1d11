// Package state holds the library's single source of truth.
//
// State is a plain value. Reduce computes the next value from the current one
// and an Action without touching its input: every transition that changes the
// book list allocates a new slice, so a State handed out earlier never changes
// underneath its holder.
package state

import "github.com/abelbrown/booklib/internal/books"

// BooksSlice is the book collection plus the API loading flag.
type BooksSlice struct {
	Books           []books.Book `json:"books"`
	IsLoadingViaAPI bool         `json:"isLoadingViaAPI"`
}

// ErrorSlice holds at most one pending error message. Empty means none.
type ErrorSlice struct {
	Message string `json:"errorMessage"`
}

// FilterSlice narrows what SelectFilteredBooks returns.
type FilterSlice struct {
	Title        string `json:"title"`
	Author       string `json:"author"`
	OnlyFavorite bool   `json:"onlyFavorite"`
}

// State is the whole store.
type State struct {
	Books  BooksSlice  `json:"books"`
	Error  ErrorSlice  `json:"error"`
	Filter FilterSlice `json:"filter"`
}

// Initial returns the start-of-process state: no books, not loading, no error, no filter.
func Initial() State {
	return State{Books: BooksSlice{Books: []books.Book{}}}
}

// Reduce returns the state after applying a. Unknown actions return s unchanged.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case AddBook:
		s.Books.Books = appendBook(s.Books.Books, a.Book)
	case DeleteBook:
		s.Books.Books = deleteBook(s.Books.Books, a.ID)
	case ToggleFavorite:
		s.Books.Books = toggleFavorite(s.Books.Books, a.ID)

	case FetchPending:
		s.Books.IsLoadingViaAPI = true
	case FetchFulfilled:
		s.Books.IsLoadingViaAPI = false
		if a.Book != nil {
			s.Books.Books = appendBook(s.Books.Books, *a.Book)
		}
	case FetchRejected:
		s.Books.IsLoadingViaAPI = false

	case SetError:
		s.Error.Message = a.Message
	case ClearError:
		s.Error.Message = ""

	case SetTitleFilter:
		s.Filter.Title = a.Title
	case SetAuthorFilter:
		s.Filter.Author = a.Author
	case ToggleOnlyFavorite:
		s.Filter.OnlyFavorite = !s.Filter.OnlyFavorite
	case ResetFilters:
		s.Filter = FilterSlice{}
	}
	return s
}

func appendBook(list []books.Book, b books.Book) []books.Book {
	next := make([]books.Book, len(list), len(list)+1)
	copy(next, list)
	return append(next, b)
}

// deleteBook returns list itself when id is absent.
func deleteBook(list []books.Book, id string) []books.Book {
	idx := indexOf(list, id)
	if idx < 0 {
		return list
	}
	next := make([]books.Book, 0, len(list)-1)
	next = append(next, list[:idx]...)
	return append(next, list[idx+1:]...)
}

func toggleFavorite(list []books.Book, id string) []books.Book {
	idx := indexOf(list, id)
	if idx < 0 {
		return list
	}
	next := make([]books.Book, len(list))
	copy(next, list)
	next[idx].IsFavorite = !next[idx].IsFavorite
	return next
}

func indexOf(list []books.Book, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}
