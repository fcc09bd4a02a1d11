package state

import "github.com/abelbrown/booklib/internal/books"

// ActionType names an action, slash-delimited: "<slice>/<action>".
type ActionType string

const (
	TypeAddBook        ActionType = "books/addBook"
	TypeDeleteBook     ActionType = "books/deleteBook"
	TypeToggleFavorite ActionType = "books/toggleFavorite"
	TypeFetchPending   ActionType = "books/fetchBook/pending"
	TypeFetchFulfilled ActionType = "books/fetchBook/fulfilled"
	TypeFetchRejected  ActionType = "books/fetchBook/rejected"

	TypeSetError   ActionType = "error/setError"
	TypeClearError ActionType = "error/clearError"

	TypeSetTitleFilter     ActionType = "filter/setTitleFilter"
	TypeSetAuthorFilter    ActionType = "filter/setAuthorFilter"
	TypeToggleOnlyFavorite ActionType = "filter/toggleOnlyFavorite"
	TypeResetFilters       ActionType = "filter/resetFilters"
)

// Action is anything Reduce understands. Field values are the payload.
type Action interface {
	Type() ActionType
}

// AddBook appends Book to the collection.
type AddBook struct {
	Book books.Book `json:"book"`
}

// DeleteBook removes the record with ID.
type DeleteBook struct {
	ID string `json:"id"`
}

// ToggleFavorite flips IsFavorite on the record with ID.
type ToggleFavorite struct {
	ID string `json:"id"`
}

// FetchPending marks the start of an API fetch.
type FetchPending struct {
	RequestID string `json:"requestId"`
	URL       string `json:"url"`
}

// FetchFulfilled marks a successful fetch. Book is nil when the payload
// lacked a title or author.
type FetchFulfilled struct {
	RequestID string      `json:"requestId"`
	Book      *books.Book `json:"book,omitempty"`
}

// FetchRejected marks a failed fetch. The message has already been
// published through SetError by the time this is dispatched.
type FetchRejected struct {
	RequestID string `json:"requestId"`
	Message   string `json:"message"`
}

// SetError replaces the current error message.
type SetError struct {
	Message string `json:"message"`
}

// ClearError empties the error message.
type ClearError struct{}

// SetTitleFilter sets the title substring filter.
type SetTitleFilter struct {
	Title string `json:"title"`
}

// SetAuthorFilter sets the author substring filter.
type SetAuthorFilter struct {
	Author string `json:"author"`
}

// ToggleOnlyFavorite flips the only-favorite filter.
type ToggleOnlyFavorite struct{}

// ResetFilters clears every filter.
type ResetFilters struct{}

func (AddBook) Type() ActionType            { return TypeAddBook }
func (DeleteBook) Type() ActionType         { return TypeDeleteBook }
func (ToggleFavorite) Type() ActionType     { return TypeToggleFavorite }
func (FetchPending) Type() ActionType       { return TypeFetchPending }
func (FetchFulfilled) Type() ActionType     { return TypeFetchFulfilled }
func (FetchRejected) Type() ActionType      { return TypeFetchRejected }
func (SetError) Type() ActionType           { return TypeSetError }
func (ClearError) Type() ActionType         { return TypeClearError }
func (SetTitleFilter) Type() ActionType     { return TypeSetTitleFilter }
func (SetAuthorFilter) Type() ActionType    { return TypeSetAuthorFilter }
func (ToggleOnlyFavorite) Type() ActionType { return TypeToggleOnlyFavorite }
func (ResetFilters) Type() ActionType       { return TypeResetFilters }
