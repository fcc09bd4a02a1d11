// Package fetch retrieves a single book payload from the remote endpoint.
//
// This package only performs the HTTP exchange and decoding. It does not touch
// the store; the coordinator decides what a payload means.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/abelbrown/booklib/internal/books"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

const userAgent = "booklib/1.0"

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Fetcher issues GET requests for book payloads.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher creates a Fetcher. A zero timeout means no deadline.
// perSecond <= 0 means requests are not rate limited.
func NewFetcher(timeout time.Duration, perSecond float64) *Fetcher {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// FetchBook GETs url and picks title and author out of the body.
// Fields may come back empty; deciding whether that is usable is up to the caller.
//
// Transport failures and non-2xx responses are errors. A 2xx body that is not
// an object with string title/author fields is not: it yields empty fields.
func (f *Fetcher) FetchBook(ctx context.Context, url string) (books.Raw, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return books.Raw{}, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return books.Raw{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return books.Raw{}, fmt.Errorf("failed to fetch book: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return books.Raw{}, fmt.Errorf("request failed with status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return books.Raw{}, fmt.Errorf("failed to read response: %w", err)
	}

	return books.Raw{
		Title:  stringField(body, "title"),
		Author: stringField(body, "author"),
	}, nil
}

// stringField returns body[key] when body is a JSON object and the value is a string.
func stringField(body []byte, key string) string {
	v := jsonAPI.Get(body, key)
	if v.ValueType() != jsoniter.StringValue {
		return ""
	}
	return v.ToString()
}
