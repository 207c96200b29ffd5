package jira

import (
	"context"
	"iter"

	"github.com/fivetwenty-io/jira-client/internal/constants"
)

// PageFunc fetches one page of a paginated query. startAt is the zero based
// index of the first record wanted.
type PageFunc[T any] func(ctx context.Context, query string, fields []string, startAt, maxResults int) (*ResultSet[T], error)

// WalkerOption configures a Walker.
type WalkerOption func(*walkerOptions)

type walkerOptions struct {
	logger Logger
}

// WithWalkerLogger sets the logger that receives swallowed page errors.
func WithWalkerLogger(logger Logger) WalkerOption {
	return func(o *walkerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Walker lazily iterates every record of a paginated query, one page request
// at a time.
//
//	walker := client.Issues().Walker(100)
//	walker.Push("project = ABC", "summary", "status")
//
//	for ok, err := walker.Valid(ctx); ok; ok, err = walker.Valid(ctx) {
//		issue := walker.Current()
//		...
//		walker.Next()
//	}
//
// Pages are only fetched from Valid and Count; Next never touches the network.
// An unauthorized response is returned to the caller. Any other page error is
// logged, kept for Err and ends the walk.
//
// A Walker is not safe for concurrent use.
type Walker[T any] struct {
	fetch   PageFunc[T]
	logger  Logger
	perPage int

	query    string
	fields   []string
	pushed   bool
	delegate func(T) T

	page     []T
	offset   int
	startAt  int
	base     int
	max      int
	total    int
	executed bool
	err      error
}

// NewWalker creates a walker over fetch. A non-positive perPage selects the
// default page size.
func NewWalker[T any](fetch PageFunc[T], perPage int, opts ...WalkerOption) *Walker[T] {
	options := &walkerOptions{logger: NopLogger{}}
	for _, opt := range opts {
		opt(options)
	}

	if perPage <= 0 {
		perPage = constants.DefaultPageSize
	}

	return &Walker[T]{
		fetch:   fetch,
		logger:  options.logger,
		perPage: perPage,
	}
}

// Push binds the walker to a query and an optional field selection. It must be
// called before any positional access. Pushing again starts over.
func (w *Walker[T]) Push(query string, fields ...string) {
	w.query = query
	w.fields = append([]string(nil), fields...)
	w.pushed = true
	w.Rewind()
}

// SetDelegate registers a transform applied by Current.
func (w *Walker[T]) SetDelegate(fn func(T) T) error {
	if fn == nil {
		return ErrNotCallable
	}

	w.delegate = fn

	return nil
}

// PerPage returns the page size requested from the server.
func (w *Walker[T]) PerPage() int { return w.perPage }

// Valid reports whether Current holds a record, fetching the first or the
// next page when the cursor needs one.
func (w *Walker[T]) Valid(ctx context.Context) (bool, error) {
	if !w.pushed {
		return false, ErrWalkerNotInitialized
	}

	if !w.executed {
		ok, err := w.load(ctx, 0)
		if err != nil || !ok {
			return false, err
		}

		return w.offset < w.max, nil
	}

	if w.offset >= w.max && w.Key() < w.total {
		ok, err := w.load(ctx, w.Key())
		if err != nil || !ok {
			return false, err
		}
	}

	return w.offset < w.max && w.Key() < w.total, nil
}

// Current returns the record under the cursor, passed through the delegate
// when one is set. Out of range it returns the zero T.
func (w *Walker[T]) Current() T {
	var zero T

	if w.offset < 0 || w.offset >= len(w.page) {
		return zero
	}

	item := w.page[w.offset]
	if w.delegate != nil {
		return w.delegate(item)
	}

	return item
}

// Next advances the cursor by one record.
func (w *Walker[T]) Next() {
	w.offset++
}

// Key returns the position of the cursor across all pages.
func (w *Walker[T]) Key() int {
	if !w.executed {
		return 0
	}

	return w.base + w.offset
}

// Rewind resets the walker so the query can be iterated again. The query, the
// field selection and the delegate are kept.
func (w *Walker[T]) Rewind() {
	w.page = nil
	w.offset = 0
	w.startAt = 0
	w.base = 0
	w.max = 0
	w.total = 0
	w.executed = false
	w.err = nil
}

// Count returns the total number of records, fetching the first page when
// nothing has been fetched yet. Without a server declared total the value is
// a lower bound until the walk reaches a short or empty page.
func (w *Walker[T]) Count(ctx context.Context) (int, error) {
	if !w.pushed {
		return 0, ErrWalkerNotInitialized
	}

	if !w.executed {
		_, err := w.load(ctx, 0)
		if err != nil {
			return 0, err
		}
	}

	return w.total, nil
}

// Page returns the 1-based number of the buffered page, or 0.
func (w *Walker[T]) Page() int { return w.startAt }

// Err returns the page error that ended the last walk, if any.
func (w *Walker[T]) Err() error { return w.err }

// ForEach rewinds the walker and calls fn for every record. It stops at the
// first error returned by fn or by Valid.
func (w *Walker[T]) ForEach(ctx context.Context, fn func(T) error) error {
	w.Rewind()

	for {
		ok, err := w.Valid(ctx)
		if err != nil {
			return err
		}

		if !ok {
			return nil
		}

		err = fn(w.Current())
		if err != nil {
			return err
		}

		w.Next()
	}
}

// All rewinds the walker and collects every record.
func (w *Walker[T]) All(ctx context.Context) ([]T, error) {
	var items []T

	err := w.ForEach(ctx, func(item T) error {
		items = append(items, item)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

// Seq rewinds the walker and returns it as a range-over-func sequence. A
// propagated error is yielded once with the zero T and ends the sequence.
func (w *Walker[T]) Seq(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		w.Rewind()

		for {
			ok, err := w.Valid(ctx)
			if err != nil {
				var zero T

				yield(zero, err)

				return
			}

			if !ok || !yield(w.Current(), nil) {
				return
			}

			w.Next()
		}
	}
}

// load fetches the page starting at startAt and makes it current. It reports
// whether the page holds records. Only unauthorized and context errors are
// returned; anything else ends the walk.
func (w *Walker[T]) load(ctx context.Context, startAt int) (bool, error) {
	err := ctx.Err()
	if err != nil {
		return false, err
	}

	page, err := w.fetch(ctx, w.query, w.fields, startAt, w.perPage)
	if err != nil {
		if IsUnauthorized(err) || ctx.Err() != nil {
			return false, err
		}

		w.logger.Error("Failed to fetch page", map[string]interface{}{
			"query":    w.query,
			"start_at": startAt,
			"per_page": w.perPage,
			"error":    err.Error(),
		})

		w.err = err
		if w.executed {
			w.total = w.Key()
		}

		return false, nil
	}

	if page == nil {
		page = &ResultSet[T]{}
	}

	w.page = page.Entities()
	w.max = len(w.page)
	w.offset = 0
	w.base = startAt
	w.startAt++
	w.executed = true
	w.total = w.grandTotal(page, startAt)

	return w.max > 0, nil
}

func (w *Walker[T]) grandTotal(page *ResultSet[T], startAt int) int {
	seen := startAt + w.max

	if w.max == 0 {
		return seen
	}

	if isLast, ok := page.IsLast(); ok && isLast {
		return seen
	}

	if declared, ok := page.DeclaredTotal(); ok {
		return max(declared, seen)
	}

	// Servers cap maxResults below what was asked for. A page is only short
	// when it did not fill the size the server reported; a bare array reports
	// nothing, so only an empty page ends it.
	pageSize := page.MaxResults()
	if pageSize <= 0 || w.max >= min(pageSize, w.perPage) {
		return seen + 1
	}

	return seen
}
