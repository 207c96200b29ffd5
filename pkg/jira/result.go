package jira

// ResultSet is one decoded response page.
//
// Total is the number of records mapped from this page, not the count the
// server declares for the whole query; use DeclaredTotal for that.
type ResultSet[T any] struct {
	entities []T
	records  []Payload

	declaredTotal    int
	hasDeclaredTotal bool
	startAt          int
	maxResults       int
	isLast           bool
	hasIsLast        bool
}

// NewResultSet maps a decoded payload into entities.
//
// A payload that is undefined, null or otherwise empty yields an empty set.
// A top-level array is mapped element by element. For an object the first of
// listKeys that holds an array is mapped; the paging members total, startAt,
// maxResults and isLast are captured when present. Elements that are not
// objects are skipped.
func NewResultSet[T any](payload Value, build func(Payload) T, listKeys ...string) *ResultSet[T] {
	result := &ResultSet[T]{}

	if payload.IsEmpty() {
		return result
	}

	var items []Value

	if arr, ok := payload.Array(); ok {
		items = arr
	} else if obj, ok := payload.Object(); ok {
		for _, key := range listKeys {
			if arr, ok := obj.Get(key).Array(); ok {
				items = arr

				break
			}
		}

		if total, ok := obj.Int("total"); ok {
			result.declaredTotal = total
			result.hasDeclaredTotal = true
		}

		result.startAt, _ = obj.Int("startAt")
		result.maxResults, _ = obj.Int("maxResults")

		if isLast, ok := obj.Get("isLast").Bool(); ok {
			result.isLast = isLast
			result.hasIsLast = true
		}
	}

	result.entities = make([]T, 0, len(items))
	result.records = make([]Payload, 0, len(items))

	for _, item := range items {
		record, ok := item.Object()
		if !ok {
			continue
		}

		result.records = append(result.records, record)
		result.entities = append(result.entities, build(record))
	}

	return result
}

// Total returns the number of records mapped from this page.
func (r *ResultSet[T]) Total() int { return len(r.entities) }

// Count is an alias of Total.
func (r *ResultSet[T]) Count() int { return r.Total() }

// Entities returns the mapped entities.
func (r *ResultSet[T]) Entities() []T {
	out := make([]T, len(r.entities))
	copy(out, r.entities)

	return out
}

// Result returns the raw records the entities were built from.
func (r *ResultSet[T]) Result() []Payload {
	out := make([]Payload, len(r.records))
	copy(out, r.records)

	return out
}

// DeclaredTotal returns the total the server declared for the query.
func (r *ResultSet[T]) DeclaredTotal() (int, bool) {
	return r.declaredTotal, r.hasDeclaredTotal
}

// StartAt returns the server reported offset of this page.
func (r *ResultSet[T]) StartAt() int { return r.startAt }

// MaxResults returns the server reported page size.
func (r *ResultSet[T]) MaxResults() int { return r.maxResults }

// IsLast reports whether the server flagged this page as the last one.
func (r *ResultSet[T]) IsLast() (bool, bool) { return r.isLast, r.hasIsLast }
