package dataverse

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the round-trippable layout used for date literals.
const TimestampLayout = "2006-01-02T15:04:05.0000000Z"

// QueryBuilder composes a single OData collection read. Clauses are always
// emitted in the order select, filter, expand, orderby, top.
type QueryBuilder struct {
	collection string
	selects    []string
	filters    []string
	expands    []string
	orderBy    []string
	top        int
}

// NewQuery creates a builder for the given entity set.
func NewQuery(collection string) (*QueryBuilder, error) {
	if strings.TrimSpace(collection) == "" {
		return nil, fmt.Errorf("%w: collection name is required", ErrInvalidArgument)
	}

	return &QueryBuilder{collection: collection}, nil
}

// MustQuery is like NewQuery but panics on an empty collection. Only use it
// with constant names.
func MustQuery(collection string) *QueryBuilder {
	q, err := NewQuery(collection)
	if err != nil {
		panic(err)
	}

	return q
}

// Select appends columns to the select clause. Duplicates are kept.
func (q *QueryBuilder) Select(columns ...string) *QueryBuilder {
	q.selects = append(q.selects, columns...)

	return q
}

// Filter appends a raw predicate. Predicates are combined with "and".
func (q *QueryBuilder) Filter(predicate string) *QueryBuilder {
	if strings.TrimSpace(predicate) != "" {
		q.filters = append(q.filters, predicate)
	}

	return q
}

// FilterEqual appends "column eq value" with value formatted as an OData
// literal.
func (q *QueryBuilder) FilterEqual(column string, value interface{}) *QueryBuilder {
	return q.Filter(column + " eq " + FormatLiteral(value))
}

// Expand appends a navigation expansion with optional nested select and filter.
func (q *QueryBuilder) Expand(navigation string, selectColumns []string, filter string) *QueryBuilder {
	var nested []string

	if len(selectColumns) > 0 {
		nested = append(nested, "$select="+strings.Join(selectColumns, ","))
	}

	if strings.TrimSpace(filter) != "" {
		nested = append(nested, "$filter="+filter)
	}

	if len(nested) == 0 {
		q.expands = append(q.expands, navigation)
	} else {
		q.expands = append(q.expands, navigation+"("+strings.Join(nested, ";")+")")
	}

	return q
}

// OrderBy appends an ascending sort key.
func (q *QueryBuilder) OrderBy(column string) *QueryBuilder {
	q.orderBy = append(q.orderBy, column)

	return q
}

// OrderByDescending appends a descending sort key.
func (q *QueryBuilder) OrderByDescending(column string) *QueryBuilder {
	q.orderBy = append(q.orderBy, column+" desc")

	return q
}

// Top caps the number of rows. Values <= 0 clear the cap.
func (q *QueryBuilder) Top(n int) *QueryBuilder {
	q.top = n

	return q
}

// Build returns the collection name followed by the query string.
func (q *QueryBuilder) Build() string {
	var clauses []string

	if len(q.selects) > 0 {
		clauses = append(clauses, "$select="+strings.Join(q.selects, ","))
	}

	if len(q.filters) > 0 {
		clauses = append(clauses, "$filter="+strings.Join(q.filters, " and "))
	}

	if len(q.expands) > 0 {
		clauses = append(clauses, "$expand="+strings.Join(q.expands, ","))
	}

	if len(q.orderBy) > 0 {
		clauses = append(clauses, "$orderby="+strings.Join(q.orderBy, ","))
	}

	if q.top > 0 {
		clauses = append(clauses, "$top="+strconv.Itoa(q.top))
	}

	if len(clauses) == 0 {
		return q.collection
	}

	return q.collection + "?" + strings.Join(clauses, "&")
}

// String implements fmt.Stringer.
func (q *QueryBuilder) String() string {
	return q.Build()
}

// FormatLiteral renders a Go value as an OData literal: strings quoted with
// embedded quotes doubled, GUIDs bare, booleans lower-case, timestamps in
// TimestampLayout (UTC) and numbers bare, even for named numeric types.
func FormatLiteral(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return quote(v)
	case uuid.UUID:
		return v.String()
	case *uuid.UUID:
		if v == nil {
			return "null"
		}

		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.UTC().Format(TimestampLayout)
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() { //nolint:exhaustive // everything else is quoted
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.String:
		return quote(rv.String())
	}

	if s, ok := value.(fmt.Stringer); ok {
		return quote(s.String())
	}

	return quote(fmt.Sprint(value))
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
