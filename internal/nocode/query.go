package nocode

import (
	"net/url"
	"strconv"
	"strings"
)

// Query builds the filter/sort/pagination parameters the upstream read
// endpoint understands: field=value, field[in]=csv, sort, order, limit,
// includeTotal.
type Query struct {
	v url.Values
}

// NewQuery returns an empty Query.
func NewQuery() *Query {
	return &Query{v: url.Values{}}
}

// Eq adds an exact-match filter on a string field.
func (q *Query) Eq(field, value string) *Query {
	q.v.Set(field, value)
	return q
}

// EqUint adds an exact-match filter on a numeric field.
func (q *Query) EqUint(field string, value uint64) *Query {
	q.v.Set(field, strconv.FormatUint(value, 10))
	return q
}

// EqBool adds an exact-match filter on a flag field. The upstream stores
// flags as 0/1 columns, so filters are encoded as 0/1 even though payloads
// carry JSON booleans.
func (q *Query) EqBool(field string, value bool) *Query {
	if value {
		q.v.Set(field, "1")
	} else {
		q.v.Set(field, "0")
	}
	return q
}

// In adds a field[in]=csv filter.
func (q *Query) In(field string, ids []uint64) *Query {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10)
	}
	q.v.Set(field+"[in]", strings.Join(parts, ","))
	return q
}

// Sort orders the result by field in the given direction ("asc"/"desc").
func (q *Query) Sort(field, order string) *Query {
	q.v.Set("sort", field)
	q.v.Set("order", order)
	return q
}

// Limit caps the number of returned records.
func (q *Query) Limit(n int) *Query {
	q.v.Set("limit", strconv.Itoa(n))
	return q
}

// IncludeTotal asks the upstream to include the total match count.
func (q *Query) IncludeTotal() *Query {
	q.v.Set("includeTotal", "true")
	return q
}

// Values returns the accumulated parameters.
func (q *Query) Values() url.Values {
	if q == nil {
		return nil
	}
	return q.v
}
