package nocode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryEncoding(t *testing.T) {
	q := NewQuery().
		EqUint("thread_id", 5).
		EqBool("visible", false).
		Sort("created_at", "desc").
		Limit(50).
		IncludeTotal()

	v := q.Values()
	assert.Equal(t, "5", v.Get("thread_id"))
	assert.Equal(t, "0", v.Get("visible"))
	assert.Equal(t, "created_at", v.Get("sort"))
	assert.Equal(t, "desc", v.Get("order"))
	assert.Equal(t, "50", v.Get("limit"))
	assert.Equal(t, "true", v.Get("includeTotal"))
}

func TestQueryBoolEncodesAsDigits(t *testing.T) {
	assert.Equal(t, "1", NewQuery().EqBool("visible", true).Values().Get("visible"))
	assert.Equal(t, "0", NewQuery().EqBool("visible", false).Values().Get("visible"))
}

func TestQueryIn(t *testing.T) {
	v := NewQuery().In("site_id", []uint64{3, 7, 11}).Values()
	assert.Equal(t, "3,7,11", v.Get("site_id[in]"))
}

func TestNilQueryValues(t *testing.T) {
	var q *Query
	assert.Nil(t, q.Values())
}
