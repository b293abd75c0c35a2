package cms

import (
	"fmt"
	"net/url"
	"strconv"
)

// Query is a Strapi REST query, encoded the way the qs library does.
type Query struct {
	Locale   string
	Page     int
	PageSize int
	Sort     []string
	// Populate lists relations populated one level deep.
	Populate []string
	// PopulateDeep lists relations populated with their own relations.
	PopulateDeep []string
	// Filters are equality filters: field -> value.
	Filters map[string]string
}

// Values encodes q as Strapi query parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Locale != "" {
		v.Set("locale", q.Locale)
	}
	if q.Page > 0 {
		v.Set("pagination[page]", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pagination[pageSize]", strconv.Itoa(q.PageSize))
	}
	for i, s := range q.Sort {
		v.Set(fmt.Sprintf("sort[%d]", i), s)
	}
	for i, p := range q.Populate {
		v.Set(fmt.Sprintf("populate[%d]", i), p)
	}
	for _, p := range q.PopulateDeep {
		v.Set(fmt.Sprintf("populate[%s][populate]", p), "*")
	}
	for field, value := range q.Filters {
		v.Set(fmt.Sprintf("filters[%s][$eq]", field), value)
	}
	return v
}

// Encode returns the encoded query string, keys sorted.
func (q Query) Encode() string {
	return q.Values().Encode()
}
