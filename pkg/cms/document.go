package cms

import (
	"strconv"

	"github.com/tidwall/gjson"
)

// Document is one CMS record. Fields are read from the v4 "attributes"
// envelope when present, from the flat v5 shape otherwise.
type Document struct {
	raw   gjson.Result
	attrs gjson.Result
}

// NewDocument wraps a JSON record.
func NewDocument(raw gjson.Result) Document {
	attrs := raw
	if a := raw.Get("attributes"); a.IsObject() {
		attrs = a
	}
	return Document{raw: raw, attrs: attrs}
}

// ParseDocument wraps raw JSON bytes.
func ParseDocument(data []byte) Document {
	return NewDocument(gjson.ParseBytes(data))
}

// Exists reports whether the document holds a record.
func (d Document) Exists() bool {
	return d.raw.IsObject()
}

// ID returns the numeric id as a string, or "" when absent.
func (d Document) ID() string {
	if id := d.raw.Get("id"); id.Exists() {
		return id.String()
	}
	return ""
}

// DocumentID returns the v5 documentId, falling back to the numeric id.
func (d Document) DocumentID() string {
	if id := d.raw.Get("documentId"); id.Exists() && id.String() != "" {
		return id.String()
	}
	return d.ID()
}

// Get returns a raw field.
func (d Document) Get(field string) gjson.Result {
	return d.attrs.Get(field)
}

// String returns a string field, "" when absent or null.
func (d Document) String(field string) string {
	r := d.attrs.Get(field)
	if !r.Exists() || r.Type == gjson.Null {
		return ""
	}
	return r.String()
}

// StringOr returns a string field or def when it is empty.
func (d Document) StringOr(field, def string) string {
	if s := d.String(field); s != "" {
		return s
	}
	return def
}

// Int returns an integer field. Numeric strings are accepted.
func (d Document) Int(field string) (int, bool) {
	r := d.attrs.Get(field)
	switch r.Type {
	case gjson.Number:
		return int(r.Int()), true
	case gjson.String:
		n, err := strconv.Atoi(r.String())
		return n, err == nil
	default:
		return 0, false
	}
}

// Strings returns an array-of-strings field.
func (d Document) Strings(field string) []string {
	r := d.attrs.Get(field)
	if !r.IsArray() {
		return nil
	}
	out := make([]string, 0, len(r.Array()))
	for _, item := range r.Array() {
		if s := item.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// One returns a to-one relation or media field. Both {data:{...}} and {...} are accepted.
func (d Document) One(field string) (Document, bool) {
	r := unwrapData(d.attrs.Get(field))
	if r.IsArray() {
		items := r.Array()
		if len(items) == 0 {
			return Document{}, false
		}
		r = items[0]
	}
	if !r.IsObject() {
		return Document{}, false
	}
	return NewDocument(r), true
}

// Many returns a to-many relation. Both {data:[...]} and [...] are accepted.
func (d Document) Many(field string) []Document {
	r := unwrapData(d.attrs.Get(field))
	if r.IsObject() {
		return []Document{NewDocument(r)}
	}
	if !r.IsArray() {
		return nil
	}
	items := r.Array()
	out := make([]Document, 0, len(items))
	for _, item := range items {
		if item.IsObject() {
			out = append(out, NewDocument(item))
		}
	}
	return out
}

// Raw returns the underlying JSON.
func (d Document) Raw() string {
	return d.raw.Raw
}

func unwrapData(r gjson.Result) gjson.Result {
	if r.IsObject() {
		if data := r.Get("data"); data.Exists() {
			return data
		}
	}
	return r
}
