package record

import (
	"fmt"
	"strings"
)

// Field is a single named, typed column of a record header.
type Field struct {
	Name string
	Type Type
}

// String renders the field as name :: type.
func (f Field) String() string {
	return fmt.Sprintf("%s :: %s", f.Name, f.Type)
}

// Header is an ordered set of uniquely named fields describing the schema of
// a record stream. Headers are immutable once constructed; all derivation
// methods return new headers.
type Header struct {
	fields []Field
	index  map[string]int
}

// NewHeader builds a header from the given fields. Field names must be
// unique; a duplicate name is a programming error in the caller and is
// reported so upstream plan construction fails fast.
func NewHeader(fields ...Field) (*Header, error) {
	h := &Header{
		fields: append([]Field(nil), fields...),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if _, ok := h.index[f.Name]; ok {
			return nil, fmt.Errorf("duplicate header field '%s'", f.Name)
		}
		h.index[f.Name] = i
	}
	return h, nil
}

// MustHeader is NewHeader for statically known field sets, typically tests
// and plan fixtures.
func MustHeader(fields ...Field) *Header {
	h, err := NewHeader(fields...)
	if err != nil {
		panic(err)
	}
	return h
}

// Empty returns a header with no fields.
func Empty() *Header {
	return MustHeader()
}

// Fields returns the header's fields in declaration order. The returned
// slice is a copy.
func (h *Header) Fields() []Field {
	return append([]Field(nil), h.fields...)
}

// Len returns the number of fields.
func (h *Header) Len() int {
	return len(h.fields)
}

// Field returns the field with the given name.
func (h *Header) Field(name string) (Field, bool) {
	i, ok := h.index[name]
	if !ok {
		return Field{}, false
	}
	return h.fields[i], true
}

// IndexOf returns the positional index of the named field, or -1.
func (h *Header) IndexOf(name string) int {
	i, ok := h.index[name]
	if !ok {
		return -1
	}
	return i
}

// Names returns the field names in declaration order.
func (h *Header) Names() []string {
	names := make([]string, len(h.fields))
	for i, f := range h.fields {
		names[i] = f.Name
	}
	return names
}

// Append returns a new header with the given fields added at the end.
func (h *Header) Append(fields ...Field) (*Header, error) {
	return NewHeader(append(h.Fields(), fields...)...)
}

// Select returns a new header restricted to the named fields, in the order
// given. Unknown names are an error.
func (h *Header) Select(names ...string) (*Header, error) {
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		f, ok := h.Field(name)
		if !ok {
			return nil, fmt.Errorf("unknown header field '%s'", name)
		}
		fields = append(fields, f)
	}
	return NewHeader(fields...)
}

// Concat returns a new header holding this header's fields followed by
// other's fields.
func (h *Header) Concat(other *Header) (*Header, error) {
	return NewHeader(append(h.Fields(), other.fields...)...)
}

// EqualNames reports whether both headers declare the same field names in
// the same order.
func (h *Header) EqualNames(other *Header) bool {
	if len(h.fields) != len(other.fields) {
		return false
	}
	for i, f := range h.fields {
		if other.fields[i].Name != f.Name {
			return false
		}
	}
	return true
}

// String renders the header as a bracketed field list.
func (h *Header) String() string {
	parts := make([]string, len(h.fields))
	for i, f := range h.fields {
		parts[i] = f.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
