package hello

import (
	"bytes"
	"io"
)

// MarkupDocument is a rendered HTML document. Its zero value is an empty
// document.
type MarkupDocument struct {
	body []byte
}

// Bytes returns the document's HTML. The returned slice must not be modified.
func (d MarkupDocument) Bytes() []byte {
	return d.body
}

// String returns the document's HTML.
func (d MarkupDocument) String() string {
	return string(d.body)
}

// Len returns the size of the document in bytes.
func (d MarkupDocument) Len() int {
	return len(d.body)
}

// WriteTo writes the document to w.
func (d MarkupDocument) WriteTo(w io.Writer) (int64, error) {
	return bytes.NewReader(d.body).WriteTo(w)
}
