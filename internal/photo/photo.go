// Package photo turns uploaded file blobs into Photo records.
package photo

import (
	"bytes"
	"time"
)

// Photo is a single uploaded image. Everything except Caption is fixed at
// creation; the collection controller owns caption edits.
type Photo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MediaType string    `json:"media_type"`
	Size      int64     `json:"size"`
	Width     int       `json:"width"`  // 0 when the format could not be probed
	Height    int       `json:"height"` // 0 when the format could not be probed
	Caption   string    `json:"caption"`
	AddedAt   time.Time `json:"added_at"`

	// DisplayData is a data URI of the original bytes, ready for an <img> src.
	DisplayData string `json:"-"`

	raw []byte
}

// Open returns a reader over the original uploaded bytes.
// Every call returns an independent reader.
func (p Photo) Open() *bytes.Reader {
	return bytes.NewReader(p.raw)
}

// HasDimensions reports whether the image header could be decoded.
func (p Photo) HasDimensions() bool {
	return p.Width > 0 && p.Height > 0
}
