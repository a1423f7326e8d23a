package photo

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/kozaktomas/photo-report/internal/constants"
)

// Blob is a raw uploaded file: a name, the media type declared by whoever
// supplied it, and its bytes.
type Blob interface {
	Name() string
	// MediaType returns the declared media type. An empty value or
	// application/octet-stream means "unknown" and the content is sniffed.
	MediaType() string
	Open() (io.ReadCloser, error)
}

// MemoryBlob is a Blob held in memory.
type MemoryBlob struct {
	name      string
	mediaType string
	data      []byte
}

// NewMemoryBlob creates a blob from bytes already in memory.
func NewMemoryBlob(name, mediaType string, data []byte) *MemoryBlob {
	return &MemoryBlob{name: name, mediaType: mediaType, data: data}
}

func (b *MemoryBlob) Name() string      { return b.name }
func (b *MemoryBlob) MediaType() string { return b.mediaType }

func (b *MemoryBlob) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

// FileBlob is a file on disk. Files carry no declared media type, so their
// type is always sniffed from the content.
type FileBlob struct {
	path string
}

// NewFileBlob creates a blob backed by the file at path.
func NewFileBlob(path string) *FileBlob {
	return &FileBlob{path: path}
}

func (b *FileBlob) Name() string      { return filepath.Base(b.path) }
func (b *FileBlob) MediaType() string { return "" }

func (b *FileBlob) Open() (io.ReadCloser, error) {
	return os.Open(b.path)
}

// MultipartBlob is a file from a multipart/form-data upload.
type MultipartBlob struct {
	header *multipart.FileHeader
}

// NewMultipartBlob wraps an uploaded multipart file.
func NewMultipartBlob(fh *multipart.FileHeader) *MultipartBlob {
	return &MultipartBlob{header: fh}
}

func (b *MultipartBlob) Name() string { return filepath.Base(b.header.Filename) }

func (b *MultipartBlob) MediaType() string {
	return b.header.Header.Get("Content-Type")
}

func (b *MultipartBlob) Open() (io.ReadCloser, error) {
	return b.header.Open()
}

// MultipartBlobs wraps all files of a multipart form field, keeping their order.
func MultipartBlobs(headers []*multipart.FileHeader) []Blob {
	blobs := make([]Blob, 0, len(headers))
	for _, fh := range headers {
		blobs = append(blobs, NewMultipartBlob(fh))
	}
	return blobs
}

// IsImageMediaType reports whether a media type names an image.
func IsImageMediaType(mediaType string) bool {
	return strings.HasPrefix(strings.ToLower(mediaType), constants.ImageMediaTypePrefix)
}

// normalizeMediaType strips parameters and lowercases a media type.
// Unparseable values come back empty and are treated as unknown.
func normalizeMediaType(mediaType string) string {
	if mediaType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return ""
	}
	return mt
}

// sniffMediaType detects the media type from the content.
func sniffMediaType(data []byte) string {
	return normalizeMediaType(mimetype.Detect(data).String())
}
