// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Photo ingestion constants
const (
	// ImageMediaTypePrefix is the media type prefix a blob needs to be accepted as a photo
	ImageMediaTypePrefix = "image/"

	// DefaultDecodeConcurrency is the number of blobs decoded in parallel when no limit is configured
	DefaultDecodeConcurrency = 8

	// UploadFormField is the multipart form field carrying uploaded photos
	UploadFormField = "files"
)

// Report constants
const (
	// DateLayout is the layout of the report date field (YYYY-MM-DD)
	DateLayout = "2006-01-02"
)

// Event channel constants
const (
	// EventChannelBuffer is the buffer size for event channels
	EventChannelBuffer = 100
)

// PDF export constants
const (
	// LowResDPIThreshold is the effective DPI below which a photo is reported as low resolution
	LowResDPIThreshold = 200.0

	// LatexPasses is the number of lualatex runs needed to settle page references
	LatexPasses = 2
)

// Web constants
const (
	// MultipartMemoryBytes is how much of a multipart upload is kept in memory before spilling to disk
	MultipartMemoryBytes = 32 << 20

	// SSEKeepAlive is the interval between SSE comment frames on an idle stream
	SSEKeepAlive = 15 * time.Second

	// RequestTimeout bounds every request except the event streams
	RequestTimeout = 5 * time.Minute
)
