package photo

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/photo-report/internal/config"
	"github.com/kozaktomas/photo-report/internal/constants"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

var errTooLarge = errors.New("exceeds size limit")

// Batch is the result of turning one set of blobs into photos.
type Batch struct {
	// Photos are the decoded photos in the order their blobs were supplied.
	Photos []Photo
	// Dropped lists image blobs that could not be read. They never reach Photos.
	Dropped []DroppedBlob
	// Rejected counts blobs discarded because they are not images.
	Rejected int
}

// DroppedBlob describes an image blob that failed to decode.
type DroppedBlob struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Factory builds Photo records from raw blobs.
type Factory struct {
	concurrency int
	maxBytes    int64 // 0 = unlimited
	now         func() time.Time
	newID       func() string
}

// NewFactory creates a factory using the upload limits from the config.
func NewFactory(cfg config.UploadConfig) *Factory {
	concurrency := cfg.DecodeConcurrency
	if concurrency <= 0 {
		concurrency = constants.DefaultDecodeConcurrency
	}
	return &Factory{
		concurrency: concurrency,
		maxBytes:    cfg.MaxPhotoBytes,
		now:         time.Now,
		newID:       NewID,
	}
}

// NewID returns a new photo identifier. UUIDv7 combines a millisecond
// timestamp with random bits; a random v4 is used if v7 generation fails.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// decodeResult is the outcome of one decode task.
type decodeResult struct {
	photo    *Photo
	dropped  *DroppedBlob
	rejected bool
}

// Build decodes a batch of blobs and returns once every blob is done. The
// photos come back in blob order no matter which decode finished first, so
// the caller can hand the whole batch to the collection in one step.
// An error is only returned when ctx is cancelled; in that case no photos
// are returned.
func (f *Factory) Build(ctx context.Context, blobs []Blob) (*Batch, error) {
	return f.BuildWithProgress(ctx, blobs, nil)
}

// BuildWithProgress is Build with a callback invoked once per finished blob.
// The callback may be called from several goroutines at once.
func (f *Factory) BuildWithProgress(ctx context.Context, blobs []Blob, progress func()) (*Batch, error) {
	results := make([]decodeResult, len(blobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, blob := range blobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = f.decode(blob)
			if progress != nil {
				progress()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("decoding batch: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("decoding batch: %w", err)
	}

	batch := &Batch{Photos: make([]Photo, 0, len(blobs))}
	for _, res := range results {
		switch {
		case res.rejected:
			batch.Rejected++
		case res.dropped != nil:
			batch.Dropped = append(batch.Dropped, *res.dropped)
		case res.photo != nil:
			batch.Photos = append(batch.Photos, *res.photo)
		}
	}
	return batch, nil
}

// decode reads one blob and turns it into a photo. A declared media type
// must name an image; only blobs without one (files on disk) are sniffed.
func (f *Factory) decode(blob Blob) decodeResult {
	declared := strings.TrimSpace(blob.MediaType())
	mediaType := normalizeMediaType(declared)
	if declared != "" && !IsImageMediaType(mediaType) {
		return decodeResult{rejected: true}
	}

	data, err := f.readBlob(blob)
	if err != nil {
		return decodeResult{dropped: &DroppedBlob{Name: blob.Name(), Reason: err.Error()}}
	}

	if declared == "" {
		mediaType = sniffMediaType(data)
		if !IsImageMediaType(mediaType) {
			return decodeResult{rejected: true}
		}
	}

	p := &Photo{
		ID:          f.newID(),
		Name:        blob.Name(),
		MediaType:   mediaType,
		Size:        int64(len(data)),
		Caption:     DefaultCaption(blob.Name()),
		AddedAt:     f.now(),
		DisplayData: dataURI(mediaType, data),
		raw:         data,
	}
	// Formats without a registered decoder (HEIC, RAW) keep zero dimensions.
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		p.Width = cfg.Width
		p.Height = cfg.Height
	}
	return decodeResult{photo: p}
}

// readBlob reads the whole blob, enforcing the per-photo size limit.
func (f *Factory) readBlob(blob Blob) ([]byte, error) {
	rc, err := blob.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", blob.Name(), err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if f.maxBytes > 0 {
		r = io.LimitReader(rc, f.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", blob.Name(), err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%s %w of %d bytes", blob.Name(), errTooLarge, f.maxBytes)
	}
	return data, nil
}

func dataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
