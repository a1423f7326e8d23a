// Package report holds the in-memory state of one photo report: the ordered
// photo collection with its preview cursor, the report metadata, and a
// broadcaster announcing every change.
package report

import (
	"time"

	"github.com/kozaktomas/photo-report/internal/photo"
)

// Report is one independent report session. Nothing in it is global, so a
// process can hold any number of reports side by side.
type Report struct {
	Broadcaster

	ID        string
	CreatedAt time.Time
	Photos    *Collection
	Info      *MetadataStore
}

// New creates an empty report. The metadata date defaults to the UTC day of now.
func New(id string, now time.Time) *Report {
	r := &Report{ID: id, CreatedAt: now}
	r.Photos = NewCollection(r.SendEvent)
	r.Info = NewMetadataStore(now, r.SendEvent)
	return r
}

// Snapshot is a read-only view of a report, consumed by renderers.
type Snapshot struct {
	Metadata Metadata      `json:"metadata"`
	Photos   []photo.Photo `json:"photos"`
	Preview  *PreviewView  `json:"preview"`
}

// Snapshot copies the current state.
func (r *Report) Snapshot() Snapshot {
	photos, preview := r.Photos.State()
	return Snapshot{
		Metadata: r.Info.Get(),
		Photos:   photos,
		Preview:  preview,
	}
}
