package report

import (
	"sync"
	"time"

	"github.com/kozaktomas/photo-report/internal/constants"
)

// Metadata holds the free-form report fields. Fields are independent and
// are never validated.
type Metadata struct {
	Title       string `json:"title" yaml:"title"`
	Client      string `json:"client" yaml:"client"`
	Date        string `json:"date" yaml:"date"`
	ProjectCode string `json:"project_code" yaml:"project_code"`
	Notes       string `json:"notes" yaml:"notes"`
}

// MetadataPatch changes the non-nil fields only.
type MetadataPatch struct {
	Title       *string `json:"title,omitempty" yaml:"title"`
	Client      *string `json:"client,omitempty" yaml:"client"`
	Date        *string `json:"date,omitempty" yaml:"date"`
	ProjectCode *string `json:"project_code,omitempty" yaml:"project_code"`
	Notes       *string `json:"notes,omitempty" yaml:"notes"`
}

// Apply returns m with the patch applied.
func (p MetadataPatch) Apply(m Metadata) Metadata {
	if p.Title != nil {
		m.Title = *p.Title
	}
	if p.Client != nil {
		m.Client = *p.Client
	}
	if p.Date != nil {
		m.Date = *p.Date
	}
	if p.ProjectCode != nil {
		m.ProjectCode = *p.ProjectCode
	}
	if p.Notes != nil {
		m.Notes = *p.Notes
	}
	return m
}

// DefaultMetadata returns empty fields with the date set to the UTC day of now.
func DefaultMetadata(now time.Time) Metadata {
	return Metadata{Date: now.UTC().Format(constants.DateLayout)}
}

// MetadataStore owns the metadata of one report.
type MetadataStore struct {
	mu     sync.RWMutex
	data   Metadata
	notify func(Event)
}

// NewMetadataStore creates a store with default values for the given load time.
// notify may be nil.
func NewMetadataStore(now time.Time, notify func(Event)) *MetadataStore {
	if notify == nil {
		notify = func(Event) {}
	}
	return &MetadataStore{data: DefaultMetadata(now), notify: notify}
}

// Get returns a copy of the metadata.
func (s *MetadataStore) Get() Metadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Replace swaps all fields at once.
func (s *MetadataStore) Replace(m Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(m)
}

// Patch changes the fields set in p.
func (s *MetadataStore) Patch(p MetadataPatch) Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(p.Apply(s.data))
	return s.data
}

func (s *MetadataStore) SetTitle(v string)       { s.Patch(MetadataPatch{Title: &v}) }
func (s *MetadataStore) SetClient(v string)      { s.Patch(MetadataPatch{Client: &v}) }
func (s *MetadataStore) SetDate(v string)        { s.Patch(MetadataPatch{Date: &v}) }
func (s *MetadataStore) SetProjectCode(v string) { s.Patch(MetadataPatch{ProjectCode: &v}) }
func (s *MetadataStore) SetNotes(v string)       { s.Patch(MetadataPatch{Notes: &v}) }

// set stores m and emits an event if anything changed. Callers hold the lock.
func (s *MetadataStore) set(m Metadata) {
	if m == s.data {
		return
	}
	s.data = m
	s.notify(Event{Type: EventMetadataChanged, Data: m})
}
