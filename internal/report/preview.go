package report

import "github.com/kozaktomas/photo-report/internal/photo"

// PreviewView describes the enlarged photo: which one it is and where it
// sits in the collection ("photo 3 of 12").
type PreviewView struct {
	Photo   photo.Photo `json:"photo"`
	Index   int         `json:"index"`
	Total   int         `json:"total"`
	HasPrev bool        `json:"has_prev"`
	HasNext bool        `json:"has_next"`
}

// Open shows a photo in the preview and reports whether the preview moved.
// Opening an unknown id returns ErrPhotoNotFound and leaves the preview as it was.
func (c *Collection) Open(id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == "" || c.indexOf(id) < 0 {
		return false, ErrPhotoNotFound
	}
	return c.setPreview(id), nil
}

// Close hides the preview. It returns false when it was already closed.
func (c *Collection) Close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setPreview("")
}

// Next moves the preview to the following photo. It does nothing when the
// preview is closed or already shows the last photo.
func (c *Collection) Next() bool {
	return c.step(1)
}

// Prev moves the preview to the preceding photo. It does nothing when the
// preview is closed or already shows the first photo.
func (c *Collection) Prev() bool {
	return c.step(-1)
}

func (c *Collection) step(delta int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.preview == "" {
		return false
	}
	i := c.indexOf(c.preview) + delta
	if i < 0 || i >= len(c.photos) {
		return false
	}
	c.setPreview(c.photos[i].ID)
	return true
}

// setPreview changes the cursor and emits an event on change. Callers hold the lock.
func (c *Collection) setPreview(id string) bool {
	if c.preview == id {
		return false
	}
	c.preview = id
	c.notify(Event{Type: EventPreviewChanged, PhotoID: id})
	return true
}

// PreviewID returns the id shown in the preview, or "" when it is closed.
func (c *Collection) PreviewID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.preview
}

// Preview returns the current preview, or false when it is closed.
func (c *Collection) Preview() (PreviewView, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.previewView()
}

// previewView builds the preview description. Callers hold the lock.
func (c *Collection) previewView() (PreviewView, bool) {
	if c.preview == "" {
		return PreviewView{}, false
	}
	i := c.indexOf(c.preview)
	if i < 0 {
		return PreviewView{}, false
	}
	return PreviewView{
		Photo:   *c.photos[i],
		Index:   i,
		Total:   len(c.photos),
		HasPrev: i > 0,
		HasNext: i < len(c.photos)-1,
	}, true
}
