package report

import (
	"errors"
	"slices"
	"sync"

	"github.com/kozaktomas/photo-report/internal/photo"
)

// ErrPhotoNotFound is returned when a preview is opened for an id that is
// not in the collection.
var ErrPhotoNotFound = errors.New("photo not found")

// Collection is the ordered list of photos in a report together with the
// preview cursor. The order is the print order.
//
// Commands on unknown ids are no-ops and report false; ids only come from
// the collection itself, so a miss means the caller held a stale id. All
// commands are serialised by a single mutex.
type Collection struct {
	mu      sync.RWMutex
	photos  []*photo.Photo
	preview string // id of the previewed photo, "" when closed
	notify  func(Event)
}

// NewCollection creates an empty collection. notify is called for every
// state change while the collection lock is held, so events arrive in
// mutation order; it must not call back into the collection. notify may be nil.
func NewCollection(notify func(Event)) *Collection {
	if notify == nil {
		notify = func(Event) {}
	}
	return &Collection{notify: notify}
}

// indexOf returns the position of id or -1. Callers hold the lock.
func (c *Collection) indexOf(id string) int {
	return slices.IndexFunc(c.photos, func(p *photo.Photo) bool { return p.ID == id })
}

// Add appends a batch at the end of the collection in batch order. Photos
// with an empty id or an id already present are skipped. It returns the
// number added.
func (c *Collection) Add(batch []photo.Photo) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool, len(c.photos)+len(batch))
	for _, p := range c.photos {
		seen[p.ID] = true
	}

	ids := make([]string, 0, len(batch))
	for _, p := range batch {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		c.photos = append(c.photos, &p)
		ids = append(ids, p.ID)
	}

	if len(ids) > 0 {
		c.notify(Event{Type: EventPhotosAdded, Data: map[string]any{"ids": ids, "count": len(c.photos)}})
	}
	return len(ids)
}

// Remove deletes the photo with the given id. Removing the previewed photo
// closes the preview.
func (c *Collection) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.photos = slices.Delete(c.photos, i, i+1)
	c.notify(Event{Type: EventPhotoRemoved, PhotoID: id, Data: map[string]any{"count": len(c.photos)}})

	if c.preview == id {
		c.preview = ""
		c.notify(Event{Type: EventPreviewChanged})
	}
	return true
}

// UpdateCaption replaces the caption of a photo. The caption is stored as
// given, without trimming.
func (c *Collection) UpdateCaption(id, caption string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	if c.photos[i].Caption == caption {
		return true
	}
	c.photos[i].Caption = caption
	c.notify(Event{Type: EventPhotoCaption, PhotoID: id, Data: map[string]string{"caption": caption}})
	return true
}

// Reorder moves a photo so that it ends up at targetIndex in the resulting
// sequence; photos in between shift by one. Unknown ids and indexes outside
// [0, Len()) are no-ops.
func (c *Collection) Reorder(id string, targetIndex int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.move(id, targetIndex)
}

// MoveOnto moves a photo to the current position of another photo, the way
// a drag-and-drop gesture drops one item onto another. It is a no-op when
// either id is unknown or both are the same.
func (c *Collection) MoveOnto(id, overID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == overID {
		return false
	}
	target := c.indexOf(overID)
	if target < 0 {
		return false
	}
	return c.move(id, target)
}

// move implements Reorder. Callers hold the lock.
func (c *Collection) move(id string, targetIndex int) bool {
	from := c.indexOf(id)
	if from < 0 || targetIndex < 0 || targetIndex >= len(c.photos) {
		return false
	}
	if from == targetIndex {
		return true
	}

	p := c.photos[from]
	c.photos = slices.Delete(c.photos, from, from+1)
	c.photos = slices.Insert(c.photos, targetIndex, p)
	c.notify(Event{Type: EventPhotoMoved, PhotoID: id, Data: map[string]int{"from": from, "to": targetIndex}})
	return true
}

// Clear removes every photo and closes the preview. Clearing an empty
// collection changes nothing and returns false.
func (c *Collection) Clear() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.photos) == 0 && c.preview == "" {
		return false
	}
	c.photos = nil
	c.preview = ""
	c.notify(Event{Type: EventPhotosCleared})
	return true
}

// Len returns the number of photos.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.photos)
}

// IndexOf returns the position of a photo or -1.
func (c *Collection) IndexOf(id string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexOf(id)
}

// Photo returns a copy of the photo with the given id.
func (c *Collection) Photo(id string) (photo.Photo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := c.indexOf(id)
	if i < 0 {
		return photo.Photo{}, false
	}
	return *c.photos[i], true
}

// Photos returns a copy of the photos in print order.
func (c *Collection) Photos() []photo.Photo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]photo.Photo, len(c.photos))
	for i, p := range c.photos {
		out[i] = *p
	}
	return out
}

// State returns the photos and the preview as one consistent view.
func (c *Collection) State() ([]photo.Photo, *PreviewView) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]photo.Photo, len(c.photos))
	for i, p := range c.photos {
		out[i] = *p
	}
	if pv, ok := c.previewView(); ok {
		return out, &pv
	}
	return out, nil
}

// IDs returns the photo ids in print order.
func (c *Collection) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, len(c.photos))
	for i, p := range c.photos {
		ids[i] = p.ID
	}
	return ids
}
