// Package overlay tracks stacked modal and drawer overlays: per-kind open
// counts, the stacking level each open overlay holds, and the page scroll-lock
// that stays on while anything is open.
package overlay

import (
	"log/slog"
	"sync"

	"shopadmin/internal/metrics"
)

type Kind int

const (
	Modal Kind = iota
	Drawer
)

var kinds = []Kind{Modal, Drawer}

func (k Kind) String() string {
	switch k {
	case Modal:
		return "modal"
	case Drawer:
		return "drawer"
	default:
		return "unknown"
	}
}

// Registry holds the open count of every overlay kind. One Registry is shared
// by all overlays on a page.
type Registry struct {
	mu     sync.Mutex
	doc    Document
	counts map[Kind]int
	// generation advances on Reset; overlays mounted earlier are detached.
	generation uint64
}

func NewRegistry(doc Document) *Registry {
	if doc == nil {
		doc = NewMemoryDocument()
	}
	r := &Registry{doc: doc, counts: make(map[Kind]int, len(kinds))}
	r.publish()
	return r
}

// OpenCount returns how many overlays of kind are open.
func (r *Registry) OpenCount(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[kind]
}

// ScrollLocked reports whether any overlay of any kind is open.
func (r *Registry) ScrollLocked() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totalOpen() > 0
}

// Reset zeroes every counter and releases the scroll-lock. Overlays mounted
// before the reset are detached: their later show changes are ignored.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.totalOpen() > 0 {
		r.doc.RemoveBodyClass(ScrollLockClass)
	}
	r.counts = make(map[Kind]int, len(kinds))
	r.generation++
	r.publish()
}

// Mount registers a closed overlay. onHide runs when its backdrop is clicked.
func (r *Registry) Mount(kind Kind, onHide func()) *Overlay {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &Overlay{registry: r, kind: kind, onHide: onHide, generation: r.generation}
}

// With mounts an overlay, runs fn with it and unmounts it afterwards, even
// when fn returns an error or panics.
func (r *Registry) With(kind Kind, onHide func(), fn func(*Overlay) error) error {
	o := r.Mount(kind, onHide)
	defer o.Unmount()
	return fn(o)
}

// open counts a newly shown overlay and returns its level. ok is false when
// the overlay belongs to an earlier generation.
func (r *Registry) open(kind Kind, generation uint64) (level int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if generation != r.generation {
		return 0, false
	}
	if r.totalOpen() == 0 {
		r.doc.AddBodyClass(ScrollLockClass)
	}
	r.counts[kind]++
	r.publish()
	return r.counts[kind], true
}

func (r *Registry) close(kind Kind, generation uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if generation != r.generation {
		return
	}
	if r.counts[kind] == 0 {
		slog.Warn("Overlay closed with no open count", "kind", kind.String())
		return
	}
	r.counts[kind]--
	if r.totalOpen() == 0 {
		r.doc.RemoveBodyClass(ScrollLockClass)
	}
	r.publish()
}

func (r *Registry) totalOpen() int {
	total := 0
	for _, n := range r.counts {
		total += n
	}
	return total
}

func (r *Registry) publish() {
	for _, k := range kinds {
		metrics.OverlaysOpen.WithLabelValues(k.String()).Set(float64(r.counts[k]))
	}
}
