package overlay

import (
	"sort"
	"sync"
)

// ScrollLockClass is toggled on the document body while any overlay is open.
const ScrollLockClass = "overflow-hidden"

// Document is the page the overlays sit on. Only the body class list is
// touched.
type Document interface {
	AddBodyClass(class string)
	RemoveBodyClass(class string)
}

// MemoryDocument is an in-process Document for headless hosts and tests.
type MemoryDocument struct {
	mu      sync.Mutex
	classes map[string]struct{}
}

func NewMemoryDocument() *MemoryDocument {
	return &MemoryDocument{classes: make(map[string]struct{})}
}

func (d *MemoryDocument) AddBodyClass(class string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.classes[class] = struct{}{}
}

func (d *MemoryDocument) RemoveBodyClass(class string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.classes, class)
}

func (d *MemoryDocument) HasBodyClass(class string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.classes[class]
	return ok
}

func (d *MemoryDocument) BodyClasses() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.classes))
	for c := range d.classes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
