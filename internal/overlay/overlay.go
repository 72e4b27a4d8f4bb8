package overlay

import "sync"

const (
	// BaseZIndex is where the first overlay of a kind paints.
	BaseZIndex = 1050
	// BackdropZIndex sits one below the lowest overlay and above page content.
	BackdropZIndex = BaseZIndex - 1
)

// Overlay is one mounted modal or drawer. It is either closed or open at a
// level captured when it opened.
type Overlay struct {
	registry *Registry
	kind     Kind
	onHide   func()

	generation uint64

	mu        sync.Mutex
	open      bool
	level     int
	unmounted bool
}

type Backdrop struct {
	Visible bool
	ZIndex  int
}

func (o *Overlay) Kind() Kind { return o.kind }

// SetShow applies the show flag. Repeating the current value is a no-op.
// Unmounted overlays and overlays detached by Registry.Reset ignore it.
func (o *Overlay) SetShow(show bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.unmounted || show == o.open {
		return
	}
	if show {
		level, ok := o.registry.open(o.kind, o.generation)
		if !ok {
			return
		}
		o.level = level
		o.open = true
		return
	}
	o.closeLocked()
}

// Unmount removes the overlay, closing it first if it is still open. Calling
// it again does nothing.
func (o *Overlay) Unmount() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.unmounted {
		return
	}
	o.unmounted = true
	if o.open {
		o.closeLocked()
	}
}

func (o *Overlay) closeLocked() {
	o.registry.close(o.kind, o.generation)
	o.open = false
	o.level = 0
}

func (o *Overlay) IsOpen() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open
}

// Level is the stacking rank held while open, 0 when closed.
func (o *Overlay) Level() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.level
}

func (o *Overlay) ZIndex() int {
	level := o.Level()
	if level <= 1 {
		return BaseZIndex
	}
	return BaseZIndex + level
}

func (o *Overlay) Backdrop() Backdrop {
	return Backdrop{Visible: o.IsOpen(), ZIndex: BackdropZIndex}
}

// ClickBackdrop dismisses the overlay through its hide callback. Clicks on a
// hidden backdrop are ignored.
func (o *Overlay) ClickBackdrop() {
	if !o.IsOpen() || o.onHide == nil {
		return
	}
	o.onHide()
}
