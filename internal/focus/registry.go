package focus

// Registry holds the focusable elements of the active screen in document
// order. It is rebuilt whenever the screen's content changes.
type Registry struct {
	elements []Element
	index    map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register appends an element. Registering an ID twice replaces the earlier
// element in place so document order is preserved.
func (r *Registry) Register(el Element) {
	if i, ok := r.index[el.ID]; ok {
		r.elements[i] = el
		return
	}
	r.index[el.ID] = len(r.elements)
	r.elements = append(r.elements, el)
}

// Reset deregisters everything.
func (r *Registry) Reset() {
	r.elements = r.elements[:0]
	r.index = make(map[string]int)
}

// Len returns the number of registered elements.
func (r *Registry) Len() int {
	return len(r.elements)
}

// Lookup returns the element with the given ID.
func (r *Registry) Lookup(id string) (Element, bool) {
	i, ok := r.index[id]
	if !ok {
		return Element{}, false
	}
	return r.elements[i], true
}

// Elements returns the registered elements in document order. The slice
// must not be modified.
func (r *Registry) Elements() []Element {
	return r.elements
}

// First returns the first enabled element.
func (r *Registry) First() (Element, bool) {
	for _, el := range r.elements {
		if !el.Disabled {
			return el, true
		}
	}
	return Element{}, false
}

// FirstInGroup returns the first enabled element of a group.
func (r *Registry) FirstInGroup(group string) (Element, bool) {
	for _, el := range r.elements {
		if el.Group == group && !el.Disabled {
			return el, true
		}
	}
	return Element{}, false
}

// InGroup returns the enabled elements of a group in document order.
func (r *Registry) InGroup(group string) []Element {
	var out []Element
	for _, el := range r.elements {
		if el.Group == group && !el.Disabled {
			out = append(out, el)
		}
	}
	return out
}

// Move computes the focus target for a D-PAD press. With nothing focused
// (or a stale focus id) it falls back to the first enabled element. The
// returned bool reports whether focus changed.
func (r *Registry) Move(focusedID string, dir Direction) (string, bool) {
	current, ok := r.Lookup(focusedID)
	if !ok || current.Disabled {
		first, ok := r.First()
		if !ok {
			return focusedID, false
		}
		return first.ID, first.ID != focusedID
	}

	next, ok := ResolveNext(current, dir, r.elements)
	if !ok {
		return focusedID, false
	}
	return next.ID, true
}
