package focus

import "testing"

func newTestRegistry() *Registry {
	r := NewRegistry()
	r.Register(Element{ID: "nav:home", Bounds: Rect{0, 0, 100, 40}, Group: "nav"})
	r.Register(Element{ID: "cat:1", Bounds: Rect{0, 100, 300, 50}, Group: "categories"})
	r.Register(Element{ID: "cat:2", Bounds: Rect{0, 160, 300, 50}, Group: "categories"})
	r.Register(Element{ID: "ch:10", Bounds: Rect{320, 100, 400, 50}, Group: "channels"})
	return r
}

func TestRegistry_MoveWithoutFocusFallsBackToFirst(t *testing.T) {
	r := newTestRegistry()

	got, changed := r.Move("", Down)
	if got != "nav:home" || !changed {
		t.Errorf("Move(\"\", Down) = %q, %v; want nav:home, true", got, changed)
	}

	got, changed = r.Move("gone", Right)
	if got != "nav:home" || !changed {
		t.Errorf("Move(stale, Right) = %q, %v; want nav:home, true", got, changed)
	}
}

func TestRegistry_MoveFollowsGeometry(t *testing.T) {
	r := newTestRegistry()

	got, changed := r.Move("cat:1", Down)
	if got != "cat:2" || !changed {
		t.Errorf("Move(cat:1, Down) = %q, %v; want cat:2", got, changed)
	}

	got, _ = r.Move("cat:1", Right)
	if got != "ch:10" {
		t.Errorf("Move(cat:1, Right) = %q, want ch:10", got)
	}
}

func TestRegistry_MoveWithNoCandidateKeepsFocus(t *testing.T) {
	r := newTestRegistry()

	got, changed := r.Move("cat:2", Down)
	if got != "cat:2" || changed {
		t.Errorf("Move(cat:2, Down) = %q, %v; want cat:2, false", got, changed)
	}
}

func TestRegistry_SingleElementNeverMoves(t *testing.T) {
	r := NewRegistry()
	r.Register(Element{ID: "only", Bounds: Rect{0, 0, 10, 10}})

	for _, d := range []Direction{Up, Down, Left, Right} {
		if got, changed := r.Move("only", d); got != "only" || changed {
			t.Errorf("Move(only, %v) = %q, %v", d, got, changed)
		}
	}
}

func TestRegistry_EmptyRegistry(t *testing.T) {
	r := NewRegistry()
	if got, changed := r.Move("", Up); got != "" || changed {
		t.Errorf("Move on empty registry = %q, %v", got, changed)
	}
}

func TestRegistry_RegisterReplacesInPlace(t *testing.T) {
	r := newTestRegistry()
	r.Register(Element{ID: "nav:home", Bounds: Rect{0, 0, 100, 40}, Disabled: true, Group: "nav"})

	if r.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", r.Len())
	}
	first, _ := r.First()
	if first.ID != "cat:1" {
		t.Errorf("First() = %q, want cat:1 (nav:home disabled)", first.ID)
	}
}

func TestRegistry_Groups(t *testing.T) {
	r := newTestRegistry()

	el, ok := r.FirstInGroup("channels")
	if !ok || el.ID != "ch:10" {
		t.Errorf("FirstInGroup(channels) = %q, %v", el.ID, ok)
	}
	if n := len(r.InGroup("categories")); n != 2 {
		t.Errorf("InGroup(categories) = %d elements, want 2", n)
	}
	if _, ok := r.FirstInGroup("player"); ok {
		t.Error("FirstInGroup(player) should be empty")
	}

	r.Reset()
	if r.Len() != 0 {
		t.Errorf("Len() after Reset = %d", r.Len())
	}
	if _, ok := r.Lookup("cat:1"); ok {
		t.Error("Lookup after Reset should fail")
	}
}

func TestViewport_ScrollIntoView(t *testing.T) {
	v := Viewport{Top: 100, Height: 300}

	// Below the window: scroll down so the bottom edge clears by the margin.
	v = v.ScrollIntoView(Rect{0, 420, 100, 50})
	if v.Offset != 90 {
		t.Errorf("Offset after scrolling down = %v, want 90", v.Offset)
	}
	if !v.Visible(Rect{0, 420, 100, 50}) {
		t.Error("element should be visible after ScrollIntoView")
	}

	// Above the window again: scroll back up, clamped at zero.
	v = v.ScrollIntoView(Rect{0, 100, 100, 50})
	if v.Offset != 0 {
		t.Errorf("Offset after scrolling up = %v, want 0", v.Offset)
	}

	// Already visible: untouched.
	before := v
	if v = v.ScrollIntoView(Rect{0, 150, 100, 50}); v != before {
		t.Errorf("ScrollIntoView on visible element changed viewport: %+v", v)
	}
}
