package focus

// ScrollMargin is the gap kept between a newly focused element and the edge
// of its scroll container.
const ScrollMargin = 20.0

// Viewport is the visible window of a scrollable group. Top and Height are
// in layout pixels; Offset is how far the content is scrolled.
type Viewport struct {
	Top    float64
	Height float64
	Offset float64
}

// Visible reports whether r lies completely inside the viewport.
func (v Viewport) Visible(r Rect) bool {
	top := r.Y - v.Offset
	return top >= v.Top && top+r.H <= v.Top+v.Height
}

// ScrollIntoView adjusts the offset so that r is visible, leaving
// ScrollMargin of space on the side it scrolled towards. Elements outside
// the viewport remain focusable; scrolling is the follow-up once focus has
// moved.
func (v Viewport) ScrollIntoView(r Rect) Viewport {
	if v.Height <= 0 {
		return v
	}

	top := r.Y - v.Offset
	bottom := top + r.H

	switch {
	case top < v.Top:
		v.Offset -= v.Top - top + ScrollMargin
	case bottom > v.Top+v.Height:
		v.Offset += bottom - (v.Top + v.Height) + ScrollMargin
	}

	if v.Offset < 0 {
		v.Offset = 0
	}
	return v
}
