// Package focus implements D-PAD focus navigation over positioned elements.
//
// A screen registers its focusable elements, in document order, with their
// bounding boxes in layout pixels. When an arrow key arrives the Registry
// asks ResolveNext for the nearest element lying in that direction:
//
//	next, ok := focus.ResolveNext(current, focus.Down, registry.Elements())
//
// A candidate lies "below" when its center is more than 10px lower than the
// current center and its horizontal offset stays under twice its own width;
// the other directions follow the same rule with the axes swapped. The
// nearest valid candidate wins, and ties go to the one registered first.
//
// Scrolling is a follow-up rather than a precondition: elements outside the
// visible window can receive focus, after which the owner of the screen
// calls Viewport.ScrollIntoView.
package focus
