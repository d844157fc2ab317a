package viewer

// Pointer turns absolute cursor positions into per-frame deltas. Feed it
// every frame, hovered or not, so the first drag after the cursor re-enters
// the viewport starts from where the cursor actually was.
type Pointer struct {
	x, y float32
	seen bool
}

// Move records the cursor position and returns the motion since the last
// call. The first call returns zero.
func (p *Pointer) Move(x, y float32) (dx, dy float32) {
	if p.seen {
		dx, dy = x-p.x, y-p.y
	}
	p.x, p.y, p.seen = x, y, true
	return dx, dy
}
