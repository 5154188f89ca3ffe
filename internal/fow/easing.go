package fow

import "image"

// EasedTexture is the enhanced fog texture. New content is computed into
// Next(), promoted with PushNext, and Current() moves toward it one step
// per Ease call.
type EasedTexture struct {
	width, height int
	steps, step   int

	prev   []uint8 // Current() when the target was pushed
	curr   []uint8
	target []uint8
	next   []uint8
}

// Init allocates all buffers fully opaque.
func (t *EasedTexture) Init(width, height, steps int) {
	t.width, t.height = width, height
	t.steps = steps
	t.step = steps

	size := width * height
	for _, buf := range []*[]uint8{&t.prev, &t.curr, &t.target, &t.next} {
		*buf = make([]uint8, size)
		fill(*buf, 0xFF)
	}
}

// Clean releases the buffers.
func (t *EasedTexture) Clean() {
	*t = EasedTexture{}
}

func (t *EasedTexture) Width() int  { return t.width }
func (t *EasedTexture) Height() int { return t.height }

// Next is the buffer the pipeline writes the upcoming texture into.
func (t *EasedTexture) Next() []uint8 { return t.next }

// Current is the texture as it should be shown this tick.
func (t *EasedTexture) Current() []uint8 { return t.curr }

// Target is the last pushed texture Current() is easing toward.
func (t *EasedTexture) Target() []uint8 { return t.target }

// SetSteps changes the easing length. An easing in progress is finished
// immediately.
func (t *EasedTexture) SetSteps(steps int) {
	t.steps = steps
	if t.step != t.steps {
		copy(t.curr, t.target)
	}
	t.step = steps
}

// FullyEased reports whether Current() has reached the target.
func (t *EasedTexture) FullyEased() bool { return t.step >= t.steps }

// Ease advances Current() by one step. The last step copies the target so
// no rounding residue is left.
func (t *EasedTexture) Ease() {
	if t.step >= t.steps {
		return
	}
	t.step++
	if t.step == t.steps {
		copy(t.curr, t.target)
		return
	}
	for i, to := range t.target {
		from := int(t.prev[i])
		t.curr[i] = uint8(from + (int(to)-from)*t.step/t.steps)
	}
}

// PushNext makes the freshly computed texture the new target. With forced
// set, Current() jumps to it without easing.
func (t *EasedTexture) PushNext(forced bool) {
	t.target, t.next = t.next, t.target
	copy(t.prev, t.curr)
	t.step = 0
	if forced || t.steps == 0 {
		copy(t.curr, t.target)
		t.step = t.steps
	}
}

// DrawRegion copies the src rectangle of Current() into dst, a buffer with
// row length dstStride, with the top-left corner at (x0, y0).
func (t *EasedTexture) DrawRegion(dst []uint8, dstStride, x0, y0 int, src image.Rectangle) {
	clipped := src.Intersect(image.Rect(0, 0, t.width, t.height))
	x0 += clipped.Min.X - src.Min.X
	y0 += clipped.Min.Y - src.Min.Y
	w := clipped.Dx()
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		srcIndex := y*t.width + clipped.Min.X
		dstIndex := (y0+y-clipped.Min.Y)*dstStride + x0
		copy(dst[dstIndex:dstIndex+w], t.curr[srcIndex:srcIndex+w])
	}
}

func fill(buf []uint8, v uint8) {
	for i := range buf {
		buf[i] = v
	}
}
