package fow

import "math"

// Blurer approximates a gaussian blur with repeated box blurs. The box
// radii are derived once from sigma and the iteration count.
type Blurer struct {
	width, height int
	sigma         float64
	iterations    int
	radii         []int
	scratch       []uint8
	colSums       []int
}

// Init sizes the scratch buffers for width x height textures and
// precomputes the box radii.
func (b *Blurer) Init(width, height int, sigma float64, iterations int) {
	b.width, b.height = width, height
	b.scratch = make([]uint8, width*height)
	b.colSums = make([]int, width)
	b.radii = boxesForGauss(sigma, iterations)
	b.sigma, b.iterations = sigma, iterations
}

// Clean releases the scratch buffers.
func (b *Blurer) Clean() {
	*b = Blurer{}
}

// PrecalcParameters recomputes the box radii if sigma or the iteration
// count changed.
func (b *Blurer) PrecalcParameters(sigma float64, iterations int) {
	if sigma == b.sigma && iterations == b.iterations && b.radii != nil {
		return
	}
	b.radii = boxesForGauss(sigma, iterations)
	b.sigma, b.iterations = sigma, iterations
}

// Radii returns the box radius of each pass.
func (b *Blurer) Radii() []int { return b.radii }

// Blur filters buf in place. buf must be width*height bytes.
func (b *Blurer) Blur(buf []uint8) {
	for _, r := range b.radii {
		if r == 0 {
			continue
		}
		b.boxBlurH(buf, b.scratch, r)
		b.boxBlurV(b.scratch, buf, r)
	}
}

// boxBlurH averages each texel with r neighbours on both sides of its row.
// Reads beyond the row repeat the edge texel.
func (b *Blurer) boxBlurH(src, dst []uint8, r int) {
	w := b.width
	window := 2*r + 1
	last := w - 1
	for row := 0; row < b.height; row++ {
		base := row * w
		sum := 0
		for k := -r; k <= r; k++ {
			sum += int(src[base+clampIndex(k, last)])
		}
		for x := 0; x < w; x++ {
			dst[base+x] = uint8((sum + window/2) / window)
			sum += int(src[base+clampIndex(x+r+1, last)]) - int(src[base+clampIndex(x-r, last)])
		}
	}
}

// boxBlurV is boxBlurH along columns, walking rows to stay cache friendly.
func (b *Blurer) boxBlurV(src, dst []uint8, r int) {
	w := b.width
	window := 2*r + 1
	last := b.height - 1
	sums := b.colSums
	clear(sums)
	for k := -r; k <= r; k++ {
		rowBase := clampIndex(k, last) * w
		for x := 0; x < w; x++ {
			sums[x] += int(src[rowBase+x])
		}
	}
	for y := 0; y < b.height; y++ {
		base := y * w
		addBase := clampIndex(y+r+1, last) * w
		subBase := clampIndex(y-r, last) * w
		for x := 0; x < w; x++ {
			dst[base+x] = uint8((sums[x] + window/2) / window)
			sums[x] += int(src[addBase+x]) - int(src[subBase+x])
		}
	}
}

func clampIndex(i, last int) int {
	if i < 0 {
		return 0
	}
	if i > last {
		return last
	}
	return i
}

// boxesForGauss returns the radii of n box passes whose combination
// approximates a gaussian with the given sigma.
func boxesForGauss(sigma float64, n int) []int {
	if sigma <= 0 || n <= 0 {
		return []int{}
	}
	variance := 12 * sigma * sigma
	wIdeal := math.Sqrt(variance/float64(n) + 1)
	wl := int(math.Floor(wIdeal))
	if wl%2 == 0 {
		wl--
	}
	wu := wl + 2

	mIdeal := (variance - float64(n*wl*wl) - float64(4*n*wl) - float64(3*n)) / float64(-4*wl-4)
	m := int(math.Round(mIdeal))

	radii := make([]int, n)
	for i := range radii {
		size := wu
		if i < m {
			size = wl
		}
		radii[i] = (size - 1) / 2
	}
	return radii
}
