package brush

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// Fill flood fills the region of unpainted pixels 4-connected to seed with
// col and returns the number of recolored pixels. Every recolored pixel
// widens the tracker, when one is given.
//
// A seed outside of the canvas or on an already painted pixel fills nothing.
func Fill(c *Canvas, seed image.Point, col color.NRGBA, t *Tracker) int {
	if !seed.In(c.img.Rect) || c.Painted(seed.X, seed.Y) {
		return 0
	}
	return fill(c, seed, col, t)
}

// FillStrict is like Fill but fails with ErrOutOfBoundsSeed
// for a seed outside of the canvas.
func FillStrict(c *Canvas, seed image.Point, col color.NRGBA, t *Tracker) (int, error) {
	if !seed.In(c.img.Rect) {
		return 0, errors.Wrapf(ErrOutOfBoundsSeed, "seed %v, canvas %v", seed, c.img.Rect)
	}
	return Fill(c, seed, col, t), nil
}

// fill runs a breadth first traversal from seed. Pixels are marked as
// visited when enqueued, so that every pixel enters the queue at most once
// and the queue never holds more than the current frontier.
func fill(c *Canvas, seed image.Point, col color.NRGBA, t *Tracker) int {
	var (
		img     = c.img
		w, h    = img.Rect.Dx(), img.Rect.Dy()
		visited = newBitset(w * h)
		queue   = make([]int, 0, 64)
		head    int
		count   int
	)

	unpainted := func(i int) bool {
		return img.Pix[i*4+1] == 0 || img.Pix[i*4+3] == 0
	}
	push := func(i int) {
		if !visited.test(i) && unpainted(i) {
			visited.set(i)
			queue = append(queue, i)
		}
	}

	push(seed.Y*w + seed.X)
	for head < len(queue) {
		i := queue[head]
		head++
		// Reclaim the consumed part of the queue once it dominates the slice.
		if head > 1024 && head*2 > len(queue) {
			n := copy(queue, queue[head:])
			queue = queue[:n]
			head = 0
		}

		x, y := i%w, i/w
		p := i * 4
		img.Pix[p+0] = col.R
		img.Pix[p+1] = col.G
		img.Pix[p+2] = col.B
		img.Pix[p+3] = col.A
		count++
		if t != nil {
			t.ExpandPoint(x, y)
		}

		if x > 0 {
			push(i - 1)
		}
		if x < w-1 {
			push(i + 1)
		}
		if y > 0 {
			push(i - w)
		}
		if y < h-1 {
			push(i + w)
		}
	}

	Logger().Debug("flood fill", "seed", seed, "pixels", count)
	return count
}

// bitset is a fixed size set of non-negative integers.
type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) set(i int) {
	b[i>>6] |= 1 << (uint(i) & 63)
}

func (b bitset) test(i int) bool {
	return b[i>>6]&(1<<(uint(i)&63)) != 0
}
