// Package imagehash computes difference-hash fingerprints for duplicate photo
// detection. Hashing is deterministic and side-effect free, so callers may
// share one Hasher across goroutines.
package imagehash

import (
	"bytes"
	"fmt"
	"image"
	"math/bits"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const DefaultSize = 8

// Fingerprint is the fixed-width lowercase hex rendering of the dHash bits.
type Fingerprint string

// Distance returns the Hamming distance between two fingerprints of equal
// width, or -1 when they are not comparable. Intake dedup uses plain equality;
// distance is the seam for a looser similarity policy.
func (f Fingerprint) Distance(other Fingerprint) int {
	if len(f) != len(other) || len(f) == 0 {
		return -1
	}

	dist := 0
	for i := 0; i < len(f); i++ {
		a, okA := hexNibble(f[i])
		b, okB := hexNibble(other[i])
		if !okA || !okB {
			return -1
		}
		dist += bits.OnesCount8(a ^ b)
	}
	return dist
}

type Hasher struct {
	size int
}

// NewHasher caps size at 8 so the accumulated bits always fit one uint64.
func NewHasher(size int) *Hasher {
	if size <= 0 || size > DefaultSize {
		size = DefaultSize
	}
	return &Hasher{size: size}
}

// Hash decodes any registered raster format, downscales to a (size+1)×size
// grayscale grid and encodes the sign of each horizontal adjacent-pixel
// brightness difference as one bit.
func (h *Hasher) Hash(data []byte) (Fingerprint, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty image payload")
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	size := h.size
	grid := image.NewGray(image.Rect(0, 0, size+1, size))
	draw.ApproxBiLinear.Scale(grid, grid.Bounds(), src, src.Bounds(), draw.Src, nil)

	var val uint64
	bit := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if grid.GrayAt(x, y).Y > grid.GrayAt(x+1, y).Y {
				val |= 1 << bit
			}
			bit++
		}
	}

	width := size * size / 4
	return Fingerprint(fmt.Sprintf("%0*x", width, val)), nil
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}
