// Package palette supplies fill colors for flame graph frames.
//
// The default [Hot] palette draws every frame's color independently from
// the traditional warm flame graph range (red 200-255, green 0-230,
// blue 1-55). [Hash] derives the color from the frame name instead, so the
// same function keeps its color across renders. [Fixed] paints every frame
// the same and exists for tests.
package palette

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/sotflame/pkg/errors"
)

// Palette names accepted by [ByName].
const (
	NameHot  = "hot"
	NameHash = "hash"
)

// Warm channel ranges, inclusive.
const (
	redMin, redMax     = 200, 255
	greenMin, greenMax = 0, 230
	blueMin, blueMax   = 1, 55
)

// Palette picks the fill color of one frame.
type Palette interface {
	Color(name string) colorful.Color
}

// Hot draws uniformly random warm colors. A Hot palette is not safe for
// concurrent use.
type Hot struct {
	rng *rand.Rand
}

// NewHot returns a Hot palette whose sequence of colors is fixed by seed.
func NewHot(seed uint64) *Hot {
	return &Hot{rng: rand.New(rand.NewPCG(seed, seed^0xdeadbeef))}
}

// NewRandomHot returns a Hot palette seeded from the runtime's entropy source.
func NewRandomHot() *Hot {
	return &Hot{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// Color ignores name and draws the next color.
func (h *Hot) Color(string) colorful.Color {
	return rgb255(
		between(h.rng.IntN, redMin, redMax),
		between(h.rng.IntN, greenMin, greenMax),
		between(h.rng.IntN, blueMin, blueMax),
	)
}

func between(intN func(int) int, lo, hi int) int {
	return lo + intN(hi-lo+1)
}

// Hash maps each frame name to a stable warm color. Seed shifts the whole
// mapping.
type Hash struct {
	Seed uint64
}

// Color returns the color for name.
func (p Hash) Color(name string) colorful.Color {
	h := fnv.New64a()
	h.Write([]byte(name))
	v := h.Sum64() ^ p.Seed

	// Spread the three channels over disjoint bit ranges of the hash.
	scale := func(bits uint64, lo, hi int) int {
		return lo + int(bits%uint64(hi-lo+1))
	}
	return rgb255(
		scale(v&0xffff, redMin, redMax),
		scale((v>>16)&0xffff, greenMin, greenMax),
		scale((v>>32)&0xffff, blueMin, blueMax),
	)
}

// Fixed paints every frame with C.
type Fixed struct {
	C colorful.Color
}

// Color returns C.
func (p Fixed) Color(string) colorful.Color { return p.C }

// ByName resolves a palette name. For the hot palette a zero seed means
// non-reproducible colors.
func ByName(name string, seed uint64) (Palette, error) {
	switch strings.ToLower(name) {
	case NameHot, "":
		if seed == 0 {
			return NewRandomHot(), nil
		}
		return NewHot(seed), nil
	case NameHash:
		return Hash{Seed: seed}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidPalette, "unknown palette %q (must be %q or %q)", name, NameHot, NameHash)
	}
}

// Deterministic reports whether the named palette produces the same colors
// for the same input and seed.
func Deterministic(name string, seed uint64) bool {
	return strings.EqualFold(name, NameHash) || seed != 0
}

// RGB formats c as an SVG rgb() color.
func RGB(c colorful.Color) string {
	r, g, b := c.RGB255()
	return fmt.Sprintf("rgb(%d,%d,%d)", r, g, b)
}

func rgb255(r, g, b int) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}
