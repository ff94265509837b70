package core

import (
	"crypto/rand"
	"encoding/binary"
	"slices"
)

// Seed is the full 128-bit generator state as four 32-bit words.
type Seed [4]uint32

// zeroStateReplacement stands in for the all-zero state, which xorshift never leaves.
var zeroStateReplacement = Seed{0x12345678, 0x9abcdef0, 0x0fedcba9, 0x87654321}

// NewSeed draws a fresh seed from the operating system's entropy source.
func NewSeed() Seed {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand does not fail on supported platforms.
		panic(err)
	}
	var s Seed
	for i := range s {
		s[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	return s
}

// SeedFromInt64 expands a single integer (e.g. a --seed flag) into a full seed using
// splitmix64, so nearby integers still produce unrelated sequences.
func SeedFromInt64(v int64) Seed {
	x := uint64(v)
	next := func() uint64 {
		x += 0x9e3779b97f4a7c15
		z := x
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		return z ^ (z >> 31)
	}
	a, b := next(), next()
	return Seed{uint32(a >> 32), uint32(a), uint32(b >> 32), uint32(b)}
}

// Rng is a xorshift128 generator bound to an active color set.
// Its whole future output is determined by State(), which snapshots capture.
type Rng struct {
	state  Seed
	colors []Color
}

// NewRng returns a generator seeded with seed that draws from colors.
// An empty color set falls back to every hue.
func NewRng(seed Seed, colors []Color) *Rng {
	r := &Rng{}
	r.SetState(seed)
	r.SetColors(colors)
	return r
}

// State returns the current internal state.
func (r *Rng) State() Seed {
	return r.state
}

// SetState replaces the internal state.
func (r *Rng) SetState(s Seed) {
	if s == (Seed{}) {
		s = zeroStateReplacement
	}
	r.state = s
}

// Colors returns a copy of the active color set.
func (r *Rng) Colors() []Color {
	return slices.Clone(r.colors)
}

// SetColors replaces the active color set.
func (r *Rng) SetColors(colors []Color) {
	if len(colors) == 0 {
		colors = AllColors()
	}
	r.colors = slices.Clone(colors)
}

func (r *Rng) next() uint32 {
	t := r.state[3]
	s := r.state[0]
	r.state[3] = r.state[2]
	r.state[2] = r.state[1]
	r.state[1] = s
	t ^= t << 11
	t ^= t >> 8
	r.state[0] = t ^ s ^ (s >> 19)
	return r.state[0]
}

// Random returns a float in [0,1).
func (r *Rng) Random() float64 {
	return float64(r.next()) / (1 << 32)
}

// NextInt returns an integer in [0,max). max <= 0 yields 0 without consuming state.
func (r *Rng) NextInt(max int) int {
	if max <= 0 {
		return 0
	}
	return int(r.Random() * float64(max))
}

// NextColor draws uniformly from the active color set.
func (r *Rng) NextColor() Color {
	return r.colors[r.NextInt(len(r.colors))]
}

// NextColorFrom draws uniformly from colors.
func (r *Rng) NextColorFrom(colors []Color) Color {
	if len(colors) == 0 {
		return r.NextColor()
	}
	return colors[r.NextInt(len(colors))]
}

// NextPair draws two independent colors.
func (r *Rng) NextPair() Pair {
	pivot := r.NextColor()
	return Pair{pivot, r.NextColor()}
}

// InitialPairs draws the first two pairs of a game. The four cells never span more
// than three colors: when the last cell would add a fourth, it is redrawn from the
// colors of the first three cells.
func (r *Rng) InitialPairs() [2]Pair {
	first := r.NextPair()
	second := r.NextPair()

	var used []Color
	for _, c := range []Color{first[0], first[1], second[0]} {
		if !slices.Contains(used, c) {
			used = append(used, c)
		}
	}
	if len(used) == 3 && !slices.Contains(used, second[1]) {
		second[1] = r.NextColorFrom(used)
	}
	return [2]Pair{first, second}
}

// PickColors chooses n hues from the full palette using r and returns them in
// canonical order. n is clamped to [MinColors, MaxColors].
func PickColors(r *Rng, n int) []Color {
	n = ClampColors(n)
	palette := AllColors()
	for i := len(palette) - 1; i > 0; i-- {
		j := r.NextInt(i + 1)
		palette[i], palette[j] = palette[j], palette[i]
	}
	picked := palette[:n]
	slices.Sort(picked)
	return picked
}

// Bounds on the active color count.
const (
	MinColors     = 3
	MaxColors     = 5
	DefaultColors = 4
)

// ClampColors clamps n into [MinColors, MaxColors]; zero means DefaultColors.
func ClampColors(n int) int {
	switch {
	case n == 0:
		return DefaultColors
	case n < MinColors:
		return MinColors
	case n > MaxColors:
		return MaxColors
	}
	return n
}
