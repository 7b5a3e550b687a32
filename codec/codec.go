// Package codec maps non-negative integers to fixed-width base62 strings
// whose lexicographic order matches the numeric order of the values.
package codec

import (
	"fmt"
	"math"
)

// Alphabet lists the 62 symbols in ascending byte order, so plain string
// comparison of encoded values agrees with numeric comparison.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const base = 62

// DefaultWidth is the smallest fixed width that covers all of uint64
// (62^11 > 2^64).
const DefaultWidth = 11

var decodeMap [256]int8

func init() {
	for i := range decodeMap {
		decodeMap[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		decodeMap[Alphabet[i]] = int8(i)
	}
}

// Codec encodes values up to Max into exactly Width symbols.
type Codec struct {
	width int
	max   uint64
}

// New returns a codec of the given fixed width. Values above 62^width-1
// (capped at MaxUint64) are rejected by Encode.
func New(width int) (*Codec, error) {
	if width < 1 {
		return nil, fmt.Errorf("codec: width %d must be at least 1", width)
	}
	max := uint64(math.MaxUint64)
	if width < DefaultWidth {
		max = 0
		for i := 0; i < width; i++ {
			max = max*base + (base - 1)
		}
	}
	return &Codec{width: width, max: max}, nil
}

var std = &Codec{width: DefaultWidth, max: math.MaxUint64}

// Default returns the width-11 codec covering the full uint64 domain.
func Default() *Codec {
	return std
}

// Width returns the fixed encoded length.
func (c *Codec) Width() int { return c.width }

// Max returns the largest encodable value.
func (c *Codec) Max() uint64 { return c.max }

// Encode returns the fixed-width representation of v. It panics when v is
// above Max; the caller owns the domain bound.
func (c *Codec) Encode(v uint64) string {
	return string(c.AppendEncode(make([]byte, 0, c.width), v))
}

// AppendEncode appends the encoded form of v to dst and returns the
// extended slice.
func (c *Codec) AppendEncode(dst []byte, v uint64) []byte {
	if v > c.max {
		panic(fmt.Sprintf("codec: value %d above maximum %d for width %d", v, c.max, c.width))
	}
	n := len(dst)
	for i := 0; i < c.width; i++ {
		dst = append(dst, '0')
	}
	for i := c.width - 1; i >= 0; i-- {
		dst[n+i] = Alphabet[v%base]
		v /= base
	}
	return dst
}

// EncodeTo writes the encoded form of v into dst, left-aligned. Oversized
// destinations are fine; only a destination shorter than Width is an error.
func (c *Codec) EncodeTo(dst []byte, v uint64) error {
	if len(dst) < c.width {
		return fmt.Errorf("codec: destination length %d below required width %d", len(dst), c.width)
	}
	c.AppendEncode(dst[:0], v)
	return nil
}

// TryDecode parses an exactly Width-long base62 string. It reports false for
// a wrong length, a byte outside the alphabet, or a value above Max.
func (c *Codec) TryDecode(s string) (uint64, bool) {
	return c.decode(s)
}

// TryDecodeBytes is TryDecode over a raw byte sequence.
func (c *Codec) TryDecodeBytes(b []byte) (uint64, bool) {
	return c.decode(string(b))
}

func (c *Codec) decode(s string) (uint64, bool) {
	if len(s) != c.width {
		return 0, false
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		d := decodeMap[s[i]]
		if d < 0 {
			return 0, false
		}
		if v > (c.max-uint64(d))/base {
			return 0, false
		}
		v = v*base + uint64(d)
	}
	return v, true
}

// TryDecodeFlexible accepts the fixed-width base62 form and, at any other
// length, the plain decimal form: digits only, no sign, point, exponent or
// separators.
func (c *Codec) TryDecodeFlexible(s string) (uint64, bool) {
	if len(s) == c.width {
		return c.decode(s)
	}
	return c.decodeDecimal(s)
}

// TryDecodeFlexibleBytes is TryDecodeFlexible over a raw byte sequence.
func (c *Codec) TryDecodeFlexibleBytes(b []byte) (uint64, bool) {
	return c.TryDecodeFlexible(string(b))
}

func (c *Codec) decodeDecimal(s string) (uint64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch < '0' || ch > '9' {
			return 0, false
		}
		d := uint64(ch - '0')
		if v > (c.max-d)/10 {
			return 0, false
		}
		v = v*10 + d
	}
	return v, true
}

// Encode is Default().Encode.
func Encode(v uint64) string { return std.Encode(v) }

// TryDecode is Default().TryDecode.
func TryDecode(s string) (uint64, bool) { return std.TryDecode(s) }

// TryDecodeFlexible is Default().TryDecodeFlexible.
func TryDecodeFlexible(s string) (uint64, bool) { return std.TryDecodeFlexible(s) }
