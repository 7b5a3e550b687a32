package codec

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 9, 61, 62, 63, 3843, 3844, 1<<31 - 1, 1 << 32, math.MaxInt64, math.MaxUint64}
	for _, v := range values {
		s := Encode(v)
		require.Len(t, s, DefaultWidth)

		got, ok := TryDecode(s)
		require.True(t, ok, "decode failed for %q", s)
		require.Equal(t, v, got)
		require.Equal(t, s, Encode(got), "re-encode must reproduce the string")
	}
}

func TestKnownEncodings(t *testing.T) {
	assert.Equal(t, "00000000000", Encode(0))
	assert.Equal(t, "00000000001", Encode(1))
	assert.Equal(t, "0000000000z", Encode(61))
	assert.Equal(t, "00000000010", Encode(62))
	assert.Equal(t, "LygHa16AHYF", Encode(math.MaxUint64))
}

func TestLexicographicOrderMatchesNumericOrder(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 10000; i++ {
		a, b := rnd.Uint64(), rnd.Uint64()
		sa, sb := Encode(a), Encode(b)
		switch {
		case a < b:
			require.True(t, sa < sb, "%d < %d but %q >= %q", a, b, sa, sb)
		case a > b:
			require.True(t, sa > sb)
		default:
			require.Equal(t, sa, sb)
		}
	}
}

func TestDecodeRejections(t *testing.T) {
	cases := []string{
		"",
		"0000000001",    // too short
		"000000000001",  // too long
		"0000000000+",   // out of alphabet
		"0000000000 ",   // space
		"0000000-001",   // sign character
		"LygHa16AHYG",   // MaxUint64 + 1
		"zzzzzzzzzzz",   // far above MaxUint64
		"00000000.01",   // point
	}
	for _, s := range cases {
		_, ok := TryDecode(s)
		assert.False(t, ok, "TryDecode(%q) must fail", s)
	}
}

func TestFlexibleDecode(t *testing.T) {
	v, ok := TryDecodeFlexible("123456789")
	require.True(t, ok)
	require.Equal(t, uint64(123456789), v)

	v, ok = TryDecodeFlexible("0")
	require.True(t, ok)
	require.Equal(t, uint64(0), v)

	v, ok = TryDecodeFlexible("18446744073709551615")
	require.True(t, ok)
	require.Equal(t, uint64(math.MaxUint64), v)

	// fixed-width input reads as base62, not decimal
	v, ok = TryDecodeFlexible("00000000010")
	require.True(t, ok)
	require.Equal(t, uint64(62), v)

	for _, s := range []string{
		"",
		"-1",
		"+1",
		"1.5",
		"1e9",
		"1_000",
		"1 000",
		"18446744073709551616", // MaxUint64 + 1
		"99999999999999999999999999",
	} {
		_, ok := TryDecodeFlexible(s)
		assert.False(t, ok, "TryDecodeFlexible(%q) must fail", s)
	}
}

func TestEncodeToBuffers(t *testing.T) {
	short := make([]byte, DefaultWidth-1)
	require.Error(t, Default().EncodeTo(short, 1))

	exact := make([]byte, DefaultWidth)
	require.NoError(t, Default().EncodeTo(exact, 62))
	require.Equal(t, "00000000010", string(exact))

	oversized := make([]byte, DefaultWidth+5)
	require.NoError(t, Default().EncodeTo(oversized, 62))
	require.Equal(t, "00000000010", string(oversized[:DefaultWidth]))

	v, ok := Default().TryDecodeBytes(exact)
	require.True(t, ok)
	require.Equal(t, uint64(62), v)
}

func TestCustomWidth(t *testing.T) {
	c, err := New(4)
	require.NoError(t, err)
	require.Equal(t, uint64(62*62*62*62-1), c.Max())

	s := c.Encode(c.Max())
	require.Equal(t, "zzzz", s)
	v, ok := c.TryDecode(s)
	require.True(t, ok)
	require.Equal(t, c.Max(), v)

	_, err = New(0)
	require.Error(t, err)

	require.Panics(t, func() { c.Encode(c.Max() + 1) })
}
