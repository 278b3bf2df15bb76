package seedcodec

import (
	"math"
	"math/rand/v2"
	"testing"

	apperrors "github.com/kapu/player-generator-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredBytes(t *testing.T) {
	cases := map[uint64]int{
		0:              1,
		255:            1,
		256:            2,
		65535:          2,
		65536:          3,
		4_294_967_295:  4,
		4_294_967_296:  5,
		math.MaxUint64: 8,
	}
	for n, want := range cases {
		assert.Equal(t, want, RequiredBytes(n), "RequiredBytes(%d)", n)
	}
}

func TestEncodeKnownValues(t *testing.T) {
	assert.Equal(t, "AA", Encode(0))
	assert.Equal(t, "_w", Encode(255))
	assert.Equal(t, "AQA", Encode(256))
}

func TestDecodeKnownValues(t *testing.T) {
	n, err := Decode("AQA")
	require.NoError(t, err)
	assert.Equal(t, uint64(256), n)

	n, err = Decode("AA")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)
}

func TestRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 255, 256, 65535, 65536, 1_000_000, 999_999_999,
		4_294_967_296, 1 << 56, math.MaxInt64, math.MaxUint64}

	r := rand.New(rand.NewPCG(99, 0))
	for i := 0; i < 500; i++ {
		values = append(values, r.Uint64()>>uint(r.IntN(64)))
	}

	for _, n := range values {
		encoded := Encode(n)
		assert.NotContains(t, encoded, "=")
		decoded, err := Decode(encoded)
		require.NoError(t, err, "decode %q", encoded)
		assert.Equal(t, n, decoded)
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, input := range []string{"", "A", "!!", "a b", "AAAAAAAAAAAAAA", "AB", "AAE", "AA==", "AA=", "AQA=", "A=A"} {
		_, err := Decode(input)
		require.Error(t, err, "input %q", input)
		assert.ErrorIs(t, err, apperrors.ErrMalformedSeed)
		assert.Equal(t, 404, apperrors.StatusCode(err))
	}
}
