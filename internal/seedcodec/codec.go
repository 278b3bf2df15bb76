// Package seedcodec maps seeds to short URL-safe strings and back.
//
// A seed is written as the fewest big-endian bytes that hold it (at least
// one), base64url-encoded without padding. Encode(256) is "AQA".
package seedcodec

import (
	"encoding/base64"
	"errors"
	"strings"

	apperrors "github.com/kapu/player-generator-go/pkg/errors"
)

const maxBytes = 8

var (
	errEmpty    = errors.New("empty seed string")
	errOverflow = errors.New("seed does not fit in 64 bits")
	errPadding  = errors.New("seed has leading zero bytes")
	errEquals   = errors.New("seed must not carry base64 padding")
)

// strict rejects non-zero trailing bits, so every seed has exactly one
// accepted spelling.
var encoding = base64.URLEncoding.Strict()

// RequiredBytes returns the number of bytes needed to represent n; 0 needs one.
func RequiredBytes(n uint64) int {
	k := 1
	for n >= 256 {
		n >>= 8
		k++
	}
	return k
}

func Encode(n uint64) string {
	k := RequiredBytes(n)
	buf := make([]byte, k)
	for i := k - 1; i >= 0; i-- {
		buf[i] = byte(n)
		n >>= 8
	}
	return strings.TrimRight(encoding.EncodeToString(buf), "=")
}

// Decode reverses Encode. Only the canonical spelling produced by Encode is
// accepted; any other input is a MalformedSeedError.
func Decode(s string) (uint64, error) {
	if s == "" {
		return 0, apperrors.NewMalformedSeedError(s, errEmpty)
	}
	if strings.ContainsRune(s, '=') {
		return 0, apperrors.NewMalformedSeedError(s, errEquals)
	}

	padded := s
	if rem := len(padded) % 4; rem != 0 {
		padded += strings.Repeat("=", 4-rem)
	}

	raw, err := encoding.DecodeString(padded)
	if err != nil {
		return 0, apperrors.NewMalformedSeedError(s, err)
	}
	if len(raw) == 0 {
		return 0, apperrors.NewMalformedSeedError(s, errEmpty)
	}
	if len(raw) > maxBytes {
		return 0, apperrors.NewMalformedSeedError(s, errOverflow)
	}
	if len(raw) > 1 && raw[0] == 0 {
		return 0, apperrors.NewMalformedSeedError(s, errPadding)
	}

	var n uint64
	for _, b := range raw {
		n = n<<8 | uint64(b)
	}
	return n, nil
}
