// Package bitcodec converts cipher output to strings of '0' and '1' and
// back again.
//
// Most algorithms write every byte of their UTF-8 output as 8 bits. Two
// algorithms already emit a small alphabet and get a denser encoding:
// Baconian output (A and B) takes 1 bit per symbol, and Polybius output
// (decimal digits) takes 3 bits per digit. Digits without a 3-bit form
// are written as 000.
//
// FromBinary is the inverse of ToBinary only up to what the matching
// cipher decoder needs. For Polybius it yields the decimal value of each
// 3-bit chunk, which the Polybius decoder then reads as its own binary
// digits.
package bitcodec

import (
	"strconv"
	"strings"

	"github.com/RowanDark/knitcipher/internal/cipher"
)

// Bits used for one character of ciphertext.
const (
	ByteWidth     = 8
	BaconianWidth = 1
	PolybiusWidth = 3
)

// Width reports how many bits ToBinary writes per ciphertext unit for the
// algorithm key.
func Width(key string) int {
	switch key {
	case cipher.KeyBaconian:
		return BaconianWidth
	case cipher.KeyPolybius:
		return PolybiusWidth
	default:
		return ByteWidth
	}
}

// ToBinary encodes text produced by the algorithm key. The result length
// is always a multiple of Width(key).
func ToBinary(text, key string) string {
	var b strings.Builder
	switch key {
	case cipher.KeyBaconian:
		b.Grow(len(text))
		for _, r := range text {
			if r == 'B' {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
	case cipher.KeyPolybius:
		b.Grow(len(text) * PolybiusWidth)
		// Polybius ciphertext is binary digits, so only '0' and '1' occur in
		// practice. Digits 0-7 fit one field; 8, 9 and anything else are
		// written as 000 rather than widening the field.
		for _, r := range text {
			d := 0
			if r >= '0' && r <= '7' {
				d = int(r - '0')
			}
			b.WriteString(pad(strconv.FormatInt(int64(d), 2), PolybiusWidth))
		}
	default:
		b.Grow(len(text) * ByteWidth)
		for i := 0; i < len(text); i++ {
			b.WriteString(pad(strconv.FormatUint(uint64(text[i]), 2), ByteWidth))
		}
	}
	return b.String()
}

// FromBinary decodes bits for the algorithm key. bits must contain only
// '0' and '1'; use Strip first on untrusted input. A trailing group
// shorter than 8 bits is dropped for byte-oriented algorithms, while a
// short Polybius group is read as it stands.
func FromBinary(bits, key string) string {
	var b strings.Builder
	switch key {
	case cipher.KeyBaconian:
		b.Grow(len(bits))
		for i := 0; i < len(bits); i++ {
			if bits[i] == '1' {
				b.WriteByte('B')
			} else {
				b.WriteByte('A')
			}
		}
	case cipher.KeyPolybius:
		for i := 0; i < len(bits); i += PolybiusWidth {
			n, err := strconv.ParseUint(bits[i:min(i+PolybiusWidth, len(bits))], 2, 8)
			if err != nil {
				continue
			}
			b.WriteString(strconv.FormatUint(n, 10))
		}
	default:
		b.Grow(len(bits) / ByteWidth)
		for i := 0; i+ByteWidth <= len(bits); i += ByteWidth {
			n, err := strconv.ParseUint(bits[i:i+ByteWidth], 2, 8)
			if err != nil {
				continue
			}
			b.WriteByte(byte(n))
		}
	}
	return b.String()
}

// Strip removes every character that is not '0' or '1'. Bits read off a
// chart by hand usually carry spaces and line breaks.
func Strip(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '0' || r == '1' {
			return r
		}
		return -1
	}, s)
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
