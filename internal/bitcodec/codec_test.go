package bitcodec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RowanDark/knitcipher/internal/bitcodec"
	"github.com/RowanDark/knitcipher/internal/cipher"
)

func TestToBinary(t *testing.T) {
	cases := []struct {
		name string
		text string
		key  string
		want string
	}{
		{"Byte", "Hi", cipher.KeyCaesar, "0100100001101001"},
		{"ByteMultibyte", "é", cipher.KeyBase64, "1100001110101001"},
		{"Baconian", "AABBA", cipher.KeyBaconian, "00110"},
		{"BaconianUnknown", "00000", cipher.KeyBaconian, "00000"},
		{"Polybius", "001001", cipher.KeyPolybius, "000000001000000001"},
		{"PolybiusNonDigit", "x79", cipher.KeyPolybius, "000111000"},
		{"PolybiusEightNine", "1897", cipher.KeyPolybius, "001000000111"},
		{"Empty", "", cipher.KeyAES, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, bitcodec.ToBinary(tc.text, tc.key))
		})
	}
}

func TestWidthInvariant(t *testing.T) {
	msg := "Knit one, purl one 世界"
	for _, alg := range cipher.Default().List() {
		bits := bitcodec.ToBinary(alg.Encode(msg), alg.Key)
		require.NotEmpty(t, bits, alg.Key)
		assert.Zero(t, len(bits)%bitcodec.Width(alg.Key), "%s: %d bits", alg.Key, len(bits))
		assert.Equal(t, bits, bitcodec.Strip(bits), alg.Key)
	}
}

func TestFromBinary(t *testing.T) {
	assert.Equal(t, "Hi", bitcodec.FromBinary("0100100001101001", cipher.KeyCaesar))
	assert.Equal(t, "H", bitcodec.FromBinary("010010000110", cipher.KeyCaesar), "short trailing byte is dropped")
	assert.Equal(t, "AABBA", bitcodec.FromBinary("00110", cipher.KeyBaconian))
	assert.Equal(t, "001001", bitcodec.FromBinary("000000001000000001", cipher.KeyPolybius))
	assert.Equal(t, "72", bitcodec.FromBinary("11110", cipher.KeyPolybius), "short trailing chunk is read as is")
}

func TestRoundTripThroughDecoder(t *testing.T) {
	msg := "KnitPurlRepeat"
	for _, alg := range cipher.Default().List() {
		t.Run(alg.Key, func(t *testing.T) {
			ct := alg.Encode(msg)
			back := bitcodec.FromBinary(bitcodec.ToBinary(ct, alg.Key), alg.Key)
			require.Equal(t, ct, back)
		})
	}
}

func TestStrip(t *testing.T) {
	assert.Equal(t, "0101", bitcodec.Strip(" 01\n0 1 "))
	assert.Equal(t, "", bitcodec.Strip("abc"))
	assert.Equal(t, "10", bitcodec.Strip("1,2,0"))
}
