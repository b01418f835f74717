package cipher

import (
	"encoding/base64"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultXORKey is the key bound by the built-in XOR entry.
const DefaultXORKey = "SECRET"

// Base64Encode encodes the UTF-8 bytes of text with the standard padded
// alphabet.
func Base64Encode(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// Base64Decode reverses Base64Encode. Whitespace is ignored and missing
// padding is tolerated; anything else that does not parse yields
// DecryptionFailed.
func Base64Decode(text string) string {
	raw, ok := decodeBase64(text)
	if !ok {
		return DecryptionFailed
	}
	return toText(raw)
}

func decodeBase64(text string) ([]byte, bool) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	if raw, err := base64.StdEncoding.DecodeString(clean); err == nil {
		return raw, true
	}
	if raw, err := base64.RawStdEncoding.DecodeString(clean); err == nil {
		return raw, true
	}
	return nil, false
}

// toText converts decoded bytes to a string, replacing invalid UTF-8.
func toText(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
}

func xorRunes(text, key string) string {
	k := []rune(key)
	src := []rune(text)
	for i, r := range src {
		src[i] = r ^ k[i%len(k)]
	}
	return string(src)
}

// XOREncode XORs every character of text with the repeating key and
// Base64-encodes the UTF-8 form of the result. An empty key falls back to
// DefaultXORKey.
func XOREncode(text, key string) string {
	if key == "" {
		key = DefaultXORKey
	}
	return Base64Encode(xorRunes(text, key))
}

// XORDecode reverses XOREncode. Input that is not Base64 yields
// DecryptionFailed.
func XORDecode(text, key string) string {
	if key == "" {
		key = DefaultXORKey
	}
	raw, ok := decodeBase64(text)
	if !ok {
		return DecryptionFailed
	}
	return xorRunes(toText(raw), key)
}
