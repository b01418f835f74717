package cipher

import (
	"strings"
	"unicode"
)

// Default parameters bound by the built-in registry entries.
const (
	DefaultCaesarShift  = 3
	DefaultVigenereKey  = "KEY"
	DefaultAutokeyKey   = "KEY"
	substitutionPlain   = "abcdefghijklmnopqrstuvwxyz"
	substitutionMapping = "qwertyuiopasdfghjklzxcvbnm"
)

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isLetter(r rune) bool { return isUpper(r) || isLower(r) }

// mod26 normalises n into 0..25.
func mod26(n int) int {
	return ((n % 26) + 26) % 26
}

// shiftLetter rotates an ASCII letter by n within its own case range.
// Anything else is returned unchanged.
func shiftLetter(r rune, n int) rune {
	switch {
	case isUpper(r):
		return 'A' + rune(mod26(int(r-'A')+n))
	case isLower(r):
		return 'a' + rune(mod26(int(r-'a')+n))
	default:
		return r
	}
}

// keyShift is the shift contributed by one key character, measured from
// 'A'. Characters outside A-Z still map into 0..25.
func keyShift(r rune) int {
	return mod26(int(r) - 'A')
}

// CaesarEncode rotates every ASCII letter forward by shift positions.
func CaesarEncode(text string, shift int) string {
	return strings.Map(func(r rune) rune { return shiftLetter(r, shift) }, text)
}

// CaesarDecode undoes CaesarEncode with the same shift.
func CaesarDecode(text string, shift int) string {
	return CaesarEncode(text, 26-mod26(shift))
}

// ROT13 is Caesar with shift 13 and is its own inverse.
func ROT13(text string) string {
	return CaesarEncode(text, 13)
}

// Atbash reflects each ASCII letter across the middle of its alphabet.
func Atbash(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case isUpper(r):
			return 'Z' - (r - 'A')
		case isLower(r):
			return 'z' - (r - 'a')
		default:
			return r
		}
	}, text)
}

// vigenereKey keeps only the letters of key, uppercased.
func vigenereKey(key string) []rune {
	out := make([]rune, 0, len(key))
	for _, r := range strings.ToUpper(key) {
		if isUpper(r) {
			out = append(out, r)
		}
	}
	return out
}

func vigenere(text, key string, sign int) string {
	k := vigenereKey(key)
	if len(k) == 0 {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	ki := 0
	for _, r := range text {
		if isLetter(r) {
			r = shiftLetter(r, sign*keyShift(k[ki%len(k)]))
			ki++
		}
		b.WriteRune(r)
	}
	return b.String()
}

// VigenereEncode shifts each letter by the matching key letter. The key
// position only advances on letters. Non-letters in key are ignored and
// an empty key leaves the text unchanged.
func VigenereEncode(text, key string) string {
	return vigenere(text, key, 1)
}

// VigenereDecode undoes VigenereEncode with the same key.
func VigenereDecode(text, key string) string {
	return vigenere(text, key, -1)
}

// autokeyKey uppercases key. An empty key cannot be decoded, so it falls
// back to DefaultAutokeyKey.
func autokeyKey(key string) []rune {
	if key == "" {
		key = DefaultAutokeyKey
	}
	return []rune(strings.ToUpper(key))
}

// AutokeyEncode extends key with the uppercased plaintext and shifts each
// letter by the running key character. The running index only advances
// on letters, while the plaintext part of the key is indexed by position,
// so punctuation in the message contributes key material too.
func AutokeyEncode(text, key string) string {
	k := autokeyKey(key)
	src := []rune(text)
	stream := make([]rune, 0, len(k)+len(src))
	stream = append(stream, k...)
	for _, r := range src {
		stream = append(stream, unicode.ToUpper(r))
	}

	out := make([]rune, len(src))
	ki := 0
	for i, r := range src {
		if isLetter(r) {
			r = shiftLetter(r, keyShift(stream[ki]))
			ki++
		}
		out[i] = r
	}
	return string(out)
}

// AutokeyDecode rebuilds the key stream from the text it recovers: once
// the explicit key is used up, the shift comes from the already decoded
// character keyLength positions back.
func AutokeyDecode(text, key string) string {
	k := autokeyKey(key)
	src := []rune(text)
	out := make([]rune, len(src))
	ki := 0
	for i, r := range src {
		if isLetter(r) {
			var kc rune
			if ki < len(k) {
				kc = k[ki]
			} else {
				kc = unicode.ToUpper(out[ki-len(k)])
			}
			r = shiftLetter(r, -keyShift(kc))
			ki++
		}
		out[i] = r
	}
	return string(out)
}

var substitutionEncoder, substitutionDecoder = buildSubstitution(substitutionPlain, substitutionMapping)

func buildSubstitution(from, to string) (*strings.Replacer, *strings.Replacer) {
	enc := make([]string, 0, 4*len(from))
	dec := make([]string, 0, 4*len(from))
	for i := range from {
		f, t := from[i:i+1], to[i:i+1]
		enc = append(enc, f, t, strings.ToUpper(f), strings.ToUpper(t))
		dec = append(dec, t, f, strings.ToUpper(t), strings.ToUpper(f))
	}
	return strings.NewReplacer(enc...), strings.NewReplacer(dec...)
}

// SubstitutionEncode maps a-z onto the fixed alphabet
// "qwertyuiopasdfghjklzxcvbnm", preserving case.
func SubstitutionEncode(text string) string {
	return substitutionEncoder.Replace(text)
}

// SubstitutionDecode applies the inverse of SubstitutionEncode.
func SubstitutionDecode(text string) string {
	return substitutionDecoder.Replace(text)
}
