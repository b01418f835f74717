package cipher

import (
	"crypto/rc4"
	"math/bits"
)

// Default passphrases bound by the built-in modern cipher entries.
const (
	DefaultAESKey      = "KnitSecretKey128"
	DefaultDESKey      = "DESKEY56"
	DefaultBlowfishKey = "BlowfishKey"
	DefaultChaCha20Key = "ChaCha20SecretKey"
	DefaultRC4Key      = "RC4Key"
)

const aesRounds = 3

// byteMixer transforms raw bytes in place under a passphrase.
type byteMixer func(data, key []byte)

// mixEncode runs mix over the UTF-8 bytes of text and Base64-encodes the
// result.
func mixEncode(text, key, fallback string, mix byteMixer) string {
	data := []byte(text)
	mix(data, passphrase(key, fallback))
	return Base64Encode(string(data))
}

// mixDecode Base64-decodes text, runs unmix over the bytes and returns
// them as text. Input that is not Base64 yields DecryptionFailed.
func mixDecode(text, key, fallback string, unmix byteMixer) string {
	data, ok := decodeBase64(text)
	if !ok {
		return DecryptionFailed
	}
	unmix(data, passphrase(key, fallback))
	return toText(data)
}

func passphrase(key, fallback string) []byte {
	if key == "" {
		key = fallback
	}
	return []byte(key)
}

// invertAffine finds x in 0..255 with (x*mul+add) mod 256 == y by trying
// every value. mul must be odd for a match to exist.
func invertAffine(y byte, mul, add int) byte {
	for x := 0; x < 256; x++ {
		if byte((x*mul+add)%256) == y {
			return byte(x)
		}
	}
	return 0
}

func aesMix(data, key []byte) {
	for i, b := range data {
		for r := 0; r < aesRounds; r++ {
			b = byte((int(b)*7 + 13) % 256)
			b ^= key[(i+r)%len(key)]
			b = bits.RotateLeft8(b, 3)
		}
		data[i] = b
	}
}

func aesUnmix(data, key []byte) {
	for i, b := range data {
		for r := aesRounds - 1; r >= 0; r-- {
			b = bits.RotateLeft8(b, -3)
			b ^= key[(i+r)%len(key)]
			b = invertAffine(b, 7, 13)
		}
		data[i] = b
	}
}

// AESEncode is a three-round byte mixer named after AES. Each round is a
// multiply-add substitution, a key XOR and a 3-bit rotation.
func AESEncode(text, key string) string { return mixEncode(text, key, DefaultAESKey, aesMix) }

// AESDecode reverses AESEncode.
func AESDecode(text, key string) string { return mixDecode(text, key, DefaultAESKey, aesUnmix) }

// desMix chains every output byte into the next one, starting from the
// first key byte.
func desMix(data, key []byte) {
	prev := key[0]
	for i, b := range data {
		b = bits.RotateLeft8(b, 4)
		b = byte((int(b)*5 + 11) % 256)
		b ^= key[i%len(key)]
		b ^= prev
		b = bits.RotateLeft8(b, 2)
		data[i] = b
		prev = b
	}
}

func desUnmix(data, key []byte) {
	prev := key[0]
	for i, c := range data {
		b := bits.RotateLeft8(c, -2)
		b ^= prev
		b ^= key[i%len(key)]
		b = invertAffine(b, 5, 11)
		b = bits.RotateLeft8(b, -4)
		data[i] = b
		prev = c
	}
}

// DESEncode is a chained byte mixer named after DES.
func DESEncode(text, key string) string { return mixEncode(text, key, DefaultDESKey, desMix) }

// DESDecode reverses DESEncode.
func DESDecode(text, key string) string { return mixDecode(text, key, DefaultDESKey, desUnmix) }

// nibbleBox is a key-scheduled permutation of 0..15.
func nibbleBox(key []byte, salt byte) [16]byte {
	var s [16]byte
	for i := range s {
		s[i] = byte(i)
	}
	j := 0
	for i := range s {
		j = (j + int(s[i]) + int(key[i%len(key)]^salt)) & 15
		s[i], s[j] = s[j], s[i]
	}
	return s
}

func invertBox(s [16]byte) [16]byte {
	var inv [16]byte
	for i, v := range s {
		inv[v] = byte(i)
	}
	return inv
}

func blowfishBoxes(key []byte) (hi, lo [16]byte) {
	return nibbleBox(key, 0), nibbleBox(key, 0x5A)
}

// blowfishMix substitutes each nibble through its own box after XOR with
// the opposite nibble of the key byte, then swaps the halves.
func blowfishMix(data, key []byte) {
	s1, s2 := blowfishBoxes(key)
	for i, b := range data {
		k := key[i%len(key)]
		hi := s1[(b>>4)^(k&15)]
		lo := s2[(b&15)^(k>>4)]
		data[i] = lo<<4 | hi
	}
}

func blowfishUnmix(data, key []byte) {
	s1, s2 := blowfishBoxes(key)
	inv1, inv2 := invertBox(s1), invertBox(s2)
	for i, c := range data {
		k := key[i%len(key)]
		hi := inv1[c&15] ^ (k & 15)
		lo := inv2[c>>4] ^ (k >> 4)
		data[i] = hi<<4 | lo
	}
}

// BlowfishEncode is a nibble substitution cipher named after Blowfish.
func BlowfishEncode(text, key string) string {
	return mixEncode(text, key, DefaultBlowfishKey, blowfishMix)
}

// BlowfishDecode reverses BlowfishEncode.
func BlowfishDecode(text, key string) string {
	return mixDecode(text, key, DefaultBlowfishKey, blowfishUnmix)
}

// chachaXOR XORs data with a keystream from a four-byte add-rotate-xor
// state seeded with the first key bytes. It is its own inverse.
func chachaXOR(data, key []byte) {
	var st [4]byte
	for i := range st {
		st[i] = key[i%len(key)]
	}
	a, b, c, d := st[0], st[1], st[2], st[3]
	for i := range data {
		a += b
		d = bits.RotateLeft8(d^a, 4)
		c += d
		b = bits.RotateLeft8(b^c, 3)
		a += b
		d = bits.RotateLeft8(d^a, 2)
		c += d
		b = bits.RotateLeft8(b^c, 1)
		data[i] ^= a ^ b ^ c ^ d ^ byte(i) ^ key[i%len(key)]
	}
}

// ChaCha20Encode is an add-rotate-xor stream cipher named after ChaCha20.
func ChaCha20Encode(text, key string) string {
	return mixEncode(text, key, DefaultChaCha20Key, chachaXOR)
}

// ChaCha20Decode reverses ChaCha20Encode.
func ChaCha20Decode(text, key string) string {
	return mixDecode(text, key, DefaultChaCha20Key, chachaXOR)
}

// rc4XOR applies the RC4 keystream. Keys longer than 256 bytes are cut to
// 256, which is all the key schedule reads.
func rc4XOR(data, key []byte) {
	if len(key) > 256 {
		key = key[:256]
	}
	c, err := rc4.NewCipher(key)
	if err != nil {
		return
	}
	c.XORKeyStream(data, data)
}

// RC4Encode encrypts with RC4 and Base64-encodes the result.
func RC4Encode(text, key string) string { return mixEncode(text, key, DefaultRC4Key, rc4XOR) }

// RC4Decode reverses RC4Encode.
func RC4Decode(text, key string) string { return mixDecode(text, key, DefaultRC4Key, rc4XOR) }
