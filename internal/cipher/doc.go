// Package cipher provides the text transformation algorithms behind knitted
// cipher charts: classical ciphers, encodings, and toy "modern" ciphers.
//
// # Overview
//
// Every algorithm is a pair of pure functions from string to string. The
// pairs are collected in a Registry keyed by a stable algorithm key
// ("caesar", "rc4", ...) and a stable short code ("C1".."C18") that is
// printed next to a chart so it can be decrypted later.
//
// # Quick Start
//
//	alg, _ := cipher.Default().Get(cipher.KeyVigenere)
//	ct := alg.Encode("Hello, World!")   // "Rijvs, Uyvjn!"
//	pt := alg.Decode(ct)                // "Hello, World!"
//
//	alg, _ = cipher.Default().FindByCode("c10")
//	alg.Name                            // "Playfair Cipher"
//
// # Pipelines
//
// Algorithms can be chained by key. Decoding walks the chain backwards:
//
//	p := cipher.Pipeline{Keys: []string{cipher.KeyCaesar, cipher.KeyBase64}}
//	out, _ := p.Encode(cipher.Default(), "attack at dawn")
//	in, _ := p.Decode(cipher.Default(), out)
//
// # Available Algorithms
//
// Letter substitution:
//   - caesar (C1), rot13 (C4), atbash (C5), substitution (C8)
//   - vigenere (C3), autokey (C13)
//
// Transposition:
//   - reverse (C6), railfence (C9)
//
// Polygraphic and alphabet recoding:
//   - playfair (C10) - lossy: case, spacing and punctuation are dropped
//   - baconian (C11) - each letter becomes five A/B symbols
//   - polybius (C12) - each letter becomes six binary digits
//
// Encodings:
//   - base64 (C7), xor (C2)
//
// Toy modern ciphers (NOT the real standards, see below):
//   - aes (C14), des (C15), blowfish (C16), chacha20 (C17), rc4 (C18)
//
// # Toy Modern Ciphers
//
// The AES, DES, Blowfish and ChaCha20 entries are small per-byte mixing
// functions that borrow the names for teaching purposes. They are not
// secure and are not interoperable with the real algorithms. Their exact
// arithmetic is part of the chart format, so it must not change. The RC4
// entry is genuine RC4 with a fixed passphrase.
//
// # Failure Handling
//
// Encoders and decoders never panic and never return errors. A decoder
// that cannot parse its input returns DecryptionFailed. Baconian and
// Polybius encode characters they cannot represent as an all-zero group
// and decode unknown groups as '?'.
//
// # Thread Safety
//
// All algorithms are stateless. A Registry is immutable once built and is
// safe for concurrent use.
package cipher
