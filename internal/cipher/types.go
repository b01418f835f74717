package cipher

import "errors"

// Sentinel results returned in place of an error.
const (
	// DecryptionFailed is returned by decoders whose input is malformed.
	DecryptionFailed = "[Decryption failed]"

	// InvalidCode is returned when a short code does not name an algorithm.
	InvalidCode = "[Invalid cipher code]"
)

// Algorithm keys. These are stable identifiers used by the binary codec,
// the REST API and saved charts.
const (
	KeyCaesar       = "caesar"
	KeyXOR          = "xor"
	KeyVigenere     = "vigenere"
	KeyROT13        = "rot13"
	KeyAtbash       = "atbash"
	KeyReverse      = "reverse"
	KeyBase64       = "base64"
	KeySubstitution = "substitution"
	KeyRailFence    = "railfence"
	KeyPlayfair     = "playfair"
	KeyBaconian     = "baconian"
	KeyPolybius     = "polybius"
	KeyAutokey      = "autokey"
	KeyAES          = "aes"
	KeyDES          = "des"
	KeyBlowfish     = "blowfish"
	KeyChaCha20     = "chacha20"
	KeyRC4          = "rc4"
)

var (
	// ErrDuplicateKey indicates two algorithms share a key.
	ErrDuplicateKey = errors.New("cipher: duplicate algorithm key")
	// ErrDuplicateCode indicates two algorithms share a short code.
	ErrDuplicateCode = errors.New("cipher: duplicate short code")
	// ErrInvalidAlgorithm indicates an algorithm is missing a key, code or function.
	ErrInvalidAlgorithm = errors.New("cipher: algorithm must have key, code, encode and decode")
	// ErrUnknownAlgorithm indicates a key that is not registered.
	ErrUnknownAlgorithm = errors.New("cipher: unknown algorithm")
	// ErrEmptyPipeline indicates a pipeline with no steps.
	ErrEmptyPipeline = errors.New("cipher: pipeline has no algorithms")
)

// Func transforms text. Implementations must be total: every input yields
// a result, possibly a sentinel.
type Func func(text string) string

// StepsFunc renders the human-readable explanation of one encryption.
type StepsFunc func(original, encrypted string) []string

// Algorithm describes one registered encode/decode pair.
type Algorithm struct {
	Key         string
	Name        string
	Code        string
	Description string
	Encode      Func
	Decode      Func

	steps StepsFunc
}

// Steps explains how original became encrypted. It returns nil when the
// algorithm has no explanation attached.
func (a Algorithm) Steps(original, encrypted string) []string {
	if a.steps == nil {
		return nil
	}
	return a.steps(original, encrypted)
}

// WithSteps returns a copy of a that uses fn to explain encryptions.
func (a Algorithm) WithSteps(fn StepsFunc) Algorithm {
	a.steps = fn
	return a
}
