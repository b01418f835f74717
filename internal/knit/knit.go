// Package knit turns messages into knitting charts and charts back into
// messages. It chains the cipher registry, the binary codec and the grid
// layout engine.
package knit

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/RowanDark/knitcipher/internal/bitcodec"
	"github.com/RowanDark/knitcipher/internal/cipher"
	"github.com/RowanDark/knitcipher/internal/grid"
)

var (
	// ErrEmptyMessage indicates Encrypt was called without a message.
	ErrEmptyMessage = errors.New("knit: message is empty")
	// ErrUnknownAlgorithm indicates an algorithm key that is not registered.
	ErrUnknownAlgorithm = errors.New("knit: unknown algorithm")
)

// Result is the outcome of encrypting one message.
type Result struct {
	Algorithm  string     `json:"algorithm"`
	Code       string     `json:"code"`
	Ciphertext string     `json:"ciphertext"`
	Binary     string     `json:"binary"`
	Repeat     bool       `json:"repeat"`
	Grid       *grid.Grid `json:"grid"`
	Rows       int        `json:"rows"`
	Cols       int        `json:"cols"`
}

// Engine encrypts and decrypts charts against one registry.
type Engine struct {
	reg *cipher.Registry
}

// New returns an Engine over reg, or over the built-in registry when reg
// is nil.
func New(reg *cipher.Registry) *Engine {
	if reg == nil {
		reg = cipher.Default()
	}
	return &Engine{reg: reg}
}

// Registry exposes the registry the engine dispatches on.
func (e *Engine) Registry() *cipher.Registry {
	return e.reg
}

// Encrypt runs message through the algorithm named by key, encodes the
// ciphertext as bits and lays the bits out as a chart.
func (e *Engine) Encrypt(message, key string, repeat bool) (*Result, error) {
	if message == "" {
		return nil, ErrEmptyMessage
	}
	alg, ok := e.reg.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, key)
	}

	ct := alg.Encode(message)
	bits := bitcodec.ToBinary(ct, alg.Key)
	g, err := grid.Layout(bits, repeat)
	if err != nil {
		return nil, fmt.Errorf("%s produced no chartable output: %w", alg.Key, err)
	}

	return &Result{
		Algorithm:  alg.Key,
		Code:       alg.Code,
		Ciphertext: ct,
		Binary:     bits,
		Repeat:     repeat,
		Grid:       g,
		Rows:       g.Rows,
		Cols:       g.Cols,
	}, nil
}

// Decrypt recovers text from bits read off a chart. Every character other
// than '0' and '1' is ignored. An unknown code yields cipher.InvalidCode
// and undecodable input yields the algorithm's own sentinel.
func (e *Engine) Decrypt(bits, code string) string {
	alg, ok := e.reg.FindByCode(code)
	if !ok {
		return cipher.InvalidCode
	}
	return decryptWith(alg, bitcodec.Strip(bits))
}

func decryptWith(alg cipher.Algorithm, bits string) string {
	text := alg.Decode(bitcodec.FromBinary(bits, alg.Key))
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, string(utf8.RuneError))
	}
	return text
}

var defaultEngine = New(nil)

// Encrypt uses the built-in registry. See Engine.Encrypt.
func Encrypt(message, key string, repeat bool) (*Result, error) {
	return defaultEngine.Encrypt(message, key, repeat)
}

// Decrypt uses the built-in registry. See Engine.Decrypt.
func Decrypt(bits, code string) string {
	return defaultEngine.Decrypt(bits, code)
}
