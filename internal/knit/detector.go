package knit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/RowanDark/knitcipher/internal/bitcodec"
	"github.com/RowanDark/knitcipher/internal/cipher"
)

// MinConfidence is the lowest score Identify reports.
const MinConfidence = 0.3

// ErrEmptyBinary indicates Identify was called without any bits.
var ErrEmptyBinary = errors.New("knit: no binary digits in input")

// englishFreq is the relative frequency of a-z in English prose.
var englishFreq = [26]float64{
	8.167, 1.492, 2.782, 4.253, 12.702, 2.228, 2.015, 6.094, 6.966, 0.153,
	0.772, 4.025, 2.406, 6.749, 7.507, 1.929, 0.095, 5.987, 6.327, 9.056,
	2.758, 0.978, 2.360, 0.150, 1.974, 0.074,
}

// Candidate is one plausible decryption of a chart without a code.
type Candidate struct {
	Code       string  `json:"code"`
	Algorithm  string  `json:"algorithm"`
	Name       string  `json:"name"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// Identify decrypts bits under every registered algorithm and returns the
// readable results, most English-like first. Results scoring below
// MinConfidence and decoder sentinels are dropped.
func (e *Engine) Identify(ctx context.Context, bits string) ([]Candidate, error) {
	clean := bitcodec.Strip(bits)
	if clean == "" {
		return nil, ErrEmptyBinary
	}

	var out []Candidate
	for _, alg := range e.reg.List() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := decryptWith(alg, clean)
		if text == "" || text == cipher.DecryptionFailed {
			continue
		}
		printable, fit := readability(text)
		score := printable * fit * fit
		if score < MinConfidence {
			continue
		}
		out = append(out, Candidate{
			Code:       alg.Code,
			Algorithm:  alg.Key,
			Name:       alg.Name,
			Text:       text,
			Confidence: math.Round(score*1000) / 1000,
			Reasoning:  fmt.Sprintf("%.0f%% printable, letter frequencies %.0f%% English-like", printable*100, fit*100),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out, nil
}

// Identify uses the built-in registry. See Engine.Identify.
func Identify(ctx context.Context, bits string) ([]Candidate, error) {
	return defaultEngine.Identify(ctx, bits)
}

// readability returns the share of printable runes in text and how
// closely its letter distribution matches English, as one minus the total
// variation distance. Text without letters has no fit.
func readability(text string) (printable, fit float64) {
	var counts [26]int
	runes, good, letters := 0, 0, 0
	for _, r := range text {
		runes++
		if r != unicode.ReplacementChar && (unicode.IsPrint(r) || r == '\n' || r == '\t') {
			good++
		}
		if l := unicode.ToLower(r); l >= 'a' && l <= 'z' {
			counts[l-'a']++
			letters++
		}
	}
	if runes == 0 || letters == 0 {
		return 0, 0
	}

	var total float64
	for _, f := range englishFreq {
		total += f
	}
	var dist float64
	for i, c := range counts {
		dist += math.Abs(float64(c)/float64(letters) - englishFreq[i]/total)
	}
	return float64(good) / float64(runes), 1 - dist/2
}

// String formats the candidate on one line.
func (c Candidate) String() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s (%.2f) %s", c.Code, c.Name, c.Confidence, c.Text))
}
