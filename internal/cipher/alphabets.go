package cipher

import (
	"strconv"
	"strings"
	"unicode"
)

// Group widths and the placeholder groups emitted for characters that
// have no representation.
const (
	BaconianWidth   = 5
	PolybiusWidth   = 6
	baconianUnknown = "00000"
	polybiusUnknown = "000000"
)

// baconianCode is the 26-letter Baconian table: the letter index written
// in five binary digits with A for 0 and B for 1.
var baconianCode, baconianLetter = buildBaconian()

func buildBaconian() ([26]string, map[string]rune) {
	var codes [26]string
	letters := make(map[string]rune, 26)
	for i := 0; i < 26; i++ {
		var b strings.Builder
		for bit := BaconianWidth - 1; bit >= 0; bit-- {
			if i>>bit&1 == 1 {
				b.WriteByte('B')
			} else {
				b.WriteByte('A')
			}
		}
		codes[i] = b.String()
		letters[codes[i]] = rune('A' + i)
	}
	return codes, letters
}

// BaconianEncode replaces each letter with its five-symbol A/B group.
// Every other character becomes "00000".
func BaconianEncode(text string) string {
	var b strings.Builder
	b.Grow(len(text) * BaconianWidth)
	for _, r := range text {
		r = unicode.ToUpper(r)
		if isUpper(r) {
			b.WriteString(baconianCode[r-'A'])
		} else {
			b.WriteString(baconianUnknown)
		}
	}
	return b.String()
}

// BaconianDecode reads five-symbol groups back into letters. Groups that
// are not in the table, including a short trailing group, decode as '?'.
func BaconianDecode(text string) string {
	src := []rune(text)
	var b strings.Builder
	for i := 0; i < len(src); i += BaconianWidth {
		end := min(i+BaconianWidth, len(src))
		if r, ok := baconianLetter[string(src[i:end])]; ok {
			b.WriteRune(r)
		} else {
			b.WriteByte('?')
		}
	}
	return b.String()
}

// PolybiusEncode replaces each letter with its 1-based square row and
// column, each written as three binary digits. J shares I's cell and any
// other character becomes "000000".
func PolybiusEncode(text string) string {
	var b strings.Builder
	b.Grow(len(text) * PolybiusWidth)
	for _, r := range text {
		r = unicode.ToUpper(r)
		if r == 'J' {
			r = 'I'
		}
		idx := strings.IndexRune(squareAlphabet, r)
		if !isUpper(r) || idx < 0 {
			b.WriteString(polybiusUnknown)
			continue
		}
		b.WriteString(bits3(idx/5 + 1))
		b.WriteString(bits3(idx%5 + 1))
	}
	return b.String()
}

// PolybiusDecode reads six-digit groups back into letters. A group whose
// fields are not binary or fall outside 1..5 decodes as '?'.
func PolybiusDecode(text string) string {
	src := []rune(text)
	var b strings.Builder
	for i := 0; i < len(src); i += PolybiusWidth {
		end := min(i+PolybiusWidth, len(src))
		b.WriteByte(polybiusLetter(string(src[i:end])))
	}
	return b.String()
}

func polybiusLetter(group string) byte {
	if len(group) != PolybiusWidth {
		return '?'
	}
	row, err := strconv.ParseUint(group[:3], 2, 8)
	if err != nil {
		return '?'
	}
	col, err := strconv.ParseUint(group[3:], 2, 8)
	if err != nil {
		return '?'
	}
	if row < 1 || row > 5 || col < 1 || col > 5 {
		return '?'
	}
	return squareAlphabet[(row-1)*5+col-1]
}

func bits3(n int) string {
	s := strconv.FormatInt(int64(n), 2)
	return strings.Repeat("0", 3-len(s)) + s
}
