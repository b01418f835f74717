package cipher

import "strings"

// DefaultPlayfairKey is the keyword bound by the built-in Playfair entry.
const DefaultPlayfairKey = "KEYWORD"

// squareAlphabet is A-Z without J.
const squareAlphabet = "ABCDEFGHIKLMNOPQRSTUVWXYZ"

// keySquare is a 5x5 Playfair square stored row-major.
type keySquare struct {
	cells [25]byte
	pos   [26]int
}

// newKeySquare fills the square with the distinct letters of key followed
// by the rest of the alphabet. J folds into I and non-letters are skipped.
func newKeySquare(key string) *keySquare {
	sq := &keySquare{}
	var seen [26]bool
	n := 0
	for _, c := range []byte(foldJ(strings.ToUpper(key)) + squareAlphabet) {
		if c < 'A' || c > 'Z' || seen[c-'A'] {
			continue
		}
		seen[c-'A'] = true
		sq.cells[n] = c
		sq.pos[c-'A'] = n
		n++
		if n == len(sq.cells) {
			break
		}
	}
	return sq
}

func (sq *keySquare) locate(c byte) (row, col int) {
	p := sq.pos[c-'A']
	return p / 5, p % 5
}

func (sq *keySquare) at(row, col int) byte {
	return sq.cells[((row+5)%5)*5+(col+5)%5]
}

// transform applies the Playfair rules to one digraph. step is +1 to
// encrypt and -1 to decrypt.
func (sq *keySquare) transform(a, b byte, step int) (byte, byte) {
	r1, c1 := sq.locate(a)
	r2, c2 := sq.locate(b)
	switch {
	case r1 == r2:
		return sq.at(r1, c1+step), sq.at(r2, c2+step)
	case c1 == c2:
		return sq.at(r1+step, c1), sq.at(r2+step, c2)
	default:
		return sq.at(r1, c2), sq.at(r2, c1)
	}
}

func foldJ(s string) string {
	return strings.ReplaceAll(s, "J", "I")
}

// playfairLetters uppercases text, folds J into I and drops everything
// that is not A-Z.
func playfairLetters(text string) []byte {
	up := foldJ(strings.ToUpper(text))
	out := make([]byte, 0, len(up))
	for i := 0; i < len(up); i++ {
		if c := up[i]; c >= 'A' && c <= 'Z' {
			out = append(out, c)
		}
	}
	return out
}

// PlayfairEncode encrypts the letters of text with a square built from
// key. Letters are taken two at a time; when both are equal, or the last
// letter has no partner, the second becomes X. Case, spacing and
// punctuation are lost.
func PlayfairEncode(text, key string) string {
	sq := newKeySquare(key)
	letters := playfairLetters(text)

	var b strings.Builder
	b.Grow(len(letters) + 1)
	for i := 0; i < len(letters); i += 2 {
		x, y := letters[i], byte('X')
		if i+1 < len(letters) && letters[i+1] != x {
			y = letters[i+1]
		}
		p, q := sq.transform(x, y, 1)
		b.WriteByte(p)
		b.WriteByte(q)
	}
	return b.String()
}

// PlayfairDecode reverses the Playfair rules. The input is normalised the
// same way as for encoding and an odd trailing letter is paired with X.
func PlayfairDecode(text, key string) string {
	sq := newKeySquare(key)
	letters := playfairLetters(text)

	var b strings.Builder
	b.Grow(len(letters) + 1)
	for i := 0; i < len(letters); i += 2 {
		x, y := letters[i], byte('X')
		if i+1 < len(letters) {
			y = letters[i+1]
		}
		p, q := sq.transform(x, y, -1)
		b.WriteByte(p)
		b.WriteByte(q)
	}
	return b.String()
}
