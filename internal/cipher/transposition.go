package cipher

// DefaultRails is the rail count bound by the built-in rail fence entry.
const DefaultRails = 3

// Reverse reverses the order of the runes in text.
func Reverse(text string) string {
	r := []rune(text)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// railPattern returns the rail visited by each position when n characters
// are written in a zigzag over rails tracks.
func railPattern(n, rails int) []int {
	pattern := make([]int, n)
	rail, dir := 0, 1
	for i := range pattern {
		pattern[i] = rail
		rail += dir
		if rail == 0 || rail == rails-1 {
			dir = -dir
		}
	}
	return pattern
}

// RailFenceEncode writes text in a zigzag over rails tracks and reads the
// tracks top to bottom. Text no longer than rails, or rails <= 1, is
// returned unchanged.
func RailFenceEncode(text string, rails int) string {
	src := []rune(text)
	if rails <= 1 || len(src) <= rails {
		return text
	}
	fence := make([][]rune, rails)
	for i, rail := range railPattern(len(src), rails) {
		fence[rail] = append(fence[rail], src[i])
	}
	out := make([]rune, 0, len(src))
	for _, track := range fence {
		out = append(out, track...)
	}
	return string(out)
}

// RailFenceDecode undoes RailFenceEncode with the same rail count.
func RailFenceDecode(text string, rails int) string {
	src := []rune(text)
	if rails <= 1 || len(src) <= rails {
		return text
	}
	pattern := railPattern(len(src), rails)

	counts := make([]int, rails)
	for _, rail := range pattern {
		counts[rail]++
	}

	tracks := make([][]rune, rails)
	pos := 0
	for rail, n := range counts {
		tracks[rail] = src[pos : pos+n]
		pos += n
	}

	next := make([]int, rails)
	out := make([]rune, len(src))
	for i, rail := range pattern {
		out[i] = tracks[rail][next[rail]]
		next[rail]++
	}
	return string(out)
}
