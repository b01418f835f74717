package cipher

import "fmt"

// Builtin returns the 18 algorithms of the knitted chart format, bound to
// their default keys. Short codes are part of the format and never change.
func Builtin() []Algorithm {
	return []Algorithm{
		Algorithm{
			Key:         KeyCaesar,
			Name:        "Caesar Cipher",
			Code:        "C1",
			Description: "Moves each letter forward by 3 spots in the alphabet. Named after Julius Caesar, who used it for military messages. Simple to understand and easy to crack.",
			Encode:      func(s string) string { return CaesarEncode(s, DefaultCaesarShift) },
			Decode:      func(s string) string { return CaesarDecode(s, DefaultCaesarShift) },
		}.WithSteps(full(
			"We moved each letter 3 spots forward in the alphabet",
			"Like counting: h becomes k, e becomes h, l becomes o",
		)),
		Algorithm{
			Key:         KeyXOR,
			Name:        "XOR Cipher",
			Code:        "C2",
			Description: "Mixes your message with a secret word using computer math. Each letter is scrambled by the secret word, which is harder to crack than simple letter shifting.",
			Encode:      func(s string) string { return XOREncode(s, DefaultXORKey) },
			Decode:      func(s string) string { return XORDecode(s, DefaultXORKey) },
		}.WithSteps(truncated("Final result", 20,
			fmt.Sprintf("We mixed it with the secret word %q", DefaultXORKey),
			"Each letter gets scrambled using math operations",
			"Then converted to a safe text format (Base64)",
		)),
		Algorithm{
			Key:         KeyVigenere,
			Name:        "Vigenère Cipher",
			Code:        "C3",
			Description: "Like the Caesar cipher, but a keyword makes each letter shift by a different amount. The changing pattern is much trickier to decode.",
			Encode:      func(s string) string { return VigenereEncode(s, DefaultVigenereKey) },
			Decode:      func(s string) string { return VigenereDecode(s, DefaultVigenereKey) },
		}.WithSteps(full(
			fmt.Sprintf("We used the keyword %q (repeating: K-E-Y-K-E-Y...)", DefaultVigenereKey),
			"Each letter shifts by a different amount based on the keyword",
			"This makes the pattern harder to spot than Caesar cipher",
		)),
		Algorithm{
			Key:         KeyROT13,
			Name:        "ROT13",
			Code:        "C4",
			Description: "Shifts each letter exactly 13 places in the alphabet. Doing it twice gets you back to the original message. Often used to hide spoilers online.",
			Encode:      ROT13,
			Decode:      ROT13,
		}.WithSteps(full(
			"We moved each letter exactly 13 spots in the alphabet",
			"Doing this twice brings you back to the start",
			"It's like flipping the alphabet in half",
		)),
		Algorithm{
			Key:         KeyAtbash,
			Name:        "Atbash Cipher",
			Code:        "C5",
			Description: "Flips the alphabet backwards: A becomes Z, B becomes Y, and so on. One of the oldest known ciphers.",
			Encode:      Atbash,
			Decode:      Atbash,
		}.WithSteps(full(
			"We swapped each letter with its opposite (A→Z, B→Y, C→X)",
			"It's like reading the alphabet backwards",
			"Ancient method used thousands of years ago",
		)),
		Algorithm{
			Key:         KeyReverse,
			Name:        "Reverse",
			Code:        "C6",
			Description: "Writes your message backwards. Good for quick hiding, though anyone can read it with a mirror.",
			Encode:      Reverse,
			Decode:      Reverse,
		}.WithSteps(full(
			"We simply wrote it backwards",
			"The first letter becomes the last, and so on",
		)),
		Algorithm{
			Key:         KeyBase64,
			Name:        "Base64",
			Code:        "C7",
			Description: "Converts your message into a computer-friendly format using only safe characters. Not really encryption, but common for sending data over the internet.",
			Encode:      Base64Encode,
			Decode:      Base64Decode,
		}.WithSteps(full(
			"We converted your text into computer numbers (binary)",
			"Then regrouped those numbers into a special format",
			"This makes it safe to send over the internet",
		)),
		Algorithm{
			Key:         KeySubstitution,
			Name:        "Simple Substitution",
			Code:        "C8",
			Description: "A secret alphabet where each letter is swapped for another, like a decoder ring. Can be cracked by looking at which letters appear most often.",
			Encode:      SubstitutionEncode,
			Decode:      SubstitutionDecode,
		}.WithSteps(full(
			"We replaced each letter with a different one (a→q, b→w, c→e...)",
			"Each letter always becomes the same replacement",
		)),
		Algorithm{
			Key:         KeyRailFence,
			Name:        "Rail Fence",
			Code:        "C9",
			Description: "Writes your message in a zigzag over several lines, then reads it line by line.",
			Encode:      func(s string) string { return RailFenceEncode(s, DefaultRails) },
			Decode:      func(s string) string { return RailFenceDecode(s, DefaultRails) },
		}.WithSteps(full(
			fmt.Sprintf("We wrote your message in a zigzag pattern on %d lines", DefaultRails),
			"Then we read it line by line instead of zigzag",
		)),
		Algorithm{
			Key:         KeyPlayfair,
			Name:        "Playfair Cipher",
			Code:        "C10",
			Description: "Uses a 5×5 grid to encrypt letter pairs instead of single letters. Used in the First World War because it resisted the attacks of its time.",
			Encode:      func(s string) string { return PlayfairEncode(s, DefaultPlayfairKey) },
			Decode:      func(s string) string { return PlayfairDecode(s, DefaultPlayfairKey) },
		}.WithSteps(full(
			"We made everything uppercase and grouped letters into pairs",
			"Using a 5×5 grid, we found where each pair appears",
			"Then followed special rules to encrypt each pair together",
		)),
		Algorithm{
			Key:         KeyBaconian,
			Name:        "Baconian Cipher",
			Code:        "C11",
			Description: "Turns each letter into a 5-character code of A and B. The pattern can be hidden in ordinary text by making some letters bold or italic.",
			Encode:      BaconianEncode,
			Decode:      BaconianDecode,
		}.WithSteps(func(original, encrypted string) []string {
			return []string{
				fmt.Sprintf("Your original message: %q", original),
				"We replaced each letter with a pattern of 5 A's and B's",
				"For example: A=AAAAA, B=AAAAB, C=AAABA",
				fmt.Sprintf("Final result: %q (%d characters total)", preview(encrypted, 25), len([]rune(encrypted))),
			}
		}),
		Algorithm{
			Key:         KeyPolybius,
			Name:        "Polybius Square",
			Code:        "C12",
			Description: "Arranges the alphabet in a 5×5 grid and replaces each letter with its grid coordinates, written in binary.",
			Encode:      PolybiusEncode,
			Decode:      PolybiusDecode,
		}.WithSteps(truncated("Final result", 30,
			"We arranged the alphabet in a 5×5 grid",
			"Each letter becomes its position in the grid (row, column)",
		)),
		Algorithm{
			Key:         KeyAutokey,
			Name:        "Autokey Cipher",
			Code:        "C13",
			Description: "Like Vigenère, but your own message becomes part of the key, so the message helps hide itself.",
			Encode:      func(s string) string { return AutokeyEncode(s, DefaultAutokeyKey) },
			Decode:      func(s string) string { return AutokeyDecode(s, DefaultAutokeyKey) },
		}.WithSteps(full(
			fmt.Sprintf("We started with the keyword %q", DefaultAutokeyKey),
			"Then used your own message as the rest of the key",
		)),
		Algorithm{
			Key:         KeyAES,
			Name:        "AES (Advanced Encryption Standard)",
			Code:        "C14",
			Description: "Named after the cipher used by governments and banks. Your message is scrambled through several rounds of mixing and shuffling. (Simplified teaching version.)",
			Encode:      func(s string) string { return AESEncode(s, DefaultAESKey) },
			Decode:      func(s string) string { return AESDecode(s, DefaultAESKey) },
		}.WithSteps(truncated("Final scrambled result", 20,
			"We used a strong password to scramble your message",
			fmt.Sprintf("The computer did this in %d rounds of mixing and shuffling", aesRounds),
		)),
		Algorithm{
			Key:         KeyDES,
			Name:        "DES (Data Encryption Standard)",
			Code:        "C15",
			Description: "Named after the U.S. government standard from 1977 to 2005. Each scrambled byte feeds into the next one. (Simplified teaching version.)",
			Encode:      func(s string) string { return DESEncode(s, DefaultDESKey) },
			Decode:      func(s string) string { return DESDecode(s, DefaultDESKey) },
		}.WithSteps(truncated("Final scrambled result", 20,
			"We used an 8-character password for scrambling",
			"Your message got shuffled, mixed, then shuffled again",
		)),
		Algorithm{
			Key:         KeyBlowfish,
			Name:        "Blowfish Cipher",
			Code:        "C16",
			Description: "Named after the 1993 cipher. Builds custom scrambling tables from the password. (Simplified teaching version.)",
			Encode:      func(s string) string { return BlowfishEncode(s, DefaultBlowfishKey) },
			Decode:      func(s string) string { return BlowfishDecode(s, DefaultBlowfishKey) },
		}.WithSteps(truncated("Final scrambled result", 20,
			"We created a custom scrambling table from the password",
			"Split each letter in half and scrambled each part separately",
			"Then mixed them back together in a new way",
		)),
		Algorithm{
			Key:         KeyChaCha20,
			Name:        "ChaCha20",
			Code:        "C17",
			Description: "Named after the stream cipher that protects much of today's web traffic. (Simplified teaching version.)",
			Encode:      func(s string) string { return ChaCha20Encode(s, DefaultChaCha20Key) },
			Decode:      func(s string) string { return ChaCha20Decode(s, DefaultChaCha20Key) },
		}.WithSteps(truncated("Final scrambled result", 20,
			"We generated a unique scrambling pattern from the password",
			"Mixed your message with this pattern using math",
		)),
		Algorithm{
			Key:         KeyRC4,
			Name:        "RC4 Stream Cipher",
			Code:        "C18",
			Description: "A stream cipher popular in early internet security. Creates a continuous stream of scrambling numbers. Retired from serious use.",
			Encode:      func(s string) string { return RC4Encode(s, DefaultRC4Key) },
			Decode:      func(s string) string { return RC4Decode(s, DefaultRC4Key) },
		}.WithSteps(truncated("Final scrambled result", 20,
			"We created a 256-number scrambling sequence from the password",
			"Mixed each letter with its pattern number",
		)),
	}
}

// full explains an encryption with the complete ciphertext.
func full(lines ...string) StepsFunc {
	return func(original, encrypted string) []string {
		out := make([]string, 0, len(lines)+2)
		out = append(out, fmt.Sprintf("Your original message: %q", original))
		out = append(out, lines...)
		return append(out, fmt.Sprintf("Final encrypted message: %q", encrypted))
	}
}

// truncated explains an encryption with a preview of at most n characters
// of the ciphertext.
func truncated(label string, n int, lines ...string) StepsFunc {
	return func(original, encrypted string) []string {
		out := make([]string, 0, len(lines)+2)
		out = append(out, fmt.Sprintf("Your original message: %q", original))
		out = append(out, lines...)
		return append(out, fmt.Sprintf("%s: %q", label, preview(encrypted, n)))
	}
}

// preview cuts s to n runes and marks the cut with "...".
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
