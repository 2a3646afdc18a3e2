package domain

// IsHangulSyllable reports whether r is a precomposed Hangul syllable.
func IsHangulSyllable(r rune) bool {
	return r >= 0xAC00 && r <= 0xD7A3
}

// IsHangul reports whether r is Hangul: a precomposed syllable or jamo.
func IsHangul(r rune) bool {
	if IsHangulSyllable(r) {
		return true
	}
	// Jamo and compatibility jamo blocks.
	return (r >= 0x1100 && r <= 0x11FF) || (r >= 0x3130 && r <= 0x318F)
}

// IsLatinLetter reports whether r is an ASCII letter.
func IsLatinLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// HasHangul reports whether s contains at least one Hangul syllable.
func HasHangul(s string) bool {
	for _, r := range s {
		if IsHangulSyllable(r) {
			return true
		}
	}
	return false
}

// HasLatin reports whether s contains at least one ASCII letter.
func HasLatin(s string) bool {
	for _, r := range s {
		if IsLatinLetter(r) {
			return true
		}
	}
	return false
}
