// SPDX-License-Identifier: MIT

// Package slug converts titles into URL-safe identifiers.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxLength = 50

// cyrillic transliteration for the languages the blog's authors write in.
var translit = strings.NewReplacer(
	"а", "a", "б", "b", "в", "v", "г", "g", "д", "d",
	"е", "e", "ё", "e", "ж", "zh", "з", "z", "и", "i",
	"й", "y", "к", "k", "л", "l", "м", "m", "н", "n",
	"о", "o", "п", "p", "р", "r", "с", "s", "т", "t",
	"у", "u", "ф", "f", "х", "kh", "ц", "ts", "ч", "ch",
	"ш", "sh", "щ", "shch", "ъ", "", "ы", "y", "ь", "",
	"э", "e", "ю", "yu", "я", "ya",
	"ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss",
)

// Make converts a title into a URL-safe, human-readable slug.
// Example: "Путешествия по Уралу" → "puteshestviya-po-uralu".
func Make(title string) string {
	if title == "" {
		return "category"
	}

	s := strings.ToLower(title)
	s = translit.Replace(s)

	// Decompose and drop combining marks so accented latin collapses to
	// its base letter ("télé" → "tele").
	decomposed := norm.NFD.String(s)
	var cleaned strings.Builder
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		cleaned.WriteRune(r)
	}
	s = cleaned.String()

	// Replace runs of non-alphanumerics with single dashes.
	var result strings.Builder
	lastWasDash := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			result.WriteRune(r)
			lastWasDash = false
		} else if !lastWasDash {
			result.WriteRune('-')
			lastWasDash = true
		}
	}

	out := strings.Trim(result.String(), "-")
	if len(out) > maxLength {
		out = strings.TrimRight(out[:maxLength], "-")
	}
	if out == "" {
		return "category"
	}
	return out
}
