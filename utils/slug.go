package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9_]+`)

var translit = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d",
	'е': "e", 'ё': "e", 'ж': "zh", 'з': "z", 'и': "i",
	'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n",
	'о': "o", 'п': "p", 'р': "r", 'с': "s", 'т': "t",
	'у': "u", 'ф': "f", 'х': "h", 'ц': "c", 'ч': "ch",
	'ш': "sh", 'щ': "sh", 'ъ': "", 'ы': "y", 'ь': "",
	'э': "e", 'ю': "yu", 'я': "ya",
	'ä': "a", 'ö': "o", 'ü': "u", 'ß': "ss",
	'é': "e", 'è': "e", 'ê': "e", 'à': "a", 'ç': "c",
}

func transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_' {
			b.WriteRune(r)
			continue
		}
		if m, ok := translit[r]; ok {
			b.WriteString(m)
			continue
		}
		if unicode.IsSpace(r) {
			b.WriteRune(' ')
		}
	}
	return b.String()
}

// Slugify turns arbitrary text into a lowercase, hyphen separated slug.
// Returns fallback when nothing usable is left.
func Slugify(text, fallback string) string {
	base := transliterate(text)
	base = nonAlnum.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if base == "" {
		return fallback
	}
	return base
}
