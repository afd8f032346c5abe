// Package names folds bookmaker spellings of countries, leagues and teams
// into a comparable form.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// clubAffixes are stripped when they lead or trail a folded team name,
// so "FC Porto", "Porto FC" and "F.C. Porto" all become "porto".
var clubAffixes = map[string]bool{
	"rc": true, "ksk": true, "ks": true, "fc": true, "fk": true, "afc": true,
	"cf": true, "sc": true, "ssc": true, "ac": true, "as": true, "ud": true,
	"cd": true, "nk": true, "bc": true, "bk": true, "sk": true,
}

// Fold lower-cases s, strips diacritics, drops dots and apostrophes,
// turns any other punctuation into a space and collapses whitespace.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range strings.ToLower(stripped) {
		switch {
		case r == '.' || r == '\'' || r == '’':
			// "F.C." -> "fc"
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// FoldTeam folds s and removes a leading and a trailing club affix.
// A name made only of an affix is returned folded but unstripped.
func FoldTeam(s string) string {
	fields := strings.Fields(Fold(s))
	if len(fields) > 1 && clubAffixes[fields[0]] {
		fields = fields[1:]
	}
	if len(fields) > 1 && clubAffixes[fields[len(fields)-1]] {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}
