package classify

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// regions are the path slugs of the 24 departamentos and Callao.
var regions = []string{
	"amazonas", "ancash", "apurimac", "arequipa", "ayacucho", "cajamarca",
	"cusco", "callao", "huancavelica", "huanuco", "ica", "junin",
	"la-libertad", "lambayeque", "lima", "loreto", "madre-de-dios",
	"moquegua", "pasco", "piura", "puno", "san-martin", "tacna",
	"tumbes", "ucayali",
}

// Regions returns a copy of the gazetteer.
func Regions() []string {
	out := make([]string, len(regions))
	copy(out, regions)
	return out
}

// regionGroup is the alternation of every gazetteer slug.
var regionGroup = "(" + strings.Join(quoteAll(regions), "|") + ")"

func quoteAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = regexp.QuoteMeta(w)
	}
	return out
}

// DisplayName turns a region slug into a readable name:
// "la-libertad" becomes "La Libertad". It is safe for concurrent use.
func DisplayName(region string) string {
	return cases.Title(language.Spanish).String(strings.ReplaceAll(region, "-", " "))
}
