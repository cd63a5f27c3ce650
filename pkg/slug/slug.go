package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum  = regexp.MustCompile(`[^a-z0-9]+`)
	canonical = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

// Letters that carry no combining mark under NFD and so survive diacritic
// stripping untouched.
var folder = strings.NewReplacer(
	"ı", "i",
	"ß", "ss",
	"ø", "o",
	"æ", "ae",
	"œ", "oe",
	"đ", "d",
	"ł", "l",
	"þ", "th",
)

// Generate derives a URL-safe identifier from a display name.
//
// Examples:
//   - "Acme Corp" → "acme-corp"
//   - "Çocuk Ürünleri" → "cocuk-urunleri"
//   - "Crème Brûlée!!" → "creme-brulee"
//
// The result is lowercase ASCII alphanumerics separated by single hyphens,
// or "" when the name holds no letters or digits. Generate is idempotent.
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = stripMarks(s)
	s = folder.Replace(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// IsValid reports whether s is already in canonical slug form.
func IsValid(s string) bool {
	return canonical.MatchString(s)
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
