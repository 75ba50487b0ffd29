package category

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var ErrNotFound = errors.New("category not found")

type Category struct {
	ID         int64
	Name       string
	Slug       string
	ProductIDs []int64
	CreatedAt  time.Time
}

// Slugify derives the URL slug of a category name: accents folded, lower-case,
// runs of anything else than letters and digits collapsed into a single dash.
func Slugify(name string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}

	var b strings.Builder

	dash := false

	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}

			b.WriteRune(r)

			dash = false

			continue
		}

		dash = true
	}

	return b.String()
}
