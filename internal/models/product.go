package models

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Product defines the maximum balance an account opened on it may hold
type Product struct {
	CreatedAt          time.Time `db:"created_at"`
	Name               string    `db:"name"`
	Slug               string    `db:"slug"`
	Description        string    `db:"description"`
	MaximumAmountCents int64     `db:"maximum_amount_cents"`
	ID                 uuid.UUID `db:"id"`
}

var lower = cases.Lower(language.Und)

// Slugify derives the lookup key of a product name: accents stripped, lowercased,
// and runs of anything other than letters or digits collapsed into a single dash.
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	folded = lower.String(folded)

	var b strings.Builder
	dash := false
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
