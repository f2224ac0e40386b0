// Package extract pulls insurance identifiers out of free text.
package extract

import (
	"regexp"

	"github.com/ShayCichocki/coverdesk/pkg/models"
)

// Match is a single identifier found in text.
type Match struct {
	Kind  models.IdentifierKind
	Value string
}

// pattern pairs an identifier kind with its case-sensitive regex.
type pattern struct {
	kind models.IdentifierKind
	re   *regexp.Regexp
}

var patterns = []pattern{
	{models.KindPolicyNumber, regexp.MustCompile(`POL\d{6}`)},
	{models.KindCustomerID, regexp.MustCompile(`CUST\d{5}`)},
	{models.KindClaimID, regexp.MustCompile(`CLM\d{6}`)},
}

// Extract returns the first match of each identifier kind found in text.
func Extract(text string) []Match {
	var out []Match
	for _, p := range patterns {
		if v := p.re.FindString(text); v != "" {
			out = append(out, Match{Kind: p.kind, Value: v})
		}
	}
	return out
}

// Apply extracts identifiers from text and fills the empty slots of ids.
// Slots that already hold a value are left untouched.
// It returns the kinds that were newly set.
func Apply(ids *models.Identifiers, text string) []models.IdentifierKind {
	var filled []models.IdentifierKind
	for _, m := range Extract(text) {
		if ids.Fill(m.Kind, m.Value) {
			filled = append(filled, m.Kind)
		}
	}
	return filled
}
