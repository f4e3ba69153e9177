package identity

import (
	"strings"
	"unicode"
)

// Verify reports whether the claimed identity fields are corroborated by the
// text extracted from the uploaded document.
//
// The check is a deliberate substring heuristic, kept coarse on purpose: the
// first whitespace-delimited token of the claimed name must appear anywhere
// in the text, and the claimed document number must appear once whitespace is
// stripped from both sides. Matching is case-insensitive and requires no
// token ordering or adjacency. It never fails: an extraction failure reaches
// this function as an empty string and simply never matches non-empty claims.
func Verify(claimedFullName, claimedDocNumber, extractedText string) bool {
	text := strings.ToLower(extractedText)

	nameMatch := strings.Contains(text, strings.ToLower(firstToken(claimedFullName)))
	numberMatch := strings.Contains(stripWhitespace(text), stripWhitespace(strings.ToLower(claimedDocNumber)))

	return nameMatch && numberMatch
}

func firstToken(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func stripWhitespace(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, value)
}
