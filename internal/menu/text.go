package menu

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// closingWish is the phrase the newsletter appends on its own, so any copy of
// it in the footer lines must be skipped.
const closingWish = "bon appétit"

var (
	foldedWish = fold(closingWish)
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// fold normalizes to NFC and case-folds. A Caser keeps state, so one is
// created per call.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}

// HasClosingWish reports whether the line contains "bon appétit" in any case
// or Unicode composition.
func HasClosingWish(line string) bool {
	return strings.Contains(fold(line), foldedWish)
}

// IsBlank reports whether the line holds only whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// WithoutClosingWish drops every line carrying the closing wish.
func WithoutClosingWish(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if !HasClosingWish(l) {
			out = append(out, l)
		}
	}
	return out
}

// FooterLines returns the non-blank footer lines without the closing wish.
func FooterLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range WithoutClosingWish(lines) {
		if !IsBlank(l) {
			out = append(out, l)
		}
	}
	return out
}

// SameTitle compares section titles ignoring case and surrounding spaces.
func SameTitle(a, b string) bool {
	return fold(strings.TrimSpace(a)) == fold(strings.TrimSpace(b))
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidEmail applies the same loose shape check as the admin form.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}
