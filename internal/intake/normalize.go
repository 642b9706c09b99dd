package intake

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reHorizontal = regexp.MustCompile(`[ \t]+`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText collapses noisy whitespace so the sufficiency check and the
// prompt both see stable text. Line breaks are preserved; runs of 3+ newlines
// collapse to a single blank line; non-breaking spaces become plain spaces.
func NormalizeText(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, " ", " ")
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reHorizontal.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
