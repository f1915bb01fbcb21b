package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var brNumberPattern = regexp.MustCompile(`(?:R\$\s*)?(\d{1,3}(?:\.\d{3})*(?:,\d{2})?)`)

// ParseBRNumber converts a Brazilian-formatted number ("1.234.567,89") to a
// float64.
func ParseBRNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FirstNumber extracts the first Brazilian-formatted number found in text.
func FirstNumber(text string) (float64, bool) {
	m := brNumberPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return ParseBRNumber(m[1])
}

var periodPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(janeiro|fevereiro|marco|abril|maio|junho|julho|agosto|setembro|outubro|novembro|dezembro)\s+(?:de\s+)?(\d{4})`),
	regexp.MustCompile(`(\d{1,2}/\d{4})`),
	regexp.MustCompile(`(\d{4})`),
}

// ExtractPeriod finds the reporting period referenced in the document text.
// Month-plus-year beats bare year; unidentifiable periods get a fixed label.
func ExtractPeriod(text string) string {
	folded := Fold(text)
	for _, p := range periodPatterns {
		m := p.FindStringSubmatch(folded)
		if m == nil {
			continue
		}
		if len(m) == 3 {
			return m[1] + " " + m[2]
		}
		return m[1]
	}
	return "unknown period"
}
