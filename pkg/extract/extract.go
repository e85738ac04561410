// Package extract pulls individual fields out of raw upstream text (search
// page HTML, embedded script JSON, API payload fragments). Every mall exposes
// the same semantic field under different markup, and a single mall ships
// several markup variants at once, so each field is described as an ordered
// list of patterns tried until one yields a value. Absence is a normal
// outcome, never an error.
package extract

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

var (
	tagRe   = regexp.MustCompile(`<[^>]*>`)
	spaceRe = regexp.MustCompile(`\s+`)
	digitRe = regexp.MustCompile(`[^0-9]`)
	floatRe = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
)

// First applies patterns in order and returns the first non-empty capture
// group, trimmed. Returns "" when nothing matches.
func First(text string, patterns []*regexp.Regexp) string {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if len(m) > 1 {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v
			}
		}
	}
	return ""
}

// Text extracts a display string: first matching pattern, embedded tags
// stripped, entities unescaped, whitespace collapsed.
func Text(text string, patterns []*regexp.Regexp) string {
	return StripTags(First(text, patterns))
}

// Price extracts an integer won amount. All non-digit characters are dropped
// before parsing, so "12,345원" and "<em>12345</em>" both work. A zero after
// stripping is treated as absent, not as a free product.
func Price(text string, patterns []*regexp.Regexp) (int, bool) {
	return ParsePrice(First(text, patterns))
}

// ParsePrice applies the digit-stripping price rule to an already-extracted
// string.
func ParsePrice(s string) (int, bool) {
	digits := digitRe.ReplaceAllString(s, "")
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Float extracts a decimal value (ratings). Scans the first match for a
// float-looking run of digits.
func Float(text string, patterns []*regexp.Regexp) (float64, bool) {
	raw := First(text, patterns)
	m := floatRe.FindString(raw)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Blocks segments a search page into per-product chunks. Patterns are
// alternate block-boundary shapes tried in order; the first one that yields
// at least one block wins. At most limit blocks are returned, since
// downstream cost is bounded per mall.
func Blocks(text string, patterns []*regexp.Regexp, limit int) []string {
	for _, p := range patterns {
		matches := p.FindAllString(text, limit)
		if len(matches) > 0 {
			return matches
		}
	}
	return nil
}

// StripTags removes embedded markup and normalizes whitespace. Naver API
// titles arrive with <b> highlighting around the query terms.
func StripTags(s string) string {
	s = tagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// AbsoluteURL normalizes protocol-relative and path-relative URLs the way
// mall markup ships them ("//thumbnail..." image hosts, "/vp/products/..."
// hrefs).
func AbsoluteURL(raw, base string) string {
	switch {
	case raw == "":
		return ""
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "/"):
		return strings.TrimSuffix(base, "/") + raw
	default:
		return raw
	}
}
