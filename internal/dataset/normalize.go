package dataset

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// NormalizeName converts an arbitrary header string into a safe, lowercase
// identifier suitable for column and dataset names.
func NormalizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))

	lastUnderscore := false
	for _, r := range s {
		if r == ' ' || r == '-' || r == '.' || r == '/' || r == '\\' || r == ':' || r == ';' {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}

		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
			lastUnderscore = (r == '_')
			continue
		}

		// Drop everything else.
	}

	return strings.Trim(b.String(), "_")
}

// TruncateName enforces identifier length limits while preserving UTF-8
// validity. 63 matches the strictest backend limit among the run stores.
func TruncateName(s string) string {
	const maxLen = 63
	if len(s) <= maxLen {
		return s
	}
	b := []byte(s)
	cut := maxLen
	for cut > 0 && !utf8.Valid(b[:cut]) {
		cut--
	}
	if cut <= 0 {
		return s[:maxLen]
	}
	return string(b[:cut])
}

// normalizeHeaders maps raw header cells onto unique normalized column names.
//
// Datasets in the wild repeat header names ("amount", "amount") and leave
// cells blank; both would break name-keyed combination identity, so repeats
// get a numeric suffix and blanks become positional names.
func normalizeHeaders(raw []string) []string {
	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))

	for i, h := range raw {
		n := TruncateName(NormalizeName(h))
		if n == "" {
			n = fmt.Sprintf("column_%d", i+1)
		}
		if c := seen[n]; c > 0 {
			seen[n] = c + 1
			n = fmt.Sprintf("%s_%d", n, c+1)
		}
		seen[n]++
		out[i] = n
	}
	return out
}
