package archive

import (
	"strings"

	models "codearchive/internal/domain/models/archive"
)

// ParsePastedCodes extracts the first column of each line of pasted text.
//
// A line's first column ends at the first tab; without a tab, at the first
// run of two or more spaces; otherwise at the first space. Blank lines and
// empty columns are dropped, and codes repeated case-insensitively keep
// their first spelling and position.
func ParsePastedCodes(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	seen := make(map[string]struct{}, len(lines))
	codes := make([]string, 0, len(lines))
	for _, line := range lines {
		code := strings.TrimSpace(firstColumn(strings.TrimRight(line, "\r")))
		if code == "" {
			continue
		}
		folded := strings.ToUpper(code)
		if _, ok := seen[folded]; ok {
			continue
		}
		seen[folded] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}

func firstColumn(line string) string {
	if strings.TrimSpace(line) == "" {
		return ""
	}
	if i := strings.IndexByte(line, '\t'); i >= 0 {
		return line[:i]
	}
	// Leading indentation is not a column separator
	line = strings.TrimLeft(line, " ")
	if i := strings.Index(line, "  "); i >= 0 {
		return line[:i]
	}
	if i := strings.IndexByte(line, ' '); i >= 0 {
		return line[:i]
	}
	return line
}

// requestedCode is one code of a search request
type requestedCode struct {
	key      string // Matching key
	original string // As the caller typed it, trimmed
}

// normalizeRequest trims codes, drops blanks, and keeps the first occurrence
// of every matching key, in request order.
func normalizeRequest(codes []string) []requestedCode {
	seen := make(map[string]struct{}, len(codes))
	out := make([]requestedCode, 0, len(codes))
	for _, c := range codes {
		original := strings.TrimSpace(c)
		key := models.MatchingKey(original)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, requestedCode{key: key, original: original})
	}
	return out
}
