package archive

import (
	"strings"
	"time"
)

// documentDateLayouts lists the layouts seen in stored document dates.
// Day-first layouts are tried before year-first ones only where the two
// cannot be confused (the year position differs).
var documentDateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"02.01.2006",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"02-01-2006 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseDocumentDate parses a stored document date. ok is false when the
// text matches none of the known layouts; callers must not fall back to
// comparing the raw strings.
func ParseDocumentDate(raw string) (t time.Time, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range documentDateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// NewerDate reports whether date a is strictly more recent than date b.
// It is false whenever either side fails to parse.
func NewerDate(a, b string) bool {
	ta, okA := ParseDocumentDate(a)
	tb, okB := ParseDocumentDate(b)
	if !okA || !okB {
		return false
	}
	return ta.After(tb)
}
