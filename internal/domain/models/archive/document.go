package archive

import (
	"strings"
)

// Document is an archived file (typically a scanned PDF) and the codes
// extracted from it.
type Document struct {
	ID        string  `json:"id" db:"id"`
	TenantID  string  `json:"tenant_id" db:"tenant_id"`
	Type      string  `json:"type" db:"doc_type"` // Free-text category, e.g. "invoice"
	Title     string  `json:"title" db:"title"`   // Document number, not unique
	Date      string  `json:"date" db:"doc_date"` // Raw text, any locale; see ParseDocumentDate
	SourceRef *string `json:"source_ref,omitempty" db:"source_ref"`
	Codes     []Code  `json:"codes"`
}

// Code is one code linked to a document.
type Code struct {
	Value string `json:"value" db:"code_value"` // As extracted, for display
	Key   string `json:"key" db:"code_key"`     // MatchingKey(Value)
}

// NewCode builds a Code with its matching key.
func NewCode(value string) Code {
	value = strings.TrimSpace(value)
	return Code{Value: value, Key: MatchingKey(value)}
}

// MatchingKey returns the normalized form used for code equality:
// surrounding whitespace trimmed, uppercased, hyphens removed.
func MatchingKey(code string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(code)), "-", "")
}

// Keys returns the document's matching keys, de-duplicated, in code order.
func (d *Document) Keys() []string {
	seen := make(map[string]struct{}, len(d.Codes))
	keys := make([]string, 0, len(d.Codes))
	for _, c := range d.Codes {
		key := c.Key
		if key == "" {
			key = MatchingKey(c.Value)
		}
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// CodeValue returns the stored display value for a matching key.
func (d *Document) CodeValue(key string) (string, bool) {
	for _, c := range d.Codes {
		k := c.Key
		if k == "" {
			k = MatchingKey(c.Value)
		}
		if k == key {
			return c.Value, true
		}
	}
	return "", false
}

// DedupeCodes drops blank codes and repeated matching keys, keeping the
// first occurrence of each.
func DedupeCodes(values []string) []Code {
	seen := make(map[string]struct{}, len(values))
	codes := make([]Code, 0, len(values))
	for _, v := range values {
		c := NewCode(v)
		if c.Key == "" {
			continue
		}
		if _, ok := seen[c.Key]; ok {
			continue
		}
		seen[c.Key] = struct{}{}
		codes = append(codes, c)
	}
	return codes
}

// AppendCodeRow folds one (document, code) row of a join into docs. Rows
// must arrive grouped by document; a new document starts whenever the id
// changes. A nil code adds the document without codes.
func AppendCodeRow(docs []Document, doc Document, code *Code) []Document {
	if n := len(docs); n == 0 || docs[n-1].ID != doc.ID {
		doc.Codes = []Code{}
		docs = append(docs, doc)
	}
	if code != nil {
		last := &docs[len(docs)-1]
		last.Codes = append(last.Codes, *code)
	}
	return docs
}
