package archive

// SelectedDocument is a document chosen by coverage search together with
// the requested codes it claimed.
type SelectedDocument struct {
	Document Document `json:"document"`

	// MatchedCodes holds the requested codes (as the caller typed them)
	// this document covered at the time it was selected, in request order.
	MatchedCodes []string `json:"matched_codes"`
}

// SearchResult is the outcome of a coverage search.
//
// CoveredCodes and UncoveredCodes partition the normalized request:
// CoveredCodes holds matching keys, UncoveredCodes holds the caller's
// original text so "not found" lists read the way they were pasted.
type SearchResult struct {
	SelectedDocuments []SelectedDocument `json:"selected_documents"`
	CoveredCodes      []string           `json:"covered_codes"`
	UncoveredCodes    []string           `json:"uncovered_codes"`
}

// EmptySearchResult returns a result with non-nil empty slices, so it
// serializes as [] rather than null.
func EmptySearchResult() *SearchResult {
	return &SearchResult{
		SelectedDocuments: []SelectedDocument{},
		CoveredCodes:      []string{},
		UncoveredCodes:    []string{},
	}
}

// CodeMatch is one exact-code lookup hit.
type CodeMatch struct {
	Document Document `json:"document"`

	// MatchedCode is the document's own stored value for the looked-up code
	MatchedCode string `json:"matched_code"`
}
