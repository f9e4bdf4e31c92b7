package config

const (
	// MaxTenantIDLength bounds tenant identifiers taken from auth claims
	// or the CLI. Tenant IDs end up in cache keys and SQL parameters.
	MaxTenantIDLength = 64

	// MaxRequestedCodes caps a single coverage search. Each greedy
	// iteration is O(candidates x remaining), so very large pastes are
	// rejected up front rather than left to time out.
	MaxRequestedCodes = 5000

	// MaxCodeLength is the longest code accepted on write or lookup.
	MaxCodeLength = 128

	// MaxDocumentTitleLength fits the VARCHAR(255) title column.
	MaxDocumentTitleLength = 255

	// DefaultSuggestLimit and MaxSuggestLimit bound autocomplete responses.
	DefaultSuggestLimit = 10
	MaxSuggestLimit     = 50

	// MaxPasteBytes limits raw pasted text accepted by the search endpoint.
	MaxPasteBytes = 2 << 20
)
