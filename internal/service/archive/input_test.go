package archive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePastedCodes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "spreadsheet paste with mixed separators",
			raw:  "AB-100\tWidget Deluxe\nAB-200   Widget Pro\n\nAB-300",
			want: []string{"AB-100", "AB-200", "AB-300"},
		},
		{
			name: "single space separates first column",
			raw:  "X1 some description\nX2",
			want: []string{"X1", "X2"},
		},
		{
			name: "tab wins over spaces",
			raw:  "A B\tC",
			want: []string{"A B"},
		},
		{
			name: "double space wins over single space",
			raw:  "A B  C",
			want: []string{"A B"},
		},
		{
			name: "windows line endings",
			raw:  "C1\r\nC2\r\n",
			want: []string{"C1", "C2"},
		},
		{
			name: "case-insensitive dedupe keeps first spelling",
			raw:  "ab-1\nAB-1\nAb-2\nab-2",
			want: []string{"ab-1", "Ab-2"},
		},
		{
			name: "indented line",
			raw:  "   Q7  note",
			want: []string{"Q7"},
		},
		{
			name: "empty first column is dropped",
			raw:  "\tonly second column\n   \n",
			want: []string{},
		},
		{
			name: "empty input",
			raw:  "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePastedCodes(tt.raw))
		})
	}
}

func TestParsePastedCodes_Idempotent(t *testing.T) {
	inputs := []string{
		"AB-100\tWidget Deluxe\nAB-200   Widget Pro\n\nAB-300",
		"x\nX\ny z\n\tq",
		"  C-1  first\r\nc-1\r\nD",
	}
	for _, raw := range inputs {
		once := ParsePastedCodes(raw)
		joined := ""
		for _, c := range once {
			joined += c + "\n"
		}
		assert.Equal(t, once, ParsePastedCodes(joined), "input %q", raw)
	}
}

func TestNormalizeRequest(t *testing.T) {
	got := normalizeRequest([]string{" ab-1 ", "AB1", "", "  ", "-", "c-2", "A-B-1"})

	assert.Equal(t, []requestedCode{
		{key: "AB1", original: "ab-1"},
		{key: "C2", original: "c-2"},
	}, got)
}
