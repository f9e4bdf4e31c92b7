package archive

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	models "codearchive/internal/domain/models/archive"
)

func TestCoverSelect_TieBrokenByNewerDate(t *testing.T) {
	docs := []models.Document{
		doc("D1", "2024-01-10", "A1", "A2"),
		doc("D2", "2024-02-15", "A2", "A3"),
	}

	result, err := coverSelect(context.Background(), normalizeRequest([]string{"A1", "A2", "A3"}), docs)
	require.NoError(t, err)

	assert.Equal(t, []string{"D2", "D1"}, selectedIDs(result))
	assert.Equal(t, []string{"A2", "A3"}, result.SelectedDocuments[0].MatchedCodes)
	assert.Equal(t, []string{"A1"}, result.SelectedDocuments[1].MatchedCodes)
	assert.Equal(t, []string{"A1", "A2", "A3"}, result.CoveredCodes)
	assert.Empty(t, result.UncoveredCodes)
}

func TestCoverSelect_TieBreaks(t *testing.T) {
	tests := []struct {
		name string
		docs []models.Document
		want string
	}{
		{
			name: "equal dates keep fetch order",
			docs: []models.Document{
				doc("first", "2024-03-01", "K1"),
				doc("second", "2024-03-01", "K1"),
			},
			want: "first",
		},
		{
			name: "unparsable date keeps fetch order",
			docs: []models.Document{
				doc("first", "sometime in March", "K1"),
				doc("second", "2024-03-01", "K1"),
			},
			want: "first",
		},
		{
			name: "dates compared as calendar dates, not text",
			docs: []models.Document{
				doc("first", "31-01-2024", "K1"),
				doc("second", "01-02-2024", "K1"),
			},
			want: "second",
		},
		{
			name: "mixed layouts",
			docs: []models.Document{
				doc("first", "2024-05-01", "K1"),
				doc("second", "15/04/2024", "K1"),
			},
			want: "first",
		},
		{
			name: "larger cover beats newer date",
			docs: []models.Document{
				doc("old", "2001-01-01", "K1", "K2"),
				doc("new", "2024-01-01", "K1"),
			},
			want: "old",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := coverSelect(context.Background(), normalizeRequest([]string{"K1", "K2"}), tt.docs)
			require.NoError(t, err)
			require.NotEmpty(t, result.SelectedDocuments)
			assert.Equal(t, tt.want, result.SelectedDocuments[0].Document.ID)
		})
	}
}

func TestCoverSelect_MatchedCodesUseRequestText(t *testing.T) {
	docs := []models.Document{doc("D1", "2024-01-01", "AB-100", "AB-200")}

	result, err := coverSelect(context.Background(), normalizeRequest([]string{"ab200", "Ab-100", "zz-9"}), docs)
	require.NoError(t, err)

	require.Len(t, result.SelectedDocuments, 1)
	assert.Equal(t, []string{"ab200", "Ab-100"}, result.SelectedDocuments[0].MatchedCodes)
	assert.Equal(t, []string{"AB200", "AB100"}, result.CoveredCodes)
	assert.Equal(t, []string{"zz-9"}, result.UncoveredCodes)
}

func TestCoverSelect_StopsWhenNothingNewIsCovered(t *testing.T) {
	docs := []models.Document{
		doc("D1", "2024-01-01", "A", "B"),
		doc("D2", "2024-01-02", "A"),
		doc("D3", "2024-01-03", "B"),
	}

	result, err := coverSelect(context.Background(), normalizeRequest([]string{"A", "B", "C"}), docs)
	require.NoError(t, err)

	assert.Equal(t, []string{"D1"}, selectedIDs(result))
	assert.Equal(t, []string{"C"}, result.UncoveredCodes)
}

func TestCoverSelect_NoCandidates(t *testing.T) {
	result, err := coverSelect(context.Background(), normalizeRequest([]string{"Z9"}), nil)
	require.NoError(t, err)

	assert.Empty(t, result.SelectedDocuments)
	assert.NotNil(t, result.SelectedDocuments)
	assert.Empty(t, result.CoveredCodes)
	assert.Equal(t, []string{"Z9"}, result.UncoveredCodes)
}

func TestCoverSelect_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := coverSelect(ctx, normalizeRequest([]string{"A"}), []models.Document{doc("D1", "", "A")})
	assert.ErrorIs(t, err, context.Canceled)
}

// TestCoverSelect_Properties checks the partition and uniqueness guarantees
// on random inputs.
func TestCoverSelect_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	dates := []string{"2024-01-01", "2023-06-30", "01/02/2024", "n/a", ""}

	for round := 0; round < 200; round++ {
		codeSpace := 1 + rng.Intn(30)
		var docs []models.Document
		numDocs := rng.Intn(15)
		for i := 0; i < numDocs; i++ {
			var codes []string
			numCodes := 1 + rng.Intn(6)
			for j := 0; j < numCodes; j++ {
				codes = append(codes, fmt.Sprintf("c-%d", rng.Intn(codeSpace)))
			}
			docs = append(docs, doc(fmt.Sprintf("D%d", i), dates[rng.Intn(len(dates))], codes...))
		}
		var codes []string
		numRequested := rng.Intn(20)
		for j := 0; j < numRequested; j++ {
			codes = append(codes, fmt.Sprintf("C%d", rng.Intn(codeSpace+5)))
		}
		requested := normalizeRequest(codes)

		result, err := coverSelect(context.Background(), requested, docs)
		require.NoError(t, err)

		again, err := coverSelect(context.Background(), requested, docs)
		require.NoError(t, err)
		assert.Equal(t, result, again, "round %d not deterministic", round)

		seenDocs := map[string]bool{}
		claimed := map[string]int{}
		for _, sel := range result.SelectedDocuments {
			assert.False(t, seenDocs[sel.Document.ID], "round %d: %s selected twice", round, sel.Document.ID)
			seenDocs[sel.Document.ID] = true
			assert.NotEmpty(t, sel.MatchedCodes)
			for _, m := range sel.MatchedCodes {
				claimed[models.MatchingKey(m)]++
			}
		}

		covered := map[string]bool{}
		for _, k := range result.CoveredCodes {
			covered[k] = true
			assert.Equal(t, 1, claimed[k], "round %d: %s claimed %d times", round, k, claimed[k])
		}
		for _, u := range result.UncoveredCodes {
			assert.False(t, covered[models.MatchingKey(u)], "round %d: %s both covered and uncovered", round, u)
		}
		assert.Equal(t, len(requested), len(result.CoveredCodes)+len(result.UncoveredCodes))
		assert.Equal(t, len(claimed), len(result.CoveredCodes))
	}
}
