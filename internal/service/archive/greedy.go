package archive

import (
	"context"

	models "codearchive/internal/domain/models/archive"
)

// candidate is a fetched document still eligible for selection
type candidate struct {
	doc    *models.Document
	keys   map[string]struct{}
	picked bool
}

// coverSelect runs greedy set cover over candidates, which must be in
// repository fetch order.
//
// Each round picks the candidate covering the most remaining codes. Equal
// covers go to the newer document date when both dates parse and differ,
// and to the earlier candidate otherwise. The loop stops when nothing is
// left to cover or no candidate covers anything new. ctx is checked before
// every round.
func coverSelect(ctx context.Context, requested []requestedCode, docs []models.Document) (*models.SearchResult, error) {
	result := models.EmptySearchResult()

	remaining := make(map[string]struct{}, len(requested))
	for _, r := range requested {
		remaining[r.key] = struct{}{}
	}

	candidates := make([]candidate, len(docs))
	for i := range docs {
		keys := docs[i].Keys()
		set := make(map[string]struct{}, len(keys))
		for _, k := range keys {
			set[k] = struct{}{}
		}
		candidates[i] = candidate{doc: &docs[i], keys: set}
	}

	for left := len(candidates); len(remaining) > 0 && left > 0; left-- {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		best := -1
		var bestCover []requestedCode
		for i := range candidates {
			c := &candidates[i]
			if c.picked {
				continue
			}
			cover := coverOf(c, requested, remaining)
			if best < 0 || len(cover) > len(bestCover) ||
				(len(cover) == len(bestCover) && models.NewerDate(c.doc.Date, candidates[best].doc.Date)) {
				best = i
				bestCover = cover
			}
		}

		if best < 0 || len(bestCover) == 0 {
			break
		}

		winner := &candidates[best]
		winner.picked = true

		matched := make([]string, len(bestCover))
		for i, r := range bestCover {
			matched[i] = r.original
			delete(remaining, r.key)
		}
		result.SelectedDocuments = append(result.SelectedDocuments, models.SelectedDocument{
			Document:     *winner.doc,
			MatchedCodes: matched,
		})
	}

	for _, r := range requested {
		if _, ok := remaining[r.key]; ok {
			result.UncoveredCodes = append(result.UncoveredCodes, r.original)
		} else {
			result.CoveredCodes = append(result.CoveredCodes, r.key)
		}
	}

	return result, nil
}

// coverOf returns the remaining requested codes c owns, in request order.
func coverOf(c *candidate, requested []requestedCode, remaining map[string]struct{}) []requestedCode {
	var cover []requestedCode
	for _, r := range requested {
		if _, open := remaining[r.key]; !open {
			continue
		}
		if _, owns := c.keys[r.key]; owns {
			cover = append(cover, r)
		}
	}
	return cover
}
