package archive

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"codearchive/internal/cache"
	"codearchive/internal/config"
	"codearchive/internal/domain"
	models "codearchive/internal/domain/models/archive"
)

// FindByCode returns the documents owning code, newest first
func (s *codeSearchService) FindByCode(ctx context.Context, tenantID, code string) ([]models.CodeMatch, error) {
	if err := validateTenant(tenantID); err != nil {
		return nil, err
	}

	key := models.MatchingKey(code)
	if key == "" {
		return []models.CodeMatch{}, nil
	}
	if utf8.RuneCountInString(key) > config.MaxCodeLength {
		return nil, fmt.Errorf("%w: code longer than %d characters", domain.ErrValidation, config.MaxCodeLength)
	}

	cacheKey := cache.Key(tenantID, cache.KindLookup, key)
	var cached []models.CodeMatch
	if s.readCache(ctx, cacheKey, &cached) {
		s.logger.Debug("lookup cache hit", "tenant_id", tenantID, "key", key)
		return cached, nil
	}

	repoCtx, cancel := context.WithTimeout(ctx, s.opts.RepositoryTimeout)
	defer cancel()

	docs, err := s.repo.FindByKey(repoCtx, tenantID, key)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Error("find by code failed", "tenant_id", tenantID, "key", key, "error", err)
		return nil, domain.NewRepositoryError("find by code", err)
	}

	matches := make([]models.CodeMatch, 0, len(docs))
	for _, doc := range docs {
		value, ok := doc.CodeValue(key)
		if !ok {
			continue
		}
		matches = append(matches, models.CodeMatch{Document: doc, MatchedCode: value})
	}
	sortNewestFirst(matches)

	s.writeCache(ctx, cacheKey, matches, s.opts.LookupTTL)

	return matches, nil
}

// sortNewestFirst orders matches by parsed document date, descending.
// Unparsable dates sort last; ties keep fetch order.
func sortNewestFirst(matches []models.CodeMatch) {
	sort.SliceStable(matches, func(i, j int) bool {
		ti, okI := models.ParseDocumentDate(matches[i].Document.Date)
		tj, okJ := models.ParseDocumentDate(matches[j].Document.Date)
		switch {
		case okI && okJ:
			return ti.After(tj)
		case okI:
			return true
		default:
			return false
		}
	})
}

// Suggest returns distinct stored codes starting with prefix
func (s *codeSearchService) Suggest(ctx context.Context, tenantID, prefix string, limit int) ([]string, error) {
	if err := validateTenant(tenantID); err != nil {
		return nil, err
	}

	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []string{}, nil
	}
	if utf8.RuneCountInString(prefix) > config.MaxCodeLength {
		return []string{}, nil
	}
	limit = clampSuggestLimit(limit)

	repoCtx, cancel := context.WithTimeout(ctx, s.opts.RepositoryTimeout)
	defer cancel()

	codes, err := s.repo.DistinctCodes(repoCtx, tenantID, prefix, limit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, domain.NewRepositoryError("distinct codes", err)
	}

	// Backends differ in collation; present byte order regardless
	sort.Strings(codes)
	if len(codes) > limit {
		codes = codes[:limit]
	}
	return codes, nil
}

func clampSuggestLimit(limit int) int {
	if limit <= 0 {
		return config.DefaultSuggestLimit
	}
	if limit > config.MaxSuggestLimit {
		return config.MaxSuggestLimit
	}
	return limit
}
