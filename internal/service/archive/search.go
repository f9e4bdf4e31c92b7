package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/sync/singleflight"

	"codearchive/internal/cache"
	"codearchive/internal/config"
	"codearchive/internal/domain"
	models "codearchive/internal/domain/models/archive"
	archiveRepo "codearchive/internal/domain/repositories/archive"
	"codearchive/internal/domain/services"
	archiveSvc "codearchive/internal/domain/services/archive"
)

// SearchOptions holds the cache TTLs and collaborator timeouts
type SearchOptions struct {
	SearchTTL         time.Duration
	LookupTTL         time.Duration
	RepositoryTimeout time.Duration
	CacheTimeout      time.Duration
}

// SearchOptionsFromConfig reads the search settings from cfg
func SearchOptionsFromConfig(cfg *config.Config) SearchOptions {
	return SearchOptions{
		SearchTTL:         cfg.SearchCacheTTL,
		LookupTTL:         cfg.LookupCacheTTL,
		RepositoryTimeout: cfg.RepositoryTimeout,
		CacheTimeout:      cfg.CacheTimeout,
	}
}

// codeSearchService implements the CodeSearchService interface
type codeSearchService struct {
	repo   archiveRepo.DocumentRepository
	cache  services.Cache
	opts   SearchOptions
	group  singleflight.Group
	logger *slog.Logger
}

// NewCodeSearchService creates a new code search service
func NewCodeSearchService(
	repo archiveRepo.DocumentRepository,
	cache services.Cache,
	opts SearchOptions,
	logger *slog.Logger,
) archiveSvc.CodeSearchService {
	return &codeSearchService{
		repo:   repo,
		cache:  cache,
		opts:   opts,
		logger: logger,
	}
}

// Search runs a coverage search behind the read-through cache
func (s *codeSearchService) Search(ctx context.Context, tenantID string, codes []string) (*models.SearchResult, error) {
	if err := validateTenant(tenantID); err != nil {
		return nil, err
	}

	requested := normalizeRequest(codes)
	if len(requested) == 0 {
		return models.EmptySearchResult(), nil
	}
	if len(requested) > config.MaxRequestedCodes {
		return nil, fmt.Errorf("%w: at most %d codes per search, got %d",
			domain.ErrValidation, config.MaxRequestedCodes, len(requested))
	}

	keys := make([]string, len(requested))
	for i, r := range requested {
		keys[i] = r.key
	}
	sort.Strings(keys)
	cacheKey := cache.Key(tenantID, cache.KindSearch, keys...)

	var cached models.SearchResult
	if s.readCache(ctx, cacheKey, &cached) {
		s.logger.Debug("search cache hit", "tenant_id", tenantID, "codes", len(requested))
		return &cached, nil
	}

	docs, shared, err := s.sharedFetch(ctx, tenantID, cacheKey, keys)
	if err != nil {
		return nil, err
	}

	// Selection uses this caller's spellings and ctx
	result, err := coverSelect(ctx, requested, docs)
	if err != nil {
		return nil, err
	}

	s.writeCache(ctx, cacheKey, result, s.opts.SearchTTL)

	s.logger.Info("search completed",
		"tenant_id", tenantID,
		"requested", len(requested),
		"selected", len(result.SelectedDocuments),
		"uncovered", len(result.UncoveredCodes),
		"shared", shared,
	)

	return result, nil
}

// sharedFetch loads candidates once for all concurrent misses on the same
// key. The fetch is detached from whichever caller started it and bounded
// by RepositoryTimeout alone; every caller still returns as soon as its own
// ctx is done.
func (s *codeSearchService) sharedFetch(ctx context.Context, tenantID, cacheKey string, keys []string) ([]models.Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	ch := s.group.DoChan(cacheKey, func() (interface{}, error) {
		return s.fetchCandidates(context.WithoutCancel(ctx), tenantID, keys)
	})

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Shared, res.Err
		}
		return res.Val.([]models.Document), res.Shared, nil
	}
}

func (s *codeSearchService) fetchCandidates(ctx context.Context, tenantID string, keys []string) ([]models.Document, error) {
	repoCtx, cancel := context.WithTimeout(ctx, s.opts.RepositoryTimeout)
	defer cancel()

	docs, err := s.repo.FetchCandidates(repoCtx, tenantID, keys)
	if err != nil {
		s.logger.Error("fetch candidates failed", "tenant_id", tenantID, "error", err)
		return nil, domain.NewRepositoryError("fetch candidates", err)
	}
	return docs, nil
}

// SearchText parses pasted text and searches for its codes
func (s *codeSearchService) SearchText(ctx context.Context, tenantID, raw string) (*models.SearchResult, error) {
	return s.Search(ctx, tenantID, ParsePastedCodes(raw))
}

// InvalidateTenant drops every cached search and lookup of the tenant
func (s *codeSearchService) InvalidateTenant(ctx context.Context, tenantID string) error {
	if err := validateTenant(tenantID); err != nil {
		return err
	}
	cacheCtx, cancel := context.WithTimeout(ctx, s.opts.CacheTimeout)
	defer cancel()

	if err := s.cache.Clear(cacheCtx, tenantID); err != nil {
		return fmt.Errorf("clear cache for tenant %s: %w", tenantID, err)
	}
	s.logger.Info("tenant cache invalidated", "tenant_id", tenantID)
	return nil
}

// readCache decodes a cached value into dst. Any failure counts as a miss.
func (s *codeSearchService) readCache(ctx context.Context, key string, dst interface{}) bool {
	cacheCtx, cancel := context.WithTimeout(ctx, s.opts.CacheTimeout)
	defer cancel()

	data, ok, err := s.cache.Get(cacheCtx, key)
	if err != nil {
		s.logger.Warn("cache read failed", "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("cache entry undecodable", "error", err)
		return false
	}
	return true
}

// writeCache stores value under key; failures are logged and dropped.
func (s *codeSearchService) writeCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache entry unencodable", "error", err)
		return
	}

	cacheCtx, cancel := context.WithTimeout(ctx, s.opts.CacheTimeout)
	defer cancel()

	if err := s.cache.Set(cacheCtx, key, data, ttl); err != nil {
		s.logger.Warn("cache write failed", "error", err)
	}
}

func validateTenant(tenantID string) error {
	err := validation.Validate(tenantID,
		validation.Required,
		validation.Length(1, config.MaxTenantIDLength),
	)
	if err != nil {
		return fmt.Errorf("%w: tenant id: %v", domain.ErrValidation, err)
	}
	return nil
}
