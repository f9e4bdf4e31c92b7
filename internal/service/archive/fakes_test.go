package archive

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"codearchive/internal/cache"
	models "codearchive/internal/domain/models/archive"
	archiveRepo "codearchive/internal/domain/repositories/archive"
)

// fakeRepo is an in-memory DocumentRepository that counts calls.
// Documents are returned in slice order, like upload order.
type fakeRepo struct {
	mu         sync.Mutex
	docs       []models.Document
	err        error
	fetchCalls int
	findCalls  int
	lastKeys   []string
}

func newFakeRepo(docs ...models.Document) *fakeRepo {
	return &fakeRepo{docs: docs}
}

func (r *fakeRepo) FetchCandidates(ctx context.Context, tenantID string, keys []string) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchCalls++
	r.lastKeys = append([]string(nil), keys...)
	if r.err != nil {
		return nil, r.err
	}

	want := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}
	out := []models.Document{}
	for _, d := range r.docs {
		if d.TenantID != tenantID {
			continue
		}
		for _, k := range d.Keys() {
			if _, ok := want[k]; ok {
				out = append(out, cloneDoc(d))
				break
			}
		}
	}
	return out, nil
}

func (r *fakeRepo) FindByKey(ctx context.Context, tenantID, key string) ([]models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	if r.err != nil {
		return nil, r.err
	}

	out := []models.Document{}
	for _, d := range r.docs {
		if d.TenantID != tenantID {
			continue
		}
		if _, ok := d.CodeValue(key); ok {
			out = append(out, cloneDoc(d))
		}
	}
	return out, nil
}

func (r *fakeRepo) DistinctCodes(ctx context.Context, tenantID, prefix string, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}

	seen := map[string]struct{}{}
	out := []string{}
	for _, d := range r.docs {
		if d.TenantID != tenantID {
			continue
		}
		for _, c := range d.Codes {
			if !strings.HasPrefix(c.Value, prefix) {
				continue
			}
			if _, ok := seen[c.Value]; ok {
				continue
			}
			seen[c.Value] = struct{}{}
			out = append(out, c.Value)
		}
	}
	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeRepo) fetches() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fetchCalls
}

func (r *fakeRepo) finds() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findCalls
}

func cloneDoc(d models.Document) models.Document {
	d.Codes = append([]models.Code{}, d.Codes...)
	return d
}

// blockingRepo holds every read until release is closed or the call's
// context ends.
type blockingRepo struct {
	*fakeRepo
	started chan struct{}
	once    sync.Once
	release chan struct{}
}

func newBlockingRepo(docs ...models.Document) *blockingRepo {
	return &blockingRepo{
		fakeRepo: newFakeRepo(docs...),
		started:  make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (r *blockingRepo) wait(ctx context.Context) error {
	r.once.Do(func() { close(r.started) })
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.release:
		return nil
	}
}

func (r *blockingRepo) FetchCandidates(ctx context.Context, tenantID string, keys []string) ([]models.Document, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.fakeRepo.FetchCandidates(ctx, tenantID, keys)
}

func (r *blockingRepo) FindByKey(ctx context.Context, tenantID, key string) ([]models.Document, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	return r.fakeRepo.FindByKey(ctx, tenantID, key)
}

// failingCache fails every operation
type failingCache struct{}

var errCacheDown = errors.New("cache down")

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errCacheDown
}

func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errCacheDown
}

func (failingCache) Clear(context.Context, string) error {
	return errCacheDown
}

func doc(id, date string, codes ...string) models.Document {
	return models.Document{
		ID:       id,
		TenantID: "tenant-1",
		Type:     "invoice",
		Title:    "INV-" + id,
		Date:     date,
		Codes:    models.DedupeCodes(codes),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOptions() SearchOptions {
	return SearchOptions{
		SearchTTL:         10 * time.Minute,
		LookupTTL:         5 * time.Minute,
		RepositoryTimeout: time.Second,
		CacheTimeout:      100 * time.Millisecond,
	}
}

func newTestService(t *testing.T, repo *fakeRepo) (*codeSearchService, *cache.MemoryCache) {
	t.Helper()
	return newTestServiceWith(t, repo, testOptions())
}

func newTestServiceWith(t *testing.T, repo archiveRepo.DocumentRepository, opts SearchOptions) (*codeSearchService, *cache.MemoryCache) {
	t.Helper()
	mem, err := cache.NewMemoryCache(100, discardLogger())
	require.NoError(t, err)
	svc := NewCodeSearchService(repo, mem, opts, discardLogger()).(*codeSearchService)
	return svc, mem
}

func selectedIDs(r *models.SearchResult) []string {
	ids := make([]string, len(r.SelectedDocuments))
	for i, s := range r.SelectedDocuments {
		ids[i] = s.Document.ID
	}
	return ids
}
