package sqlite

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codearchive/internal/domain"
	models "codearchive/internal/domain/models/archive"
)

func newTestRepo(t *testing.T) *DocumentRepository {
	t.Helper()
	db, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewDocumentRepository(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func saveDoc(t *testing.T, repo *DocumentRepository, tenant, title, date string, codes ...string) *models.Document {
	t.Helper()
	doc := &models.Document{
		TenantID: tenant,
		Type:     "invoice",
		Title:    title,
		Date:     date,
		Codes:    models.DedupeCodes(codes),
	}
	require.NoError(t, repo.Save(context.Background(), doc))
	require.NotEmpty(t, doc.ID)
	return doc
}

func TestFetchCandidates_UploadOrderAndAllCodes(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	d1 := saveDoc(t, repo, "t1", "INV-1", "2024-01-01", "a-1", "B2", "C3")
	d2 := saveDoc(t, repo, "t1", "INV-2", "2024-02-01", "C3", "D4")
	saveDoc(t, repo, "t1", "INV-3", "2024-03-01", "Z9")
	saveDoc(t, repo, "t2", "OTHER", "2024-03-01", "A1")

	docs, err := repo.FetchCandidates(ctx, "t1", []string{"A1", "D4"})
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, d1.ID, docs[0].ID)
	assert.Equal(t, d2.ID, docs[1].ID)

	// Every code of a candidate comes back, not only the matching ones
	assert.Equal(t, []string{"A1", "B2", "C3"}, docs[0].Keys())
	assert.Equal(t, "a-1", docs[0].Codes[0].Value)
	assert.Equal(t, []string{"C3", "D4"}, docs[1].Keys())
}

func TestFetchCandidates_EmptyKeys(t *testing.T) {
	repo := newTestRepo(t)

	docs, err := repo.FetchCandidates(context.Background(), "t1", nil)
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestFindByKey(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saveDoc(t, repo, "t1", "INV-1", "2024-01-01", "X-1", "Y")
	saveDoc(t, repo, "t1", "INV-2", "2024-02-01", "Y")
	saveDoc(t, repo, "t2", "INV-3", "2024-02-01", "X1")

	docs, err := repo.FindByKey(ctx, "t1", "X1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "INV-1", docs[0].Title)

	docs, err = repo.FindByKey(ctx, "t1", "NOPE")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDistinctCodes_CaseSensitivePrefix(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saveDoc(t, repo, "t1", "INV-1", "", "AB-2", "AB-1", "ab-3", "CD")
	saveDoc(t, repo, "t1", "INV-2", "", "AB-1", "A%B")
	saveDoc(t, repo, "t2", "INV-3", "", "AB-9")

	codes, err := repo.DistinctCodes(ctx, "t1", "AB", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"AB-1", "AB-2"}, codes)

	codes, err = repo.DistinctCodes(ctx, "t1", "A%", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"A%B"}, codes)

	codes, err = repo.DistinctCodes(ctx, "t1", "AB", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"AB-1"}, codes)
}

func TestSave_ReplacesCodesAndKeepsOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := saveDoc(t, repo, "t1", "INV-1", "2024-01-01", "A1", "B2")
	second := saveDoc(t, repo, "t1", "INV-2", "2024-01-01", "B2")

	first.Title = "INV-1-rev"
	first.Codes = models.DedupeCodes([]string{"C3", "B2"})
	require.NoError(t, repo.Save(ctx, first))

	docs, err := repo.FetchCandidates(ctx, "t1", []string{"A1"})
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = repo.FetchCandidates(ctx, "t1", []string{"B2"})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	// Re-saving does not move a document to the end of the upload order
	assert.Equal(t, first.ID, docs[0].ID)
	assert.Equal(t, "INV-1-rev", docs[0].Title)
	assert.Equal(t, []string{"C3", "B2"}, docs[0].Keys())
	assert.Equal(t, second.ID, docs[1].ID)
}

func TestSave_OtherTenantCannotOverwrite(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	doc := saveDoc(t, repo, "t1", "INV-1", "", "A1")

	hijack := &models.Document{
		ID:       doc.ID,
		TenantID: "t2",
		Title:    "mine now",
		Codes:    models.DedupeCodes([]string{"Z"}),
	}
	err := repo.Save(ctx, hijack)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	docs, err := repo.FetchCandidates(ctx, "t1", []string{"A1"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "INV-1", docs[0].Title)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	doc := saveDoc(t, repo, "t1", "INV-1", "", "A1")

	err := repo.Delete(ctx, "t2", doc.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, repo.Delete(ctx, "t1", doc.ID))

	docs, err := repo.FetchCandidates(ctx, "t1", []string{"A1"})
	require.NoError(t, err)
	assert.Empty(t, docs)

	err = repo.Delete(ctx, "t1", doc.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
