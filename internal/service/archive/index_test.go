package archive

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codearchive/internal/cache"
	"codearchive/internal/domain"
	models "codearchive/internal/domain/models/archive"
	archiveSvc "codearchive/internal/domain/services/archive"
	"codearchive/internal/repository/sqlite"
)

// recordingWriter is a DocumentWriter that keeps saved documents in memory
type recordingWriter struct {
	saved   []models.Document
	deleted []string
	saveErr error
}

func (w *recordingWriter) Save(_ context.Context, doc *models.Document) error {
	if w.saveErr != nil {
		return w.saveErr
	}
	if doc.ID == "" {
		doc.ID = "generated"
	}
	w.saved = append(w.saved, *doc)
	return nil
}

func (w *recordingWriter) Delete(_ context.Context, tenantID, id string) error {
	for _, d := range w.saved {
		if d.ID == id && d.TenantID == tenantID {
			w.deleted = append(w.deleted, id)
			return nil
		}
	}
	return domain.ErrNotFound
}

// countingInvalidator records cache-bust calls
type countingInvalidator struct {
	tenants []string
	err     error
}

func (c *countingInvalidator) InvalidateTenant(_ context.Context, tenantID string) error {
	c.tenants = append(c.tenants, tenantID)
	return c.err
}

func TestSaveDocument(t *testing.T) {
	writer := &recordingWriter{}
	inv := &countingInvalidator{}
	svc := NewIndexService(writer, inv, discardLogger())

	ref := "scans/2024/inv-17.pdf"
	doc, err := svc.SaveDocument(context.Background(), &archiveSvc.SaveDocumentRequest{
		TenantID:  "tenant-1",
		Type:      " invoice ",
		Title:     "INV-17",
		Date:      "17.03.2024",
		SourceRef: &ref,
		Codes:     []string{"ab-1", " AB1 ", "", "C-2", "c2", "D3"},
	})
	require.NoError(t, err)

	assert.Equal(t, "generated", doc.ID)
	assert.Equal(t, "invoice", doc.Type)
	assert.Equal(t, []models.Code{
		{Value: "ab-1", Key: "AB1"},
		{Value: "C-2", Key: "C2"},
		{Value: "D3", Key: "D3"},
	}, doc.Codes)
	assert.Equal(t, []string{"tenant-1"}, inv.tenants)
}

func TestSaveDocument_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  archiveSvc.SaveDocumentRequest
	}{
		{name: "missing tenant", req: archiveSvc.SaveDocumentRequest{Title: "T"}},
		{name: "missing title", req: archiveSvc.SaveDocumentRequest{TenantID: "t"}},
		{name: "title too long", req: archiveSvc.SaveDocumentRequest{TenantID: "t", Title: strings.Repeat("x", 256)}},
		{name: "code too long", req: archiveSvc.SaveDocumentRequest{TenantID: "t", Title: "T", Codes: []string{strings.Repeat("c", 129)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := &recordingWriter{}
			inv := &countingInvalidator{}
			svc := NewIndexService(writer, inv, discardLogger())

			req := tt.req
			_, err := svc.SaveDocument(context.Background(), &req)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, writer.saved)
			assert.Empty(t, inv.tenants)
		})
	}
}

func TestSaveDocument_InvalidationFailureIsNotFatal(t *testing.T) {
	writer := &recordingWriter{}
	inv := &countingInvalidator{err: errCacheDown}
	svc := NewIndexService(writer, inv, discardLogger())

	_, err := svc.SaveDocument(context.Background(), &archiveSvc.SaveDocumentRequest{
		TenantID: "tenant-1",
		Title:    "INV-1",
		Codes:    []string{"A1"},
	})
	require.NoError(t, err)
	assert.Len(t, writer.saved, 1)
}

func TestRemoveDocument(t *testing.T) {
	writer := &recordingWriter{saved: []models.Document{{ID: "d1", TenantID: "tenant-1"}}}
	inv := &countingInvalidator{}
	svc := NewIndexService(writer, inv, discardLogger())
	ctx := context.Background()

	err := svc.RemoveDocument(ctx, "tenant-2", "d1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, inv.tenants)

	require.NoError(t, svc.RemoveDocument(ctx, "tenant-1", "d1"))
	assert.Equal(t, []string{"d1"}, writer.deleted)
	assert.Equal(t, []string{"tenant-1"}, inv.tenants)

	err = svc.RemoveDocument(ctx, "tenant-1", " ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// TestIndexAndSearch wires the services to a real SQLite store and cache
// and checks that writes are visible to the next search.
func TestIndexAndSearch(t *testing.T) {
	ctx := context.Background()

	db, err := sqlite.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := sqlite.NewDocumentRepository(db, discardLogger())

	mem, err := cache.NewMemoryCache(100, discardLogger())
	require.NoError(t, err)

	search := NewCodeSearchService(repo, mem, testOptions(), discardLogger())
	index := NewIndexService(repo, search, discardLogger())

	d1, err := index.SaveDocument(ctx, &archiveSvc.SaveDocumentRequest{
		TenantID: "tenant-1", Title: "D1", Date: "2024-01-10", Codes: []string{"A1", "A2"},
	})
	require.NoError(t, err)

	result, err := search.Search(ctx, "tenant-1", []string{"A1", "A2", "A3"})
	require.NoError(t, err)
	assert.Equal(t, []string{d1.ID}, selectedIDs(result))
	assert.Equal(t, []string{"A3"}, result.UncoveredCodes)
	require.Positive(t, mem.Len())

	d2, err := index.SaveDocument(ctx, &archiveSvc.SaveDocumentRequest{
		TenantID: "tenant-1", Title: "D2", Date: "2024-02-15", Codes: []string{"A2", "A-3"},
	})
	require.NoError(t, err)

	result, err = search.Search(ctx, "tenant-1", []string{"A1", "A2", "A3"})
	require.NoError(t, err)
	assert.Equal(t, []string{d2.ID, d1.ID}, selectedIDs(result))
	assert.Empty(t, result.UncoveredCodes)

	matches, err := search.FindByCode(ctx, "tenant-1", "a3")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "A-3", matches[0].MatchedCode)

	require.NoError(t, index.RemoveDocument(ctx, "tenant-1", d2.ID))

	matches, err = search.FindByCode(ctx, "tenant-1", "a3")
	require.NoError(t, err)
	assert.Empty(t, matches)

	codes, err := search.Suggest(ctx, "tenant-1", "A", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, codes)
}
