package service

import (
	"context"
	"errors"
	"testing"

	apperrors "showpro/internal/errors"
	"showpro/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func artistTable(rows ...models.Artist) *fakeTable[models.Artist] {
	return &fakeTable[models.Artist]{rows: rows, id: func(a *models.Artist) *int64 { return &a.ID }}
}

func TestCatalogIndexesWrites(t *testing.T) {
	index := newFakeIndex()
	artists := NewCatalog[models.Artist](artistTable(), index, "artist", "artist")
	ctx := context.Background()

	a, err := artists.Create(ctx, &models.Artist{Name: "The Trio", StageName: ptr("Trio")})
	require.NoError(t, err)
	assert.Equal(t, models.SearchDoc{Kind: "artist", ID: a.ID, Name: "The Trio", Info: "Trio"}, index.docs["artist-1"])

	_, err = artists.Update(ctx, a.ID, &models.Artist{Name: "The Quartet"})
	require.NoError(t, err)
	assert.Equal(t, "The Quartet", index.docs["artist-1"].Name)

	require.NoError(t, artists.Delete(ctx, a.ID))
	assert.Equal(t, []string{"artist-1"}, index.deleted)

	_, err = artists.Get(ctx, a.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.ErrorIs(t, artists.Delete(ctx, a.ID), apperrors.ErrNotFound)
}

func TestCatalogIndexFailureIsNotFatal(t *testing.T) {
	index := newFakeIndex()
	index.err = errors.New("es down")
	artists := NewCatalog[models.Artist](artistTable(), index, "artist", "artist")

	_, err := artists.Create(context.Background(), &models.Artist{Name: "Solo"})
	assert.NoError(t, err)
}

func TestCatalogWithoutKindSkipsIndex(t *testing.T) {
	index := newFakeIndex()
	teams := NewCatalog[models.Team](&fakeTable[models.Team]{id: func(t *models.Team) *int64 { return &t.ID }}, index, "team", "")

	_, err := teams.Create(context.Background(), &models.Team{Name: "Crew"})
	require.NoError(t, err)
	assert.Empty(t, index.docs)

	n, err := teams.Reindex(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCatalogReindex(t *testing.T) {
	index := newFakeIndex()
	artists := NewCatalog[models.Artist](artistTable(models.Artist{ID: 1, Name: "A"}, models.Artist{ID: 2, Name: "B"}), index, "artist", "artist")

	n, err := artists.Reindex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, index.docs, 2)
}

func TestDirectorySearch(t *testing.T) {
	index := newFakeIndex()
	index.docs["client-1"] = models.SearchDoc{Kind: "client", ID: 1, Name: "Acme Events"}
	svc := &DirectoryService{index: index}

	docs, err := svc.Search(context.Background(), "acme", nil)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	docs, err = svc.Search(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Empty(t, docs)

	docs, err = (&DirectoryService{}).Search(context.Background(), "acme", nil)
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}
