package catalog_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colorkeep/colorkeep/pkg/catalog"
	"github.com/colorkeep/colorkeep/pkg/models"
	"github.com/colorkeep/colorkeep/pkg/sqlite"
)

func newService(t *testing.T) *catalog.Service {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "catalog.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return catalog.NewService(db, sqlite.NewColorStore(db))
}

func TestSeedIfEmpty(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.SeedIfEmpty(ctx))

	list, err := svc.ListAllOnce(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, list)

	// a second seed must not duplicate the palette
	require.NoError(t, svc.SeedIfEmpty(ctx))
	again, err := svc.ListAllOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, again)
}

func TestInsertAndGetByID(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	record := models.NewColorRecord("Indigo", 0xff4b0082)
	require.NoError(t, svc.Insert(ctx, &record))
	require.NotZero(t, record.ID)

	got, err := svc.GetByID(ctx, record.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, record, *got)
}

func TestGetByHueRange(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.InsertAll(ctx, []models.ColorRecord{
		models.NewColorRecord("Red", 0xffff0000),
		models.NewColorRecord("Green", 0xff00ff00),
		models.NewColorRecord("Blue", 0xff0000ff),
	})
	require.NoError(t, err)

	got, err := svc.GetByHueRange(ctx, 100, 250)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Green", got[0].Name)
	assert.Equal(t, "Blue", got[1].Name)
}

func TestListAllEmitsAfterEveryMutation(t *testing.T) {
	svc := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := svc.ListAll(ctx)
	assert.Empty(t, receiveList(t, ch))

	record := models.NewColorRecord("Amber", 0xffffbf00)
	require.NoError(t, svc.Insert(ctx, &record))

	list := receiveList(t, ch)
	require.Len(t, list, 1)
	assert.Equal(t, "Amber", list[0].Name)

	require.NoError(t, svc.UpdateFavorite(ctx, record.ID, true))
	list = receiveList(t, ch)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsFavorite)

	require.NoError(t, svc.DeleteByID(ctx, record.ID))
	assert.Empty(t, receiveList(t, ch))
}

func TestListAllMultipleWatchers(t *testing.T) {
	svc := newService(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := svc.ListAll(ctx)
	b := svc.ListAll(ctx)
	receiveList(t, a)
	receiveList(t, b)

	record := models.NewColorRecord("Shared", 0xff808000)
	require.NoError(t, svc.Insert(ctx, &record))

	assert.Len(t, receiveList(t, a), 1)
	assert.Len(t, receiveList(t, b), 1)
}

func TestListAllClosedOnCancel(t *testing.T) {
	svc := newService(t)

	ctx, cancel := context.WithCancel(context.Background())
	ch := svc.ListAll(ctx)
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("watch channel was not closed after cancel")
		}
	}
}

func receiveList(t *testing.T, ch <-chan []models.ColorRecord) []models.ColorRecord {
	t.Helper()
	select {
	case list, ok := <-ch:
		require.True(t, ok, "watch channel closed unexpectedly")
		return list
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for catalog list")
		return nil
	}
}
