package indexer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dyluth/pixellar/pkg/canvas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func placed(x, y uint64, color uint32, painter canvas.Identity, ts uint64) canvas.PlacedPixel {
	return canvas.PlacedPixel{
		Coord: canvas.Coord{X: x, Y: y},
		Pixel: canvas.Pixel{Color: color, Painter: painter, Timestamp: ts},
	}
}

func TestOpenDB_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	db, err := OpenDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Upsert(context.Background(), placed(1, 1, 1, "alice", 10)))
	require.NoError(t, db.Close())

	db, err = OpenDB(path)
	require.NoError(t, err)
	defer db.Close()

	_, found, err := db.Get(context.Background(), canvas.Coord{X: 1, Y: 1})
	require.NoError(t, err)
	assert.True(t, found, "rows survive reopening")
}

func TestUpsert(t *testing.T) {
	ctx := context.Background()

	t.Run("newer write replaces the row", func(t *testing.T) {
		db := setupDB(t)
		require.NoError(t, db.Upsert(ctx, placed(2, 3, 4, "alice", 10)))
		require.NoError(t, db.Upsert(ctx, placed(2, 3, 9, "bob", 11)))

		p, found, err := db.Get(ctx, canvas.Coord{X: 2, Y: 3})
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, canvas.Pixel{Color: 9, Painter: "bob", Timestamp: 11}, p)
	})

	t.Run("equal timestamp is last write wins", func(t *testing.T) {
		db := setupDB(t)
		require.NoError(t, db.Upsert(ctx, placed(2, 3, 4, "alice", 10)))
		require.NoError(t, db.Upsert(ctx, placed(2, 3, 5, "bob", 10)))

		p, _, err := db.Get(ctx, canvas.Coord{X: 2, Y: 3})
		require.NoError(t, err)
		assert.Equal(t, canvas.Identity("bob"), p.Painter)
	})

	t.Run("stale replay does not roll back", func(t *testing.T) {
		db := setupDB(t)
		require.NoError(t, db.Upsert(ctx, placed(2, 3, 9, "bob", 11)))
		require.NoError(t, db.Upsert(ctx, placed(2, 3, 4, "alice", 10)))

		p, _, err := db.Get(ctx, canvas.Coord{X: 2, Y: 3})
		require.NoError(t, err)
		assert.Equal(t, canvas.Pixel{Color: 9, Painter: "bob", Timestamp: 11}, p)
	})
}

func TestGet_Missing(t *testing.T) {
	db := setupDB(t)

	_, found, err := db.Get(context.Background(), canvas.Coord{X: 0, Y: 0})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestList_RowMajor(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	require.NoError(t, db.Upsert(ctx, placed(1, 0, 1, "a", 1)))
	require.NoError(t, db.Upsert(ctx, placed(0, 49, 2, "b", 2)))
	require.NoError(t, db.Upsert(ctx, placed(0, 2, 3, "c", 3)))

	pixels, err := db.List(ctx)
	require.NoError(t, err)
	require.Len(t, pixels, 3)
	assert.Equal(t, canvas.Coord{X: 0, Y: 2}, pixels[0].Coord)
	assert.Equal(t, canvas.Coord{X: 0, Y: 49}, pixels[1].Coord)
	assert.Equal(t, canvas.Coord{X: 1, Y: 0}, pixels[2].Coord)
	assert.Equal(t, canvas.Identity("c"), pixels[0].Pixel.Painter)
}

func TestPainterStats(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	require.NoError(t, db.Upsert(ctx, placed(0, 0, 1, "alice", 1)))
	require.NoError(t, db.Upsert(ctx, placed(0, 1, 1, "alice", 2)))
	require.NoError(t, db.Upsert(ctx, placed(0, 2, 1, "bob", 3)))
	require.NoError(t, db.Upsert(ctx, placed(0, 3, 1, "carol", 4)))
	// bob takes one of alice's cells
	require.NoError(t, db.Upsert(ctx, placed(0, 0, 2, "bob", 5)))

	stats, err := db.PainterStats(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []PainterStat{
		{Painter: "bob", Cells: 2},
		{Painter: "alice", Cells: 1},
		{Painter: "carol", Cells: 1},
	}, stats)

	top, err := db.PainterStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []PainterStat{{Painter: "bob", Cells: 2}}, top)
}
