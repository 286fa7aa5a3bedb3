package library

import (
	"bytes"
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/symbol-tools-mcp/internal/testutil"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "templates.db")
	store, err := OpenStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	and := newTemplate(t, "AND", "Gate", "ansi", testutil.AndGate())
	not := newTemplate(t, "NOT", "Gate", "", testutil.NotGate())
	require.NoError(t, store.Save(ctx, and, not))

	got, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, and.ID, got[0].ID)
	assert.Equal(t, "AND", got[0].Label)
	assert.Equal(t, "Gate", got[0].Class)
	assert.Equal(t, "ansi", got[0].Platform)
	assert.Equal(t, and.Points, got[0].Points)
	assert.Equal(t, and.Raster().PolarCells, got[0].Raster().PolarCells)
	assert.Equal(t, not.ID, got[1].ID)
}

func TestStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	and := newTemplate(t, "AND", "Gate", "", testutil.AndGate())
	require.NoError(t, store.Save(ctx, and))
	require.NoError(t, store.Save(ctx, and))

	got, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStore_SaveKeepsFirstSavedOrder(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	and := newTemplate(t, "AND", "Gate", "", testutil.AndGate())
	not := newTemplate(t, "NOT", "Gate", "", testutil.NotGate())
	require.NoError(t, store.Save(ctx, and, not))

	and.Label = "AND2"
	require.NoError(t, store.Save(ctx, and))

	got, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, and.ID, got[0].ID)
	assert.Equal(t, "AND2", got[0].Label)
	assert.Equal(t, not.ID, got[1].ID)
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	and := newTemplate(t, "AND", "Gate", "", testutil.AndGate())
	require.NoError(t, store.Save(ctx, and))

	require.NoError(t, store.Delete(ctx, and.ID))
	assert.ErrorIs(t, store.Delete(ctx, and.ID), ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, uuid.New()), ErrNotFound)

	got, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStore_Reopen(t *testing.T) {
	ctx := context.Background()
	store, path := openTestStore(t)

	sq := newTemplate(t, "box", "Shape", "", testutil.Square())
	require.NoError(t, store.Save(ctx, sq))
	require.NoError(t, store.Close())

	lib, reopened, err := Load(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	require.Equal(t, 1, lib.Len())
	got, err := lib.Get(sq.ID)
	require.NoError(t, err)
	assert.Equal(t, sq.Points, got.Points)
}

func TestStore_Memory(t *testing.T) {
	store, err := OpenStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	got, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpenStore_MigrationLog(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	quiet, err := OpenStore(filepath.Join(t.TempDir(), "quiet.db"))
	require.NoError(t, err)
	quiet.Close()
	assert.Empty(t, buf.String())

	loud, err := OpenStore(filepath.Join(t.TempDir(), "loud.db"), WithMigrationLog(true))
	require.NoError(t, err)
	loud.Close()
	assert.Contains(t, buf.String(), "[migrate]")
}
