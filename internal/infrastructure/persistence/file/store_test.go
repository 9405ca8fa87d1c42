package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flow-writer-api/internal/config"
	"flow-writer-api/internal/domain/entity"
	"flow-writer-api/pkg/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(&config.FileConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)
	return store
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := entity.NewProject("末日废土上的最后一家书店")
	p.Synopsis = "书店老板守着人类最后的藏书"
	p.WritingStyle = "冷峻克制"
	p.Characters = []entity.Character{entity.NewCharacter("陈默", "主角", "沉默寡言的书店老板")}
	p.Chapters = []entity.Chapter{entity.NewOutlineChapter(1, "开端", "废土的清晨")}

	require.NoError(t, store.Save(ctx, p))

	got, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.InitialIdea, got.InitialIdea)
	assert.Equal(t, p.Synopsis, got.Synopsis)
	require.Len(t, got.Characters, 1)
	assert.Equal(t, "陈默", got.Characters[0].Name)
	require.Len(t, got.Chapters, 1)
	assert.Equal(t, entity.ChapterStatusOutline, got.Chapters[0].Status)
}

func TestGetMissingReturnsProjectNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, errors.ErrProjectNotFound)
}

func TestSaveOverwritesExistingDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := entity.NewProject("想法")
	require.NoError(t, store.Save(ctx, p))

	p.Synopsis = "改写后的梗概"
	p.Touch()
	require.NoError(t, store.Save(ctx, p))

	got, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "改写后的梗概", got.Synopsis)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := entity.NewProject("想法")
	require.NoError(t, store.Save(ctx, p))
	require.NoError(t, store.Delete(ctx, p.ID))

	_, err := store.Get(ctx, p.ID)
	assert.ErrorIs(t, err, errors.ErrProjectNotFound)

	assert.ErrorIs(t, store.Delete(ctx, p.ID), errors.ErrProjectNotFound)
}

func TestListSummariesOrderedByUpdatedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	old := entity.NewProject("旧项目")
	old.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	recent := entity.NewProject("新项目")
	recent.UpdatedAt = time.Now().UTC()

	require.NoError(t, store.Save(ctx, old))
	require.NoError(t, store.Save(ctx, recent))

	summaries, err := store.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, recent.ID, summaries[0].ID)
	assert.Equal(t, old.ID, summaries[1].ID)
	assert.Equal(t, "新项目", summaries[0].InitialIdea)
}

func TestListSummariesSkipsCorruptFiles(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := entity.NewProject("正常项目")
	require.NoError(t, store.Save(ctx, p))
	require.NoError(t, os.WriteFile(filepath.Join(store.baseDir, "broken.json"), []byte("{not json"), 0o644))

	summaries, err := store.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, p.ID, summaries[0].ID)
}

func TestProjectPathRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	for _, id := range []string{"", "..", "a/b", `a\b`} {
		_, err := store.Get(context.Background(), id)
		assert.ErrorIs(t, err, errors.ErrInvalidParam, "id=%q", id)
	}
}

func TestPing(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}
