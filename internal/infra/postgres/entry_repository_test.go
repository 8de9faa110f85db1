package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"bloglist/internal/domain/entry"
)

func TestEntryRepository(t *testing.T) {
	pool, terminate := setupPostgres(t)
	defer terminate()

	ctx := context.Background()
	users := NewUserRepository(pool)
	repo := NewEntryRepository(pool)

	root := insertUser(t, users, "root")
	other := insertUser(t, users, "mluukkai")

	first := testEntry(root, func(e *entry.Entry) {
		e.Title = "React patterns"
		e.Author = "Michael Chan"
		e.Likes = 3
	})
	second := testEntry(other, func(e *entry.Entry) {
		e.Title = "Go To Statement Considered Harmful"
		e.Likes = 67
		e.CreatedAt = first.CreatedAt.Add(time.Second)
		e.UpdatedAt = e.CreatedAt
	})
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	t.Run("get joins owner projection", func(t *testing.T) {
		got, err := repo.Get(ctx, first.ID)
		require.NoError(t, err)
		assertEntryEqual(t, first, got)
		require.Equal(t, "ROOT", got.Owner.Name)
	})

	t.Run("get unknown id", func(t *testing.T) {
		_, err := repo.Get(ctx, uuid.New())
		require.ErrorIs(t, err, entry.ErrNotFound)
	})

	t.Run("list in insertion order", func(t *testing.T) {
		got, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, first.ID, got[0].ID)
		require.Equal(t, second.ID, got[1].ID)
		require.Empty(t, got[1].Author)
	})

	t.Run("list by ids skips unknown", func(t *testing.T) {
		got, err := repo.ListByIDs(ctx, []entry.ID{second.ID, uuid.New()})
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, second.ID, got[0].ID)

		got, err = repo.ListByIDs(ctx, nil)
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("update keeps owner", func(t *testing.T) {
		updated := *first
		updated.Likes = 11
		updated.Title = ""
		updated.UpdatedAt = time.Now().UTC()
		require.NoError(t, repo.Update(ctx, &updated))

		got, err := repo.Get(ctx, first.ID)
		require.NoError(t, err)
		require.Equal(t, 11, got.Likes)
		require.Empty(t, got.Title)
		require.Equal(t, root.ID, got.Owner.ID)
	})

	t.Run("update rejects negative likes", func(t *testing.T) {
		updated := *second
		updated.Likes = -1
		err := repo.Update(ctx, &updated)
		require.ErrorIs(t, err, entry.ErrNegativeLikes)
	})

	t.Run("update unknown id", func(t *testing.T) {
		missing := testEntry(root)
		require.ErrorIs(t, repo.Update(ctx, missing), entry.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, second.ID))
		_, err := repo.Get(ctx, second.ID)
		require.ErrorIs(t, err, entry.ErrNotFound)
		require.ErrorIs(t, repo.Delete(ctx, second.ID), entry.ErrNotFound)
	})
}
