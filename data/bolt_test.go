package data_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senomas/bookloader/data"
	"github.com/senomas/bookloader/graph/model"
)

func TestBoltStore(t *testing.T) {
	ctx := context.Background()
	store, err := data.OpenBolt(filepath.Join(t.TempDir(), "catalog.db"), time.Second)
	require.NoError(t, err)
	defer store.Close()

	t.Run("empty store finds nothing", func(t *testing.T) {
		books, err := store.BooksByID(ctx, []int{1})
		require.NoError(t, err)
		assert.Empty(t, books)
	})

	require.NoError(t, store.Seed(ctx, data.DefaultCatalog()))

	t.Run("records by id", func(t *testing.T) {
		books, err := store.BooksByID(ctx, []int{1, 6, 99})
		require.NoError(t, err)
		assert.Equal(t, map[int]*model.Book{
			1: {ID: 1, Title: "Harry Potter and the Sorcerer's Stone", AuthorID: 1},
			6: {ID: 6, Title: "The Tales of Beedle the Bard", AuthorID: 4},
		}, books)

		authors, err := store.AuthorsByID(ctx, []int{2})
		require.NoError(t, err)
		assert.Equal(t, map[int]*model.Author{2: {ID: 2, Name: "Lord Voldermort"}}, authors)

		reviews, err := store.ReviewsByID(ctx, []int{3, 7})
		require.NoError(t, err)
		assert.Len(t, reviews, 2)
		assert.Equal(t, "Fake Books", reviews[3].Content)
	})

	t.Run("relations by parent", func(t *testing.T) {
		refs, err := store.BookReviewsByBookID(ctx, []int{1, 6})
		require.NoError(t, err)
		assert.Equal(t, map[int][]*model.BookReview{
			1: {{ReviewID: 1, BookID: 1}, {ReviewID: 4, BookID: 1}},
		}, refs)

		authorRefs, err := store.AuthorReviewsByAuthorID(ctx, []int{1, 4})
		require.NoError(t, err)
		assert.Equal(t, map[int][]*model.AuthorReview{1: {{ReviewID: 7, AuthorID: 1}}}, authorRefs)
	})
}
