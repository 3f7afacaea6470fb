package data_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senomas/bookloader/graph/model"
)

func TestGormStore(t *testing.T) {
	ctx := context.Background()

	t.Run("books by id", func(t *testing.T) {
		store, mock := setupMock(t)
		mock.ExpectQuery(QuoteMeta(`SELECT * FROM "books" WHERE id IN ($1,$2,$3)`)).
			WithArgs(1, 2, 9).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "author_id"}).
				AddRow(1, "Harry Potter and the Sorcerer's Stone", 1).
				AddRow(2, "Harry Potter and the Chamber of Secrets", 1))

		books, err := store.BooksByID(ctx, []int{1, 2, 9})
		require.NoError(t, err)
		assert.Equal(t, map[int]*model.Book{
			1: {ID: 1, Title: "Harry Potter and the Sorcerer's Stone", AuthorID: 1},
			2: {ID: 2, Title: "Harry Potter and the Chamber of Secrets", AuthorID: 1},
		}, books)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("authors by id", func(t *testing.T) {
		store, mock := setupMock(t)
		mock.ExpectQuery(QuoteMeta(`SELECT * FROM "authors" WHERE id IN ($1,$2)`)).
			WithArgs(1, 2).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "J.K. Rowling").AddRow(2, "Lord Voldermort"))

		authors, err := store.AuthorsByID(ctx, []int{1, 2})
		require.NoError(t, err)
		assert.Equal(t, map[int]*model.Author{
			1: {ID: 1, Name: "J.K. Rowling"},
			2: {ID: 2, Name: "Lord Voldermort"},
		}, authors)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reviews by id", func(t *testing.T) {
		store, mock := setupMock(t)
		mock.ExpectQuery(QuoteMeta(`SELECT * FROM "reviews" WHERE id IN ($1)`)).
			WithArgs(4).
			WillReturnRows(sqlmock.NewRows([]string{"id", "content", "rating"}).AddRow(4, "The Man With Funny Hat", 3))

		reviews, err := store.ReviewsByID(ctx, []int{4})
		require.NoError(t, err)
		assert.Equal(t, map[int]*model.Review{4: {ID: 4, Content: "The Man With Funny Hat", Rating: 3}}, reviews)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("book reviews grouped by book", func(t *testing.T) {
		store, mock := setupMock(t)
		mock.ExpectQuery(QuoteMeta(`SELECT * FROM "book_reviews" WHERE book_id IN ($1,$2,$3) ORDER BY review_id`)).
			WithArgs(1, 2, 6).
			WillReturnRows(sqlmock.NewRows([]string{"review_id", "book_id"}).AddRow(1, 1).AddRow(2, 2).AddRow(4, 1))

		refs, err := store.BookReviewsByBookID(ctx, []int{1, 2, 6})
		require.NoError(t, err)
		assert.Equal(t, map[int][]*model.BookReview{
			1: {{ReviewID: 1, BookID: 1}, {ReviewID: 4, BookID: 1}},
			2: {{ReviewID: 2, BookID: 2}},
		}, refs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("author reviews grouped by author", func(t *testing.T) {
		store, mock := setupMock(t)
		mock.ExpectQuery(QuoteMeta(`SELECT * FROM "author_reviews" WHERE author_id IN ($1)`+` ORDER BY review_id`)).
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows([]string{"review_id", "author_id"}).AddRow(9, 3))

		refs, err := store.AuthorReviewsByAuthorID(ctx, []int{3})
		require.NoError(t, err)
		assert.Equal(t, map[int][]*model.AuthorReview{3: {{ReviewID: 9, AuthorID: 3}}}, refs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure is wrapped", func(t *testing.T) {
		store, mock := setupMock(t)
		mock.ExpectQuery(QuoteMeta(`SELECT * FROM "authors" WHERE id IN ($1)`)).
			WithArgs(1).
			WillReturnError(errors.New("connection reset"))

		_, err := store.AuthorsByID(ctx, []int{1})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "find authors")
		assert.Contains(t, err.Error(), "connection reset")
	})
}
