package graph

import (
	"context"

	"github.com/graphql-go/graphql"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/senomas/bookloader/dataloader"
	"github.com/senomas/bookloader/graph/model"
)

// Resolvers issue their loads before returning and hand the executor a thunk, so the loads
// of sibling fields end up in one batch.

func BookResolver(p graphql.ResolveParams) (interface{}, error) {
	ds := ForContext(p.Context)
	id, _ := p.Args["bookId"].(int)
	thunk := ds.Books.LoadThunk(p.Context, id)
	return func() (interface{}, error) {
		book, err := thunk()
		if errors.Is(err, dataloader.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return book, nil
	}, nil
}

func BooksResolver(p graphql.ResolveParams) (interface{}, error) {
	ds := ForContext(p.Context)
	args, _ := p.Args["bookIds"].([]interface{})
	ids := make([]int, 0, len(args))
	for _, a := range args {
		if id, ok := a.(int); ok {
			ids = append(ids, id)
		}
	}

	if !ds.opts.Prefetch || !ds.Fields(p.Info).BookAuthor {
		thunk := ds.Books.LoadManyThunk(p.Context, ids)
		return func() (interface{}, error) {
			results, err := thunk()
			if results == nil {
				return nil, err
			}
			return bookList(results), err
		}, nil
	}

	return thunkOf(dataloader.Go(ds.Dispatcher, func(ctx context.Context) ([]*model.Book, error) {
		results, err := ds.Books.LoadMany(ctx, ids)
		if results == nil {
			return nil, err
		}
		books := bookList(results)
		var authorIDs []int
		for _, b := range books {
			if b != nil {
				authorIDs = append(authorIDs, b.AuthorID)
			}
		}
		slices.Sort(authorIDs)
		authorIDs = slices.Compact(authorIDs)
		authors, aerr := ds.Authors.LoadMap(ctx, authorIDs)
		if aerr != nil {
			// Book.author reports the failure of its own key
			ds.opts.Logger.WithError(aerr).Debug("prefetch authors")
		}
		ds.Stash.PutAuthors(authors)
		return books, err
	})), nil
}

func bookList(results []dataloader.Result[*model.Book]) []*model.Book {
	books := make([]*model.Book, len(results))
	for i, r := range results {
		if r.Found {
			books[i] = r.Value
		}
	}
	return books
}

func BookAuthorResolver(p graphql.ResolveParams) (interface{}, error) {
	ds := ForContext(p.Context)
	book, ok := p.Source.(*model.Book)
	if !ok {
		return nil, errors.Errorf("unexpected source %T", p.Source)
	}
	if author, ok := ds.Stash.Author(book.AuthorID); ok {
		return author, nil
	}
	thunk := ds.Authors.LoadThunk(p.Context, book.AuthorID)
	return func() (interface{}, error) {
		author, err := thunk()
		if errors.Is(err, dataloader.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return author, nil
	}, nil
}

func BookReviewsResolver(p graphql.ResolveParams) (interface{}, error) {
	ds := ForContext(p.Context)
	book, ok := p.Source.(*model.Book)
	if !ok {
		return nil, errors.Errorf("unexpected source %T", p.Source)
	}
	return thunkOf(dataloader.Go(ds.Dispatcher, func(ctx context.Context) ([]*model.Review, error) {
		refs, err := ds.BookReviews.Load(ctx, book.ID)
		if err != nil {
			return nil, err
		}
		ids := make([]int, len(refs))
		for i, r := range refs {
			ids[i] = r.ReviewID
		}
		return loadReviews(ctx, ds, ids)
	})), nil
}

func AuthorReviewsResolver(p graphql.ResolveParams) (interface{}, error) {
	ds := ForContext(p.Context)
	author, ok := p.Source.(*model.Author)
	if !ok {
		return nil, errors.Errorf("unexpected source %T", p.Source)
	}
	return thunkOf(dataloader.Go(ds.Dispatcher, func(ctx context.Context) ([]*model.Review, error) {
		refs, err := ds.AuthorReviews.Load(ctx, author.ID)
		if err != nil {
			return nil, err
		}
		ids := make([]int, len(refs))
		for i, r := range refs {
			ids[i] = r.ReviewID
		}
		return loadReviews(ctx, ds, ids)
	})), nil
}

// loadReviews returns the reviews of ids that exist, never nil.
func loadReviews(ctx context.Context, ds *DataSource, ids []int) ([]*model.Review, error) {
	results, err := ds.Reviews.LoadMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	reviews := make([]*model.Review, 0, len(results))
	for _, r := range results {
		if r.Found {
			reviews = append(reviews, r.Value)
		}
	}
	return reviews, nil
}

func thunkOf[T any](thunk dataloader.Thunk[T]) func() (interface{}, error) {
	return func() (interface{}, error) {
		v, err := thunk()
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}
