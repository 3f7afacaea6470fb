package graph

import (
	"context"
	"sync"

	"github.com/graphql-go/graphql"
	gast "github.com/graphql-go/graphql/language/ast"
	"github.com/sirupsen/logrus"

	"github.com/senomas/bookloader/data"
	"github.com/senomas/bookloader/dataloader"
	"github.com/senomas/bookloader/graph/model"
)

type contextKey struct {
	name string
}

var dataSourceKey = &contextKey{"dataSource"}

type Options struct {
	// MaxBatch bounds the keys of one fetch, 0 means unbounded.
	MaxBatch int
	// Prefetch makes the books resolver load the authors of its books up front.
	Prefetch bool
	Logger   logrus.FieldLogger
}

// Stash holds records loaded ahead of the resolvers that need them.
type Stash struct {
	mu      sync.RWMutex
	authors map[int]*model.Author
}

func (s *Stash) PutAuthors(authors map[int]*model.Author) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.authors == nil {
		s.authors = make(map[int]*model.Author, len(authors))
	}
	for id, author := range authors {
		s.authors[id] = author
	}
}

func (s *Stash) Author(id int) (*model.Author, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	author, ok := s.authors[id]
	return author, ok
}

// DataSource is the scope of one GraphQL request. Its loaders share one dispatcher and are
// discarded with it.
type DataSource struct {
	Dispatcher    *dataloader.Dispatcher
	Books         *dataloader.Loader[int, *model.Book]
	Authors       *dataloader.Loader[int, *model.Author]
	Reviews       *dataloader.Loader[int, *model.Review]
	BookReviews   *dataloader.GroupedLoader[int, *model.BookReview]
	AuthorReviews *dataloader.GroupedLoader[int, *model.AuthorReview]
	Stash         *Stash

	opts       Options
	fieldsOnce sync.Once
	fields     RequestedFields
}

func NewDataSource(ctx context.Context, store data.Store, opts Options) *DataSource {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	d := dataloader.NewDispatcher(ctx)
	loaderOpts := func(name string) []dataloader.Option {
		return []dataloader.Option{
			dataloader.WithName(name),
			dataloader.WithLogger(opts.Logger),
			dataloader.WithMaxBatch(opts.MaxBatch),
		}
	}
	return &DataSource{
		Dispatcher:    d,
		Books:         dataloader.New[int, *model.Book](d, store.BooksByID, loaderOpts("books")...),
		Authors:       dataloader.New[int, *model.Author](d, store.AuthorsByID, loaderOpts("authors")...),
		Reviews:       dataloader.New[int, *model.Review](d, store.ReviewsByID, loaderOpts("reviews")...),
		BookReviews:   dataloader.NewGrouped[int, *model.BookReview](d, store.BookReviewsByBookID, loaderOpts("bookReviews")...),
		AuthorReviews: dataloader.NewGrouped[int, *model.AuthorReview](d, store.AuthorReviewsByAuthorID, loaderOpts("authorReviews")...),
		Stash:         &Stash{},
		opts:          opts,
	}
}

// Fields describes the operation being executed. It is computed on first use from the
// source of the operation in info.
func (ds *DataSource) Fields(info graphql.ResolveInfo) RequestedFields {
	ds.fieldsOnce.Do(func() {
		op, ok := info.Operation.(*gast.OperationDefinition)
		if !ok || op.GetLoc() == nil || op.GetLoc().Source == nil {
			return
		}
		name := ""
		if op.Name != nil {
			name = op.Name.Value
		}
		fields, err := ParseRequestedFields(string(op.GetLoc().Source.Body), name)
		if err != nil {
			ds.opts.Logger.WithError(err).Debug("requested fields")
			return
		}
		ds.fields = fields
	})
	return ds.fields
}

// Close fails whatever the request left unfetched.
func (ds *DataSource) Close() {
	ds.Dispatcher.Close()
}

func WithDataSource(ctx context.Context, ds *DataSource) context.Context {
	return context.WithValue(ctx, dataSourceKey, ds)
}

// ForContext returns the DataSource of the request, it panics outside of one.
func ForContext(ctx context.Context) *DataSource {
	ds, ok := ctx.Value(dataSourceKey).(*DataSource)
	if !ok {
		panic("graph: no DataSource in context")
	}
	return ds
}
