package data

import (
	"context"

	"github.com/senomas/bookloader/graph/model"
)

// Store is the catalogue persistence. Every lookup takes the ids of one batch and returns
// the records it found indexed by id, missing ids are simply absent.
type Store interface {
	BooksByID(ctx context.Context, ids []int) (map[int]*model.Book, error)
	AuthorsByID(ctx context.Context, ids []int) (map[int]*model.Author, error)
	ReviewsByID(ctx context.Context, ids []int) (map[int]*model.Review, error)
	BookReviewsByBookID(ctx context.Context, bookIDs []int) (map[int][]*model.BookReview, error)
	AuthorReviewsByAuthorID(ctx context.Context, authorIDs []int) (map[int][]*model.AuthorReview, error)
	Seed(ctx context.Context, catalog *Catalog) error
	Close() error
}

var Models = []interface{}{&model.Author{}, &model.Book{}, &model.Review{}, &model.BookReview{}, &model.AuthorReview{}}

func index[T any](items []T, id func(T) int) map[int]T {
	m := make(map[int]T, len(items))
	for _, item := range items {
		m[id(item)] = item
	}
	return m
}

func group[T any](items []T, id func(T) int) map[int][]T {
	m := make(map[int][]T)
	for _, item := range items {
		key := id(item)
		m[key] = append(m[key], item)
	}
	return m
}
