package data

import (
	"github.com/senomas/bookloader/graph/model"
)

// Catalog is a complete set of records written by Store.Seed.
type Catalog struct {
	Authors       []*model.Author
	Books         []*model.Book
	Reviews       []*model.Review
	BookReviews   []*model.BookReview
	AuthorReviews []*model.AuthorReview
}

func DefaultCatalog() *Catalog {
	return &Catalog{
		Authors: []*model.Author{
			{ID: 1, Name: "J.K. Rowling"},
			{ID: 2, Name: "Lord Voldermort"},
			{ID: 3, Name: "Salazar Slitherin"},
			{ID: 4, Name: "Albus Dumbledore"},
		},
		Books: []*model.Book{
			{ID: 1, Title: "Harry Potter and the Sorcerer's Stone", AuthorID: 1},
			{ID: 2, Title: "Harry Potter and the Chamber of Secrets", AuthorID: 1},
			{ID: 3, Title: "Harry Potter and the Book of Evil", AuthorID: 2},
			{ID: 4, Title: "Harry Potter and the Snake Dictionary", AuthorID: 3},
			{ID: 5, Title: "Harry Potter and the Prisoner of Azkaban", AuthorID: 1},
			{ID: 6, Title: "The Tales of Beedle the Bard", AuthorID: 4},
		},
		Reviews: []*model.Review{
			{ID: 1, Content: "The Boy Who Live", Rating: 5},
			{ID: 2, Content: "The Girl Who Kill", Rating: 5},
			{ID: 3, Content: "Fake Books", Rating: 1},
			{ID: 4, Content: "The Man With Funny Hat", Rating: 3},
			{ID: 5, Content: "Hisses on every page", Rating: 2},
			{ID: 6, Content: "Worth the wait", Rating: 4},
			{ID: 7, Content: "A steady hand with plot", Rating: 4},
			{ID: 8, Content: "Too much darkness", Rating: 2},
			{ID: 9, Content: "Parseltongue required", Rating: 3},
		},
		BookReviews: []*model.BookReview{
			{ReviewID: 1, BookID: 1},
			{ReviewID: 2, BookID: 2},
			{ReviewID: 3, BookID: 3},
			{ReviewID: 4, BookID: 1},
			{ReviewID: 5, BookID: 4},
			{ReviewID: 6, BookID: 5},
		},
		AuthorReviews: []*model.AuthorReview{
			{ReviewID: 7, AuthorID: 1},
			{ReviewID: 8, AuthorID: 2},
			{ReviewID: 9, AuthorID: 3},
		},
	}
}
