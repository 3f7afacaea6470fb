package graph

import (
	"github.com/graphql-go/graphql"
)

var ReviewType = graphql.NewObject(
	graphql.ObjectConfig{
		Name: "Review",
		Fields: graphql.Fields{
			"reviewId": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
			},
			"content": &graphql.Field{
				Type: graphql.String,
			},
			"rating": &graphql.Field{
				Type: graphql.Int,
			},
		},
	},
)

var reviewList = graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(ReviewType)))

var AuthorType = graphql.NewObject(
	graphql.ObjectConfig{
		Name: "Author",
		Fields: graphql.Fields{
			"authorId": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
			},
			"name": &graphql.Field{
				Type: graphql.String,
			},
			"reviews": &graphql.Field{
				Type:        reviewList,
				Description: "reviews of the author",
				Resolve:     AuthorReviewsResolver,
			},
		},
	},
)

var BookType = graphql.NewObject(
	graphql.ObjectConfig{
		Name: "Book",
		Fields: graphql.Fields{
			"bookId": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
			},
			"title": &graphql.Field{
				Type: graphql.String,
			},
			"authorId": &graphql.Field{
				Type: graphql.Int,
			},
			"author": &graphql.Field{
				Type:    AuthorType,
				Resolve: BookAuthorResolver,
			},
			"reviews": &graphql.Field{
				Type:        reviewList,
				Description: "reviews of the book",
				Resolve:     BookReviewsResolver,
			},
		},
	},
)

func BookQueries(fields graphql.Fields) graphql.Fields {
	fields["book"] = &graphql.Field{
		Type:        BookType,
		Description: "book by ID",
		Args: graphql.FieldConfigArgument{
			"bookId": &graphql.ArgumentConfig{
				Type: graphql.NewNonNull(graphql.Int),
			},
		},
		Resolve: BookResolver,
	}
	fields["books"] = &graphql.Field{
		Type:        graphql.NewList(BookType),
		Description: "books by ID, in the order of bookIds",
		Args: graphql.FieldConfigArgument{
			"bookIds": &graphql.ArgumentConfig{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.Int))),
			},
		},
		Resolve: BooksResolver,
	}
	return fields
}

func NewSchema() (graphql.Schema, error) {
	return graphql.NewSchema(graphql.SchemaConfig{
		Query: graphql.NewObject(graphql.ObjectConfig{
			Name:   "Query",
			Fields: BookQueries(graphql.Fields{}),
		}),
	})
}
