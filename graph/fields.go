package graph

import (
	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// RequestedFields describes which relations a query selects below its book fields.
type RequestedFields struct {
	BookAuthor        bool
	BookAuthorReviews bool
	BookReviews       bool
}

// ParseRequestedFields inspects the operation named operationName, or the only operation
// of query when the name is empty. Fragment spreads and inline fragments are followed.
func ParseRequestedFields(query string, operationName string) (RequestedFields, error) {
	var fields RequestedFields
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return fields, errors.Wrap(err, "parse query")
	}
	var op *ast.OperationDefinition
	for _, o := range doc.Operations {
		if operationName == "" || o.Name == operationName {
			op = o
			break
		}
	}
	if op == nil {
		return fields, errors.Errorf("operation %q not found", operationName)
	}

	w := &fieldWalker{doc: doc, seen: map[string]bool{}}
	w.walk(op.SelectionSet, func(f *ast.Field) {
		if f.Name != "book" && f.Name != "books" {
			return
		}
		w.walk(f.SelectionSet, func(f *ast.Field) {
			switch f.Name {
			case "author":
				fields.BookAuthor = true
				w.walk(f.SelectionSet, func(f *ast.Field) {
					if f.Name == "reviews" {
						fields.BookAuthorReviews = true
					}
				})
			case "reviews":
				fields.BookReviews = true
			}
		})
	})
	return fields, nil
}

type fieldWalker struct {
	doc  *ast.QueryDocument
	seen map[string]bool
}

// walk calls fn for every field of set, looking through fragments.
func (w *fieldWalker) walk(set ast.SelectionSet, fn func(f *ast.Field)) {
	for _, s := range set {
		switch v := s.(type) {
		case *ast.Field:
			fn(v)
		case *ast.InlineFragment:
			w.walk(v.SelectionSet, fn)
		case *ast.FragmentSpread:
			def := w.doc.Fragments.ForName(v.Name)
			if def == nil || w.seen[v.Name] {
				continue
			}
			w.seen[v.Name] = true
			w.walk(def.SelectionSet, fn)
			delete(w.seen, v.Name)
		}
	}
}
