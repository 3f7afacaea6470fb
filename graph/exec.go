package graph

import (
	"context"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/handler"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/senomas/bookloader/data"
)

type Request struct {
	Query         string
	OperationName string
	Variables     map[string]interface{}
}

// Executor runs queries against a store, each in a DataSource of its own.
type Executor struct {
	schema graphql.Schema
	store  data.Store
	opts   Options
}

func NewExecutor(store data.Store, opts Options) (*Executor, error) {
	schema, err := NewSchema()
	if err != nil {
		return nil, errors.Wrap(err, "build schema")
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Executor{schema: schema, store: store, opts: opts}, nil
}

func (e *Executor) Execute(ctx context.Context, req Request) *graphql.Result {
	ds := NewDataSource(ctx, e.store, e.opts)
	defer ds.Close()

	result := graphql.Do(graphql.Params{
		Schema:         e.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        WithDataSource(ctx, ds),
	})
	e.logDone(ds)
	return result
}

// Middleware scopes a DataSource to each request it serves. Handler must run below it.
func (e *Executor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ds := NewDataSource(r.Context(), e.store, e.opts)
		defer ds.Close()
		next.ServeHTTP(w, r.WithContext(WithDataSource(r.Context(), ds)))
		e.logDone(ds)
	})
}

// Handler serves GraphQL over POST and GET.
func (e *Executor) Handler() http.Handler {
	return handler.New(&handler.Config{
		Schema: &e.schema,
		Pretty: false,
	})
}

func (e *Executor) logDone(ds *DataSource) {
	e.opts.Logger.WithField("windows", ds.Dispatcher.Windows()).Debug("query executed")
}
