package graph_test

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/senomas/bookloader/data"
	"github.com/senomas/bookloader/graph"
	"github.com/senomas/bookloader/graph/model"
)

func JsonMatch(t *testing.T, expected string, resp interface{}) {
	rJSON, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, expected, string(rJSON))
}

// ArrayIntArgs matches each of its values once, in any order.
type ArrayIntArgs struct {
	mu    sync.Mutex
	value map[int64]bool
}

func NewArrayIntArgs(args ...int64) *ArrayIntArgs {
	v := ArrayIntArgs{value: make(map[int64]bool)}
	for _, a := range args {
		v.value[a] = false
	}
	return &v
}

func (m *ArrayIntArgs) Match(v driver.Value) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := v.(int64)
	if !ok {
		return false
	}
	used, ok := m.value[i]
	if !ok || used {
		return false
	}
	m.value[i] = true
	return true
}

func QuoteMeta(r string) string {
	r = strings.Join(strings.Fields(r), " ")
	return "^" + regexp.QuoteMeta(r) + "$"
}

func SetupMock(t *testing.T) (data.Store, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: data.NewGormLogger(false)})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	return data.NewGormStore(db), mock
}

func SetupBolt(t *testing.T) *CountingStore {
	store, err := data.OpenBolt(filepath.Join(t.TempDir(), "catalog.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	require.NoError(t, store.Seed(context.Background(), data.DefaultCatalog()))
	return &CountingStore{Store: store, calls: map[string][][]int{}}
}

// CountingStore records the ids of every lookup it forwards.
type CountingStore struct {
	data.Store
	FailAuthors error

	mu    sync.Mutex
	calls map[string][][]int
}

func (s *CountingStore) record(name string, ids []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[name] = append(s.calls[name], append([]int(nil), ids...))
}

func (s *CountingStore) Calls(name string) [][]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *CountingStore) BooksByID(ctx context.Context, ids []int) (map[int]*model.Book, error) {
	s.record("books", ids)
	return s.Store.BooksByID(ctx, ids)
}

func (s *CountingStore) AuthorsByID(ctx context.Context, ids []int) (map[int]*model.Author, error) {
	s.record("authors", ids)
	if s.FailAuthors != nil {
		return nil, errors.WithStack(s.FailAuthors)
	}
	return s.Store.AuthorsByID(ctx, ids)
}

func (s *CountingStore) ReviewsByID(ctx context.Context, ids []int) (map[int]*model.Review, error) {
	s.record("reviews", ids)
	return s.Store.ReviewsByID(ctx, ids)
}

func (s *CountingStore) BookReviewsByBookID(ctx context.Context, ids []int) (map[int][]*model.BookReview, error) {
	s.record("bookReviews", ids)
	return s.Store.BookReviewsByBookID(ctx, ids)
}

func (s *CountingStore) AuthorReviewsByAuthorID(ctx context.Context, ids []int) (map[int][]*model.AuthorReview, error) {
	s.record("authorReviews", ids)
	return s.Store.AuthorReviewsByAuthorID(ctx, ids)
}

func execute(t *testing.T, store data.Store, opts graph.Options, query string) (interface{}, []string) {
	exec, err := graph.NewExecutor(store, opts)
	require.NoError(t, err)
	result := exec.Execute(context.Background(), graph.Request{Query: query})
	var errs []string
	for _, e := range result.Errors {
		errs = append(errs, e.Message)
	}
	return result.Data, errs
}
