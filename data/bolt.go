package data

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"

	"github.com/senomas/bookloader/graph/model"
)

const (
	authorBucket       = "author"
	bookBucket         = "book"
	reviewBucket       = "review"
	bookReviewBucket   = "book_review"
	authorReviewBucket = "author_review"
)

// BoltStore keeps one bucket per record type. Relations are stored as one JSON array per
// parent id.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(db *bbolt.DB) *BoltStore {
	return &BoltStore{db: db}
}

func OpenBolt(path string, timeout time.Duration) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt %s", path)
	}
	return NewBoltStore(db), nil
}

func (s *BoltStore) BooksByID(_ context.Context, ids []int) (map[int]*model.Book, error) {
	return dbGet[*model.Book](s.db, bookBucket, ids)
}

func (s *BoltStore) AuthorsByID(_ context.Context, ids []int) (map[int]*model.Author, error) {
	return dbGet[*model.Author](s.db, authorBucket, ids)
}

func (s *BoltStore) ReviewsByID(_ context.Context, ids []int) (map[int]*model.Review, error) {
	return dbGet[*model.Review](s.db, reviewBucket, ids)
}

func (s *BoltStore) BookReviewsByBookID(_ context.Context, bookIDs []int) (map[int][]*model.BookReview, error) {
	return dbGet[[]*model.BookReview](s.db, bookReviewBucket, bookIDs)
}

func (s *BoltStore) AuthorReviewsByAuthorID(_ context.Context, authorIDs []int) (map[int][]*model.AuthorReview, error) {
	return dbGet[[]*model.AuthorReview](s.db, authorReviewBucket, authorIDs)
}

func (s *BoltStore) Seed(_ context.Context, catalog *Catalog) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := dbPut(tx, authorBucket, index(catalog.Authors, func(a *model.Author) int { return a.ID })); err != nil {
			return err
		}
		if err := dbPut(tx, bookBucket, index(catalog.Books, func(b *model.Book) int { return b.ID })); err != nil {
			return err
		}
		if err := dbPut(tx, reviewBucket, index(catalog.Reviews, func(r *model.Review) int { return r.ID })); err != nil {
			return err
		}
		if err := dbPut(tx, bookReviewBucket, group(catalog.BookReviews, func(r *model.BookReview) int { return r.BookID })); err != nil {
			return err
		}
		return dbPut(tx, authorReviewBucket, group(catalog.AuthorReviews, func(r *model.AuthorReview) int { return r.AuthorID }))
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func dbGet[T any](db *bbolt.DB, bucketName string, ids []int) (map[int]T, error) {
	values := make(map[int]T, len(ids))
	err := db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketName))
		if bucket == nil {
			return nil
		}
		for _, id := range ids {
			jsonState := bucket.Get(itob(id))
			if jsonState == nil {
				continue
			}
			var value T
			if err := json.Unmarshal(jsonState, &value); err != nil {
				return errors.Wrapf(err, "unmarshal %s %d", bucketName, id)
			}
			values[id] = value
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

func dbPut[T any](tx *bbolt.Tx, bucketName string, values map[int]T) error {
	bucket, err := tx.CreateBucketIfNotExists([]byte(bucketName))
	if err != nil {
		return errors.Wrapf(err, "create bucket %s", bucketName)
	}
	for id, value := range values {
		jsonState, err := json.Marshal(value)
		if err != nil {
			return errors.Wrapf(err, "marshal %s %d", bucketName, id)
		}
		if err := bucket.Put(itob(id), jsonState); err != nil {
			return errors.Wrapf(err, "put %s %d", bucketName, id)
		}
	}
	return nil
}

func itob(id int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}
