package data

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/senomas/bookloader/graph/model"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// OpenPostgres connects to dsn. Queries are logged through logrus when logQueries is set.
func OpenPostgres(dsn string, logQueries bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: dsn}), &gorm.Config{Logger: NewGormLogger(logQueries)})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	return db, nil
}

func NewGormLogger(logQueries bool) logger.Interface {
	level := logger.Silent
	if logQueries {
		level = logger.Info
	}
	return logger.New(
		logrus.StandardLogger(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		},
	)
}

// Migrate drops and recreates every catalogue table.
func Migrate(db *gorm.DB) error {
	if err := db.Migrator().DropTable(Models...); err != nil {
		return errors.Wrap(err, "drop tables")
	}
	if err := db.AutoMigrate(Models...); err != nil {
		return errors.Wrap(err, "migrate tables")
	}
	return nil
}

func (s *GormStore) BooksByID(ctx context.Context, ids []int) (map[int]*model.Book, error) {
	var books []*model.Book
	if result := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&books); result.Error != nil {
		return nil, errors.Wrap(result.Error, "find books")
	}
	return index(books, func(b *model.Book) int { return b.ID }), nil
}

func (s *GormStore) AuthorsByID(ctx context.Context, ids []int) (map[int]*model.Author, error) {
	var authors []*model.Author
	if result := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&authors); result.Error != nil {
		return nil, errors.Wrap(result.Error, "find authors")
	}
	return index(authors, func(a *model.Author) int { return a.ID }), nil
}

func (s *GormStore) ReviewsByID(ctx context.Context, ids []int) (map[int]*model.Review, error) {
	var reviews []*model.Review
	if result := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&reviews); result.Error != nil {
		return nil, errors.Wrap(result.Error, "find reviews")
	}
	return index(reviews, func(r *model.Review) int { return r.ID }), nil
}

func (s *GormStore) BookReviewsByBookID(ctx context.Context, bookIDs []int) (map[int][]*model.BookReview, error) {
	var refs []*model.BookReview
	if result := s.db.WithContext(ctx).Where("book_id IN ?", bookIDs).Order("review_id").Find(&refs); result.Error != nil {
		return nil, errors.Wrap(result.Error, "find book reviews")
	}
	return group(refs, func(r *model.BookReview) int { return r.BookID }), nil
}

func (s *GormStore) AuthorReviewsByAuthorID(ctx context.Context, authorIDs []int) (map[int][]*model.AuthorReview, error) {
	var refs []*model.AuthorReview
	if result := s.db.WithContext(ctx).Where("author_id IN ?", authorIDs).Order("review_id").Find(&refs); result.Error != nil {
		return nil, errors.Wrap(result.Error, "find author reviews")
	}
	return group(refs, func(r *model.AuthorReview) int { return r.AuthorID }), nil
}

func (s *GormStore) Seed(ctx context.Context, catalog *Catalog) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := create(tx, catalog.Authors); err != nil {
			return errors.Wrap(err, "create authors")
		}
		if err := create(tx, catalog.Books); err != nil {
			return errors.Wrap(err, "create books")
		}
		if err := create(tx, catalog.Reviews); err != nil {
			return errors.Wrap(err, "create reviews")
		}
		if err := create(tx, catalog.BookReviews); err != nil {
			return errors.Wrap(err, "create book reviews")
		}
		if err := create(tx, catalog.AuthorReviews); err != nil {
			return errors.Wrap(err, "create author reviews")
		}
		return nil
	})
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func create[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}
