package data_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/senomas/bookloader/data"
)

func setupMock(t *testing.T) (*data.GormStore, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: data.NewGormLogger(false)})
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	return data.NewGormStore(db), mock
}

func QuoteMeta(r string) string {
	r = strings.Join(strings.Fields(r), " ")
	return "^" + regexp.QuoteMeta(r) + "$"
}
