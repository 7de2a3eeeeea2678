package migrate

import (
	"context"
	"io/fs"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func mockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db, mock
}

func TestRun_AppliesPendingInOrder(t *testing.T) {
	db, mock := mockDB(t)
	fsys := fstest.MapFS{
		"002_b.sql":  {Data: []byte("CREATE TABLE b (id INT)")},
		"001_a.sql":  {Data: []byte("CREATE TABLE a (id INT)")},
		"003_c.sql":  {Data: []byte("CREATE TABLE c (id INT)")},
		"README.txt": {Data: []byte("ignored")},
	}
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("001_a"))
	for _, m := range []struct{ table, version string }{{"b", "002_b"}, {"c", "003_c"}} {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE " + m.table)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations")).
			WithArgs(m.version).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	ran, err := Run(context.Background(), db, fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"002_b", "003_c"}, ran)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_StopsOnFailure(t *testing.T) {
	db, mock := mockDB(t)
	fsys := fstest.MapFS{
		"001_a.sql": {Data: []byte("CREATE TABLE a (id INT)")},
		"002_b.sql": {Data: []byte("CREATE TABLE b (id INT)")},
	}
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE a")).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	ran, err := Run(context.Background(), db, fsys)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "001_a.sql")
	assert.Empty(t, ran)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFiles_Embedded(t *testing.T) {
	names, err := fs.Glob(Files(), "*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_agenda.sql", "002_appointments.sql", "003_audit.sql"}, names)
}
