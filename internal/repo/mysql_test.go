package repo

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

var todoColumns = []string{"id", "title", "completed", "order", "url"}

func newMockMySQLRepo(t *testing.T) (*MySQLRepo, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMySQLRepo(db), mock
}

func TestMySQLRepo_InitSchema(t *testing.T) {
	r, mock := newMockMySQLRepo(t)
	mock.ExpectExec(regexp.QuoteMeta(mysqlSchema)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(mysqlSchema)).WillReturnError(errors.New("connection refused"))

	require.NoError(t, r.InitSchema(context.Background()))
	assert.ErrorIs(t, r.InitSchema(context.Background()), ErrorUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLRepo_Insert(t *testing.T) {
	todo := model.Todo{
		ID:    1,
		Title: model.StringPtr("buy milk"),
		Order: model.IntPtr(2),
		URL:   "http://localhost:8082/todos/1",
	}

	t.Run("stored", func(t *testing.T) {
		r, mock := newMockMySQLRepo(t)
		mock.ExpectExec(regexp.QuoteMeta(mysqlInsert)).
			WithArgs(int64(1), "buy milk", false, int64(2), "http://localhost:8082/todos/1").
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, r.Insert(context.Background(), todo))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("null optional fields", func(t *testing.T) {
		r, mock := newMockMySQLRepo(t)
		mock.ExpectExec(regexp.QuoteMeta(mysqlInsert)).
			WithArgs(int64(2), nil, false, nil, "").
			WillReturnResult(sqlmock.NewResult(2, 1))

		require.NoError(t, r.Insert(context.Background(), model.Todo{ID: 2}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate entry", func(t *testing.T) {
		r, mock := newMockMySQLRepo(t)
		mock.ExpectExec(regexp.QuoteMeta(mysqlInsert)).
			WillReturnError(&mysql.MySQLError{Number: mysqlDuplicateEntry, Message: "Duplicate entry '1' for key 'PRIMARY'"})

		err := r.Insert(context.Background(), todo)
		assert.ErrorIs(t, err, ErrorConflict)
		assert.NotErrorIs(t, err, ErrorUnavailable)
	})

	t.Run("connection lost", func(t *testing.T) {
		r, mock := newMockMySQLRepo(t)
		mock.ExpectExec(regexp.QuoteMeta(mysqlInsert)).WillReturnError(errors.New("invalid connection"))

		assert.ErrorIs(t, r.Insert(context.Background(), todo), ErrorUnavailable)
	})
}

func TestMySQLRepo_FetchOne(t *testing.T) {
	t.Run("found with nulls", func(t *testing.T) {
		r, mock := newMockMySQLRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(mysqlSelectOne)).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows(todoColumns).AddRow(int64(3), nil, nil, nil, nil))

		got, ok, err := r.FetchOne(context.Background(), 3)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, model.Todo{ID: 3}, got)
	})

	t.Run("found with values", func(t *testing.T) {
		r, mock := newMockMySQLRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(mysqlSelectOne)).
			WithArgs(int64(4)).
			WillReturnRows(sqlmock.NewRows(todoColumns).AddRow(int64(4), "walk", int64(1), int64(9), "http://x/todos/4"))

		got, ok, err := r.FetchOne(context.Background(), 4)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, model.Todo{
			ID:        4,
			Title:     model.StringPtr("walk"),
			Completed: true,
			Order:     model.IntPtr(9),
			URL:       "http://x/todos/4",
		}, got)
	})

	t.Run("absent", func(t *testing.T) {
		r, mock := newMockMySQLRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(mysqlSelectOne)).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows(todoColumns))

		_, ok, err := r.FetchOne(context.Background(), 5)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("query failure", func(t *testing.T) {
		r, mock := newMockMySQLRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(mysqlSelectOne)).WillReturnError(errors.New("broken pipe"))

		_, ok, err := r.FetchOne(context.Background(), 5)
		assert.ErrorIs(t, err, ErrorUnavailable)
		assert.False(t, ok)
	})
}

func TestMySQLRepo_FetchAll(t *testing.T) {
	r, mock := newMockMySQLRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(mysqlSelectAll)).
		WillReturnRows(sqlmock.NewRows(todoColumns).
			AddRow(int64(1), "a", int64(0), nil, "u1").
			AddRow(int64(2), nil, int64(1), int64(5), "u2"))
	mock.ExpectQuery(regexp.QuoteMeta(mysqlSelectAll)).
		WillReturnRows(sqlmock.NewRows(todoColumns))

	todos, err := r.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Todo{
		{ID: 1, Title: model.StringPtr("a"), URL: "u1"},
		{ID: 2, Completed: true, Order: model.IntPtr(5), URL: "u2"},
	}, todos)

	todos, err = r.FetchAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLRepo_UpdateAndDelete(t *testing.T) {
	r, mock := newMockMySQLRepo(t)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(mysqlUpdate)).
		WithArgs("A", true, int64(1), "u", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// ноль затронутых строк - все равно успех
	mock.ExpectExec(regexp.QuoteMeta(mysqlDelete)).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(mysqlDeleteAll)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(mysqlDelete)).
		WithArgs(int64(1)).
		WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectExec(regexp.QuoteMeta(mysqlDeleteAll)).
		WillReturnError(errors.New("lock wait timeout"))

	require.NoError(t, r.Update(ctx, model.Todo{ID: 1, Title: model.StringPtr("A"), Completed: true, Order: model.IntPtr(1), URL: "u"}))
	require.NoError(t, r.Delete(ctx, 42))
	require.NoError(t, r.DeleteAll(ctx))
	assert.ErrorIs(t, r.Delete(ctx, 1), ErrorUnavailable)
	assert.ErrorIs(t, r.DeleteAll(ctx), ErrorUnavailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLRepo_ConnectionNotAcquired(t *testing.T) {
	r, _ := newMockMySQLRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.FetchAll(ctx)
	assert.ErrorIs(t, err, ErrorUnavailable)
}

func TestOpenMySQL_EmptyDSN(t *testing.T) {
	_, err := OpenMySQL(MySQLConfig{DSN: "  "})
	assert.Error(t, err)
}
