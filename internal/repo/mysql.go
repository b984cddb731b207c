package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

const mysqlDuplicateEntry = 1062

const mysqlSchema = "CREATE TABLE IF NOT EXISTS `todo` (" +
	"`id` INT(11) NOT NULL AUTO_INCREMENT, " +
	"`title` VARCHAR(255) DEFAULT NULL, " +
	"`completed` TINYINT(1) DEFAULT NULL, " +
	"`order` INT(11) DEFAULT NULL, " +
	"`url` VARCHAR(255) DEFAULT NULL, " +
	"PRIMARY KEY (`id`))"

const (
	mysqlInsert    = "INSERT INTO `todo` (`id`, `title`, `completed`, `order`, `url`) VALUES (?, ?, ?, ?, ?)"
	mysqlSelectAll = "SELECT `id`, `title`, `completed`, `order`, `url` FROM `todo`"
	mysqlSelectOne = "SELECT `id`, `title`, `completed`, `order`, `url` FROM `todo` WHERE `id` = ?"
	mysqlUpdate    = "UPDATE `todo` SET `title` = ?, `completed` = ?, `order` = ?, `url` = ? WHERE `id` = ?"
	mysqlDelete    = "DELETE FROM `todo` WHERE `id` = ?"
	mysqlDeleteAll = "DELETE FROM `todo`"
)

// MySQLConfig - параметры пула соединений MySQL
type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type MySQLRepo struct {
	db *sql.DB
}

// OpenMySQL настраивает пул. Соединения создаются при первом запросе.
func OpenMySQL(cfg MySQLConfig) (*MySQLRepo, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("mysql dsn is empty")
	}

	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, unavailable("open mysql", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	} else {
		db.SetMaxOpenConns(30)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	} else {
		db.SetMaxIdleConns(10)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		db.SetConnMaxLifetime(30 * time.Minute)
	}
	return NewMySQLRepo(db), nil
}

func NewMySQLRepo(db *sql.DB) *MySQLRepo {
	return &MySQLRepo{db: db}
}

// conn берет одно соединение на операцию, вызывающий обязан сделать Close
func (r *MySQLRepo) conn(ctx context.Context) (*sql.Conn, error) {
	c, err := r.db.Conn(ctx)
	if err != nil {
		return nil, unavailable("acquire connection", err)
	}
	return c, nil
}

func (r *MySQLRepo) InitSchema(ctx context.Context) error {
	c, err := r.conn(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := c.ExecContext(ctx, mysqlSchema); err != nil {
		return unavailable("create table", err)
	}
	return nil
}

func (r *MySQLRepo) Insert(ctx context.Context, t model.Todo) error {
	c, err := r.conn(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	_, err = c.ExecContext(ctx, mysqlInsert, t.ID, nullString(t.Title), t.Completed, nullInt(t.Order), t.URL)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return conflict(t.ID, err)
		}
		return unavailable("insert", err)
	}
	return nil
}

func (r *MySQLRepo) FetchAll(ctx context.Context) ([]model.Todo, error) {
	c, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	rows, err := c.QueryContext(ctx, mysqlSelectAll)
	if err != nil {
		return nil, unavailable("select all", err)
	}
	defer rows.Close()

	todos := make([]model.Todo, 0)
	for rows.Next() {
		t, err := scanSQLTodo(rows)
		if err != nil {
			return nil, unavailable("scan", err)
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("select all", err)
	}
	return todos, nil
}

func (r *MySQLRepo) FetchOne(ctx context.Context, id int64) (model.Todo, bool, error) {
	c, err := r.conn(ctx)
	if err != nil {
		return model.Todo{}, false, err
	}
	defer c.Close()

	t, err := scanSQLTodo(c.QueryRowContext(ctx, mysqlSelectOne, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, false, nil
	}
	if err != nil {
		return model.Todo{}, false, unavailable("select one", err)
	}
	return t, true, nil
}

func (r *MySQLRepo) Update(ctx context.Context, t model.Todo) error {
	c, err := r.conn(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := c.ExecContext(ctx, mysqlUpdate, nullString(t.Title), t.Completed, nullInt(t.Order), t.URL, t.ID); err != nil {
		return unavailable("update", err)
	}
	return nil
}

func (r *MySQLRepo) Delete(ctx context.Context, id int64) error {
	c, err := r.conn(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := c.ExecContext(ctx, mysqlDelete, id); err != nil {
		return unavailable("delete", err)
	}
	return nil
}

func (r *MySQLRepo) DeleteAll(ctx context.Context) error {
	c, err := r.conn(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := c.ExecContext(ctx, mysqlDeleteAll); err != nil {
		return unavailable("delete all", err)
	}
	return nil
}

func (r *MySQLRepo) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLTodo(row rowScanner) (model.Todo, error) {
	var (
		t         model.Todo
		title     sql.NullString
		completed sql.NullBool
		order     sql.NullInt64
		url       sql.NullString
	)
	if err := row.Scan(&t.ID, &title, &completed, &order, &url); err != nil {
		return model.Todo{}, err
	}
	if title.Valid {
		t.Title = model.StringPtr(title.String)
	}
	t.Completed = completed.Valid && completed.Bool
	if order.Valid {
		t.Order = model.IntPtr(int(order.Int64))
	}
	t.URL = url.String
	return t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
