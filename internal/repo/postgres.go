package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

const pgUniqueViolation = "23505"

const pgSchema = `
	CREATE TABLE IF NOT EXISTS todo (
		id        BIGINT PRIMARY KEY,
		title     TEXT,
		completed BOOLEAN,
		"order"   INTEGER,
		url       TEXT
	)
`

type PostgresRepo struct { // Репозиторий поверх pgxpool
	pool *pgxpool.Pool
}

func NewPostgresRepo(pool *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{
		pool: pool,
	}
}

// acquire берет соединение из пула, вызывающий обязан сделать Release
func (r *PostgresRepo) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, unavailable("acquire connection", err)
	}
	return conn, nil
}

func (r *PostgresRepo) InitSchema(ctx context.Context) error {
	conn, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, pgSchema); err != nil {
		return unavailable("create table", err)
	}
	return nil
}

func (r *PostgresRepo) Insert(ctx context.Context, t model.Todo) error {
	conn, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
		INSERT INTO todo (id, title, completed, "order", url)
		VALUES ($1, $2, $3, $4, $5)
	`, t.ID, t.Title, t.Completed, t.Order, t.URL)
	return r.mapError("insert", t.ID, err)
}

func (r *PostgresRepo) FetchAll(ctx context.Context) ([]model.Todo, error) {
	conn, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `SELECT id, title, completed, "order", url FROM todo`)
	if err != nil {
		return nil, unavailable("select all", err)
	}
	defer rows.Close()

	todos := make([]model.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
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

func (r *PostgresRepo) FetchOne(ctx context.Context, id int64) (model.Todo, bool, error) {
	conn, err := r.acquire(ctx)
	if err != nil {
		return model.Todo{}, false, err
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `SELECT id, title, completed, "order", url FROM todo WHERE id = $1`, id)
	t, err := scanTodo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Todo{}, false, nil
	}
	if err != nil {
		return model.Todo{}, false, unavailable("select one", err)
	}
	return t, true, nil
}

func (r *PostgresRepo) Update(ctx context.Context, t model.Todo) error {
	conn, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
		UPDATE todo
		SET title = $2, completed = $3, "order" = $4, url = $5
		WHERE id = $1
	`, t.ID, t.Title, t.Completed, t.Order, t.URL)
	if err != nil {
		return unavailable("update", err)
	}
	return nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) error {
	conn, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "DELETE FROM todo WHERE id = $1", id); err != nil {
		return unavailable("delete", err)
	}
	return nil
}

func (r *PostgresRepo) DeleteAll(ctx context.Context) error {
	conn, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "DELETE FROM todo"); err != nil {
		return unavailable("delete all", err)
	}
	return nil
}

func (r *PostgresRepo) Close() error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepo) mapError(op string, id int64, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return conflict(id, err)
	}
	return unavailable(op, err)
}

// scanTodo читает строку, в которой любые необязательные колонки могут быть NULL
func scanTodo(row pgx.Row) (model.Todo, error) {
	var (
		t         model.Todo
		completed *bool
		order     *int32
		url       *string
	)
	if err := row.Scan(&t.ID, &t.Title, &completed, &order, &url); err != nil {
		return model.Todo{}, err
	}
	if completed != nil {
		t.Completed = *completed
	}
	if order != nil {
		o := int(*order)
		t.Order = &o
	}
	if url != nil {
		t.URL = *url
	}
	return t, nil
}
