package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/todo-api/internal/config"
)

// New создает хранилище, выбранное в service.type. Вызывается один раз при старте.
// Соединения открываются лениво, доступность проверяет InitSchema.
func New(ctx context.Context, cfg config.Config) (TodoRepository, error) {
	switch cfg.Service.Type {
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, unavailable("connect postgres", err)
		}
		return NewPostgresRepo(pool), nil
	case config.BackendMySQL:
		r, err := OpenMySQL(MySQLConfig{
			DSN:          cfg.MySQL.DSN,
			MaxOpenConns: cfg.MySQL.MaxPoolSize,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.BackendRedis:
		r, err := OpenRedis(RedisConfig{
			Address:  cfg.Redis.Address(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.BackendMemory:
		return NewMemoryRepo(), nil
	default:
		return nil, fmt.Errorf("unknown service.type %q", cfg.Service.Type)
	}
}
