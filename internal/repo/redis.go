package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

const DefaultRedisKey = "VERT_TODO"

// RedisConfig описывает подключение к Redis.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Key      string
}

// RedisRepo хранит все записи в одном hash: поле - id, значение - JSON записи.
type RedisRepo struct {
	client *redis.Client
	key    string
}

// OpenRedis создает клиента, соединение проверяет InitSchema.
func OpenRedis(cfg RedisConfig) (*RedisRepo, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address is empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisRepo(client, cfg.Key), nil
}

func NewRedisRepo(client *redis.Client, key string) *RedisRepo {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisRepo{client: client, key: key}
}

// InitSchema для hash схема не нужна, достаточно убедиться, что Redis отвечает
func (r *RedisRepo) InitSchema(ctx context.Context) error {
	conn := r.client.Conn()
	defer conn.Close()

	if err := conn.Ping(ctx).Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (r *RedisRepo) Insert(ctx context.Context, t model.Todo) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode todo %d: %w", t.ID, err)
	}

	conn := r.client.Conn()
	defer conn.Close()

	created, err := conn.HSetNX(ctx, r.key, field(t.ID), payload).Result()
	if err != nil {
		return unavailable("hsetnx", err)
	}
	if !created {
		return conflict(t.ID, nil)
	}
	return nil
}

func (r *RedisRepo) FetchAll(ctx context.Context) ([]model.Todo, error) {
	conn := r.client.Conn()
	defer conn.Close()

	values, err := conn.HVals(ctx, r.key).Result()
	if err != nil {
		return nil, unavailable("hvals", err)
	}

	todos := make([]model.Todo, 0, len(values))
	for _, v := range values {
		var t model.Todo
		if err := json.Unmarshal([]byte(v), &t); err != nil {
			return nil, unavailable("decode", err)
		}
		todos = append(todos, t)
	}
	return todos, nil
}

func (r *RedisRepo) FetchOne(ctx context.Context, id int64) (model.Todo, bool, error) {
	conn := r.client.Conn()
	defer conn.Close()

	value, err := conn.HGet(ctx, r.key, field(id)).Result()
	if errors.Is(err, redis.Nil) {
		return model.Todo{}, false, nil
	}
	if err != nil {
		return model.Todo{}, false, unavailable("hget", err)
	}

	var t model.Todo
	if err := json.Unmarshal([]byte(value), &t); err != nil {
		return model.Todo{}, false, unavailable("decode", err)
	}
	return t, true, nil
}

func (r *RedisRepo) Update(ctx context.Context, t model.Todo) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode todo %d: %w", t.ID, err)
	}

	conn := r.client.Conn()
	defer conn.Close()

	if err := conn.HSet(ctx, r.key, field(t.ID), payload).Err(); err != nil {
		return unavailable("hset", err)
	}
	return nil
}

func (r *RedisRepo) Delete(ctx context.Context, id int64) error {
	conn := r.client.Conn()
	defer conn.Close()

	if err := conn.HDel(ctx, r.key, field(id)).Err(); err != nil {
		return unavailable("hdel", err)
	}
	return nil
}

func (r *RedisRepo) DeleteAll(ctx context.Context) error {
	conn := r.client.Conn()
	defer conn.Close()

	if err := conn.Del(ctx, r.key).Err(); err != nil {
		return unavailable("del", err)
	}
	return nil
}

func (r *RedisRepo) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

func field(id int64) string {
	return strconv.FormatInt(id, 10)
}
