package repo

import (
	"context"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

// TodoRepository определяет интерфейс хранилища записей.
// Каждая реализация берет соединение на одну операцию и всегда его освобождает.
type TodoRepository interface {
	// InitSchema идемпотентно готовит хранилище (например, создает таблицу).
	InitSchema(ctx context.Context) error
	Insert(ctx context.Context, t model.Todo) error
	FetchAll(ctx context.Context) ([]model.Todo, error)
	// FetchOne возвращает ok=false, если записи нет. Это не ошибка.
	FetchOne(ctx context.Context, id int64) (model.Todo, bool, error)
	// Update сохраняет запись целиком, слияние делает сервис.
	Update(ctx context.Context, t model.Todo) error
	// Delete не считает отсутствие записи ошибкой.
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	Close() error
}
