package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

// MemoryRepo хранит записи в памяти процесса.
type MemoryRepo struct {
	mu    sync.RWMutex
	todos map[int64]model.Todo
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{todos: make(map[int64]model.Todo)}
}

func (r *MemoryRepo) InitSchema(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return unavailable("init", err)
	}
	return nil
}

func (r *MemoryRepo) Insert(ctx context.Context, t model.Todo) error {
	if err := ctx.Err(); err != nil {
		return unavailable("insert", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.todos[t.ID]; ok {
		return conflict(t.ID, nil)
	}
	r.todos[t.ID] = t.Clone()
	return nil
}

// FetchAll отдает записи по возрастанию id, чтобы порядок был стабильным
func (r *MemoryRepo) FetchAll(ctx context.Context) ([]model.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("fetch all", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	todos := make([]model.Todo, 0, len(r.todos))
	for _, t := range r.todos {
		todos = append(todos, t.Clone())
	}
	sort.Slice(todos, func(i, j int) bool { return todos[i].ID < todos[j].ID })
	return todos, nil
}

func (r *MemoryRepo) FetchOne(ctx context.Context, id int64) (model.Todo, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.Todo{}, false, unavailable("fetch one", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.todos[id]
	if !ok {
		return model.Todo{}, false, nil
	}
	return t.Clone(), true, nil
}

// Update как и UPDATE ... WHERE id = ? ничего не делает, если записи нет
func (r *MemoryRepo) Update(ctx context.Context, t model.Todo) error {
	if err := ctx.Err(); err != nil {
		return unavailable("update", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.todos[t.ID]; ok {
		r.todos[t.ID] = t.Clone()
	}
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return unavailable("delete", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.todos, id)
	return nil
}

func (r *MemoryRepo) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return unavailable("delete all", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.todos = make(map[int64]model.Todo)
	return nil
}

func (r *MemoryRepo) Close() error {
	return nil
}
