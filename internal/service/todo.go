package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/repo"
)

// TodoService - единая точка входа для хендлеров. Логика здесь не зависит от хранилища.
type TodoService struct {
	repo   repo.TodoRepository
	logger *zap.Logger
}

func NewTodoService(repo repo.TodoRepository, logger *zap.Logger) *TodoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TodoService{repo: repo, logger: logger}
}

func (s *TodoService) InitData(ctx context.Context) error {
	return s.repo.InitSchema(ctx)
}

// Insert сохраняет запись с тем id, который ей назначил вызывающий
func (s *TodoService) Insert(ctx context.Context, t model.Todo) error {
	return s.repo.Insert(ctx, t)
}

func (s *TodoService) GetAll(ctx context.Context) ([]model.Todo, error) {
	return s.repo.FetchAll(ctx)
}

func (s *TodoService) GetCertain(ctx context.Context, id int64) (model.Todo, bool, error) {
	return s.repo.FetchOne(ctx, id)
}

// Update читает текущую запись, накладывает патч и сохраняет результат.
// Если записи нет, возвращает ok=false и ничего не пишет.
func (s *TodoService) Update(ctx context.Context, id int64, patch model.TodoPatch) (model.Todo, bool, error) {
	existing, ok, err := s.repo.FetchOne(ctx, id)
	if err != nil {
		return model.Todo{}, false, err
	}
	if !ok {
		return model.Todo{}, false, nil
	}

	merged := existing.Merge(patch)
	merged.ID = existing.ID

	if err := s.repo.Update(ctx, merged); err != nil {
		return model.Todo{}, false, err
	}
	return merged, true, nil
}

// Delete возвращает false только если упал сам вызов хранилища.
// Отсутствие записи считается успехом.
func (s *TodoService) Delete(ctx context.Context, id int64) bool {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Warn("delete failed", zap.Int64("todo_id", id), zap.Error(err))
		return false
	}
	return true
}

func (s *TodoService) DeleteAll(ctx context.Context) bool {
	if err := s.repo.DeleteAll(ctx); err != nil {
		s.logger.Warn("delete all failed", zap.Error(err))
		return false
	}
	return true
}

// HighestID - максимальный сохраненный id, 0 для пустого хранилища
func (s *TodoService) HighestID(ctx context.Context) (int64, error) {
	todos, err := s.repo.FetchAll(ctx)
	if err != nil {
		return 0, err
	}
	var highest int64
	for _, t := range todos {
		if t.ID > highest {
			highest = t.ID
		}
	}
	return highest, nil
}
