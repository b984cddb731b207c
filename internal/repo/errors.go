package repo

import (
	"errors"
	"fmt"
)

var (
	// ErrorUnavailable - хранилище недоступно или запрос не выполнился
	ErrorUnavailable = errors.New("backend unavailable")
	// ErrorConflict - запись с таким id уже есть
	ErrorConflict = errors.New("conflict")
)

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrorUnavailable, op, err)
}

func conflict(id int64, err error) error {
	if err == nil {
		return fmt.Errorf("%w: todo %d already exists", ErrorConflict, id)
	}
	return fmt.Errorf("%w: todo %d already exists: %w", ErrorConflict, id, err)
}
