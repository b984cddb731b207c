package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-api/internal/model"
	"github.com/BuzzLyutic/todo-api/internal/repo"
	"github.com/BuzzLyutic/todo-api/internal/service"
	"github.com/BuzzLyutic/todo-api/pkg/respond"
)

type TodoHandler struct {
	service   *service.TodoService
	ids       *model.IDAllocator
	ready     func() bool
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTodoHandler создает хендлер. ready сообщает, что хранилище инициализировано
// и аллокатор засеян; nil означает "готово всегда".
func NewTodoHandler(srv *service.TodoService, ids *model.IDAllocator, ready func() bool, logger *zap.Logger) *TodoHandler {
	if ready == nil {
		ready = func() bool { return true }
	}
	return &TodoHandler{
		service:   srv,
		ids:       ids,
		ready:     ready,
		validator: validator.New(),
		logger:    logger,
	}
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	// до засева аллокатора новые id совпали бы с уже сохраненными
	if !h.ready() {
		respond.Error(w, r, http.StatusServiceUnavailable, "storage is initializing")
		return
	}

	var req model.Todo
	if !h.decode(w, r, &req) {
		return
	}

	// id назначает адаптер: явный id двигает отметку, пустой берется из аллокатора
	if req.ID > h.ids.Mark() {
		h.ids.AdvanceTo(req.ID)
	} else if req.ID == 0 {
		id, err := h.ids.Next()
		if err != nil {
			h.logger.Error("failed to allocate todo id", zap.Int64("mark", h.ids.Mark()), zap.Error(err))
			respond.Error(w, r, http.StatusServiceUnavailable, "no free todo ids")
			return
		}
		req.ID = id
	}
	req.URL = fmt.Sprintf("%s/%d", absoluteURI(r), req.ID)

	if err := h.service.Insert(r.Context(), req); err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", req.URL)
	respond.JSON(w, r, http.StatusCreated, req)
}

func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.todoID(w, r)
	if !ok {
		return
	}

	todo, found, err := h.service.GetCertain(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	if !found {
		respond.Error(w, r, http.StatusNotFound, "not found")
		return
	}
	respond.JSON(w, r, http.StatusOK, todo)
}

func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	todos, err := h.service.GetAll(r.Context())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	respond.JSON(w, r, http.StatusOK, todos)
}

func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.todoID(w, r)
	if !ok {
		return
	}

	var patch model.TodoPatch
	if !h.decode(w, r, &patch) {
		return
	}

	todo, found, err := h.service.Update(r.Context(), id, patch)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	if !found {
		respond.Error(w, r, http.StatusNotFound, "not found")
		return
	}
	respond.JSON(w, r, http.StatusOK, todo)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.todoID(w, r)
	if !ok {
		return
	}
	h.deleted(w, r, h.service.Delete(r.Context(), id))
}

func (h *TodoHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	h.deleted(w, r, h.service.DeleteAll(r.Context()))
}

func (h *TodoHandler) deleted(w http.ResponseWriter, r *http.Request, ok bool) {
	if !ok {
		respond.Error(w, r, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	respond.Status(w, r, http.StatusNoContent)
}

// decode читает JSON объект и проверяет его валидатором. При ошибке ответ уже записан.
func (h *TodoHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			respond.Error(w, r, http.StatusBadRequest, "empty request body")
			return false
		}
		h.logger.Debug("failed to decode json", zap.Error(err), zap.String("request_id", middleware.GetReqID(r.Context())))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return false
	}
	// null, массивы и скаляры не годятся, как и данные после объекта
	if raw[0] != '{' || dec.More() {
		respond.Error(w, r, http.StatusBadRequest, "request body must be a single json object")
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "validation error")
		return false
	}
	return true
}

func (h *TodoHandler) todoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "todoId"), 10, 64)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid todo id")
		return 0, false
	}
	return id, true
}

// Любая ошибка хранилища для клиента - 503
func (h *TodoHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetReqID(r.Context())
	switch {
	case errors.Is(err, repo.ErrorConflict):
		h.logger.Warn("constraint violation", zap.String("request_id", reqID), zap.Error(err))
		respond.Error(w, r, http.StatusServiceUnavailable, "conflict")
	default:
		h.logger.Error("storage failure", zap.String("request_id", reqID), zap.Error(err))
		respond.Error(w, r, http.StatusServiceUnavailable, "service unavailable")
	}
}

// absoluteURI собирает адрес запроса без завершающего слеша
func absoluteURI(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, "/")
}
