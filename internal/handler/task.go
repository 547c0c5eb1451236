package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/taskhive/taskhive-go/internal/model"
	"github.com/taskhive/taskhive-go/internal/service"
)

// TaskHandler handles HTTP requests for task CRUD operations.
type TaskHandler struct {
	service *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

// HandleList handles GET /api/tasks requests.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.List(r.Context())
	if err != nil {
		slog.Error("task list failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse("Server error retrieving tasks"))
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// HandleCreate handles POST /api/tasks requests.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse("Invalid request body"))
		return
	}

	resp, err := h.service.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrTaskFieldsRequired) {
			writeJSON(w, http.StatusBadRequest, messageResponse(err.Error()))
			return
		}
		slog.Error("task create failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse("Server error creating task"))
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleGet handles GET /api/tasks/{task_id} requests.
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			writeJSON(w, http.StatusNotFound, messageResponse(err.Error()))
			return
		}
		slog.Error("task get failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse("Server error retrieving task"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleUpdate handles PUT /api/tasks/{task_id} requests.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse("Invalid request body"))
		return
	}

	resp, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTaskFieldsRequired):
			writeJSON(w, http.StatusBadRequest, messageResponse(err.Error()))
		case errors.Is(err, service.ErrTaskNotFound):
			writeJSON(w, http.StatusNotFound, messageResponse(err.Error()))
		default:
			slog.Error("task update failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, messageResponse("Server error updating task"))
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleDelete handles DELETE /api/tasks/{task_id} requests.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			writeJSON(w, http.StatusNotFound, messageResponse(err.Error()))
			return
		}
		slog.Error("task delete failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse("Server error deleting task"))
		return
	}

	writeJSON(w, http.StatusOK, messageResponse("Task deleted successfully"))
}

// taskID parses the task_id URL parameter, writing a not-found response
// for anything that is not a valid ID.
func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "task_id"), 10, 64)
	if err != nil || id < 1 {
		writeJSON(w, http.StatusNotFound, messageResponse("Task not found"))
		return 0, false
	}
	return id, true
}
