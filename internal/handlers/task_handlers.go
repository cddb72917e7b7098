package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"taskmanager/internal/handlers/dto"
	"taskmanager/internal/logger"
	"taskmanager/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// максимальный размер multipart-формы при загрузке вложений
const maxUploadSize = 32 << 20

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) TaskHandler {
	return TaskHandler{
		TaskService: taskService,
	}
}

// identity достаёт личность, положенную middleware Authenticate.
// Отсутствие личности за шлюзом - дефект маршрутизации, отвечаем 401.
func identity(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		logger.Warn("HTTP: Запрос без личности за auth-шлюзом",
			zap.String("path", r.URL.Path))
		responseWithError(w, http.StatusUnauthorized, "unauthenticated")
		return middleware.Identity{}, false
	}
	return id, true
}

func taskIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil || id == uuid.Nil {
		logger.Warn("HTTP: Не удалось получить id задачи",
			zap.String("id", idParam),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "invalid task id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := identity(w, r)
	if !ok {
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	logger.Info("HTTP: Вызов сервиса создания задач")

	created, err := h.TaskService.Create(r.Context(), caller.UserID, request.Title, request.Description, request.Status)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "create_task"),
			zap.Duration("ms", time.Since(start)))
		responseWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithObject(w, http.StatusOK, dto.FromTask(created))
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := identity(w, r)
	if !ok {
		return
	}

	tasks, err := h.TaskService.List(r.Context(), caller.UserID)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "list_tasks"))
		responseWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithObject(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *TaskHandler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := identity(w, r)
	if !ok {
		return
	}

	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	var request dto.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	logger.Info("HTTP: Вызов сервиса обновления статуса")

	updated, err := h.TaskService.UpdateStatus(r.Context(), id, request.Status, caller.UserID)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "update_status"))
		responseWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	logger.Info("HTTP_OUT: Статус задачи обновлён",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithObject(w, http.StatusOK, dto.FromTask(updated))
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := identity(w, r)
	if !ok {
		return
	}

	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	logger.Info("HTTP: Обращение к сервису для удаления задачи")

	if err := h.TaskService.Delete(r.Context(), id, caller.UserID); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "delete_task"))
		responseWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("message", "Task deleted successfully"),
	)
}

func (h *TaskHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := identity(w, r)
	if !ok {
		return
	}

	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		logger.Warn("HTTP: ошибка чтения multipart-формы",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "invalid multipart body: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.Warn("HTTP: в форме нет поля file",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Warn("HTTP: ошибка чтения файла", zap.Error(err))
		responseWithError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	logger.Info("HTTP: Вызов сервиса загрузки вложения",
		zap.String("filename", header.Filename),
		zap.Int("size", len(data)))

	updated, err := h.TaskService.AttachFile(r.Context(), id, caller.UserID, header.Filename, data)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "upload_file"))
		responseWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	logger.Info("HTTP_OUT: Вложение загружено",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("message", "File uploaded successfully"),
		toPayload("path", updated.Attachment),
	)
}

func (h *TaskHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := identity(w, r)
	if !ok {
		return
	}

	stats, err := h.TaskService.Stats(r.Context(), caller.UserID)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "stats"))
		responseWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	logger.Info("HTTP_OUT: Статистика получена",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithObject(w, http.StatusOK, stats)
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	responseWithJSON(w, http.StatusOK,
		toPayload("service", "task-manager"),
		toPayload("status", "ok"),
	)
}
