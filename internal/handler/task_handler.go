package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nagomi-dev/dayflow/internal/domain"
	"github.com/nagomi-dev/dayflow/internal/service/schedule"
)

type TaskHandler struct {
	scheduleService *schedule.Service
}

func NewTaskHandler(scheduleService *schedule.Service) *TaskHandler {
	return &TaskHandler{scheduleService: scheduleService}
}

type createTaskRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,gt=0"`
}

type updateTaskRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	DurationMinutes *int    `json:"duration_minutes"`
	Status          *string `json:"status"`
}

type taskResponse struct {
	ID              uuid.UUID `json:"id"`
	SessionID       uuid.UUID `json:"session_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newTaskResponse(task *domain.Task) taskResponse {
	return taskResponse{
		ID:              task.ID,
		SessionID:       task.SessionID,
		Name:            task.Name,
		Description:     task.Description,
		DurationMinutes: task.DurationMinutes,
		Status:          task.Status.String(),
		CreatedAt:       task.CreatedAt,
		UpdatedAt:       task.UpdatedAt,
	}
}

// HandleCreateTask handles POST /sessions/:sessionID/tasks.
func (h *TaskHandler) HandleCreateTask(c *gin.Context) {
	userID := userIDFrom(c)

	sessionID, err := uuid.Parse(c.Param("sessionID"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_session_id", "session ID must be a UUID")
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	task, err := h.scheduleService.CreateTask(c.Request.Context(), userID, sessionID, req.Name, req.Description, req.DurationMinutes)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

// HandleListTasks handles GET /sessions/:sessionID/tasks.
func (h *TaskHandler) HandleListTasks(c *gin.Context) {
	userID := userIDFrom(c)

	sessionID, err := uuid.Parse(c.Param("sessionID"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_session_id", "session ID must be a UUID")
		return
	}

	tasks, err := h.scheduleService.ListTasks(c.Request.Context(), userID, sessionID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	responses := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, newTaskResponse(&tasks[i]))
	}

	c.JSON(http.StatusOK, gin.H{"tasks": responses})
}

// HandleUpdateTask handles PATCH /tasks/:taskID.
func (h *TaskHandler) HandleUpdateTask(c *gin.Context) {
	userID := userIDFrom(c)

	taskID, err := uuid.Parse(c.Param("taskID"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_task_id", "task ID must be a UUID")
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	update := schedule.TaskUpdate{
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
	}
	if req.Status != nil {
		status, err := domain.ParseTaskStatus(*req.Status)
		if err != nil {
			respondDomainError(c, err)
			return
		}
		update.Status = &status
	}
	if req.DurationMinutes != nil && *req.DurationMinutes <= 0 {
		respondError(c, http.StatusBadRequest, "invalid_duration", "duration_minutes must be positive")
		return
	}

	task, err := h.scheduleService.UpdateTask(c.Request.Context(), userID, taskID, update)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

// HandleDeleteTask handles DELETE /tasks/:taskID.
func (h *TaskHandler) HandleDeleteTask(c *gin.Context) {
	userID := userIDFrom(c)

	taskID, err := uuid.Parse(c.Param("taskID"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_task_id", "task ID must be a UUID")
		return
	}

	if err := h.scheduleService.DeleteTask(c.Request.Context(), userID, taskID); err != nil {
		respondDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
