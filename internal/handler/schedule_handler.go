package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nagomi-dev/dayflow/internal/domain"
	"github.com/nagomi-dev/dayflow/internal/service/schedule"
)

type ScheduleHandler struct {
	scheduleService *schedule.Service
}

func NewScheduleHandler(scheduleService *schedule.Service) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService}
}

type sessionRequest struct {
	EnergyType string `json:"energy_type" binding:"required"`
	StartTime  string `json:"start_time" binding:"required"`
	EndTime    string `json:"end_time" binding:"required"`
}

type saveScheduleRequest struct {
	WakeTime  string           `json:"wake_time" binding:"required"`
	SleepTime string           `json:"sleep_time" binding:"required"`
	Sessions  []sessionRequest `json:"sessions" binding:"required"`
}

type saveScheduleResponse struct {
	ScheduleID uuid.UUID                        `json:"schedule_id"`
	SessionIDs map[domain.EnergyLabel]uuid.UUID `json:"session_ids"`
}

type blockResponse struct {
	SessionID uuid.UUID        `json:"session_id"`
	Range     domain.TimeRange `json:"range"`
}

type scheduleResponse struct {
	ScheduleID uuid.UUID                            `json:"schedule_id"`
	Day        string                               `json:"day"`
	WakeTime   domain.TimeOfDay                     `json:"wake_time"`
	SleepTime  domain.TimeOfDay                     `json:"sleep_time"`
	Blocks     map[domain.EnergyLabel]blockResponse `json:"blocks"`
}

func newScheduleResponse(saved *domain.SavedDaySchedule) scheduleResponse {
	blocks := make(map[domain.EnergyLabel]blockResponse, 3)
	for _, block := range saved.Schedule.Blocks.Blocks() {
		blocks[block.Label] = blockResponse{
			SessionID: saved.SessionIDs[block.Label],
			Range:     block.Range,
		}
	}
	return scheduleResponse{
		ScheduleID: saved.ScheduleID,
		Day:        dayName(saved.Schedule.Day),
		WakeTime:   saved.Schedule.WakeTime,
		SleepTime:  saved.Schedule.SleepTime,
		Blocks:     blocks,
	}
}

// HandleSaveSchedule handles PUT /schedules/:day.
func (h *ScheduleHandler) HandleSaveSchedule(c *gin.Context) {
	ctx := c.Request.Context()
	userID := userIDFrom(c)

	day, err := domain.ParseDayOfWeek(c.Param("day"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	var req saveScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	candidate := &domain.DaySchedule{UserID: userID, Day: day}
	if candidate.WakeTime, err = domain.ParseClock(req.WakeTime); err != nil {
		respondDomainError(c, err)
		return
	}
	if candidate.SleepTime, err = domain.ParseClock(req.SleepTime); err != nil {
		respondDomainError(c, err)
		return
	}

	if len(req.Sessions) != len(domain.EnergyLabels()) {
		respondError(c, http.StatusBadRequest, "invalid_body", "exactly one session per energy label required")
		return
	}
	seen := make(map[domain.EnergyLabel]bool, 3)
	for _, session := range req.Sessions {
		label, err := domain.ParseEnergyLabel(session.EnergyType)
		if err != nil {
			respondDomainError(c, err)
			return
		}
		if seen[label] {
			respondError(c, http.StatusBadRequest, "invalid_body", "duplicate energy label "+label.String())
			return
		}
		seen[label] = true

		parsed, err := parseRange(session.StartTime, session.EndTime)
		if err != nil {
			respondDomainError(c, err)
			return
		}
		candidate.Blocks.SetRange(label, parsed)
	}

	saved, err := h.scheduleService.SaveDaySchedule(ctx, candidate)
	if err != nil {
		slog.WarnContext(ctx, "schedule save rejected",
			slog.String("user_id", userID.String()),
			slog.String("day", c.Param("day")),
			slog.String("error", err.Error()),
		)
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, saveScheduleResponse{
		ScheduleID: saved.ScheduleID,
		SessionIDs: saved.SessionIDs,
	})
}

// HandleGetSchedule handles GET /schedules/:day.
func (h *ScheduleHandler) HandleGetSchedule(c *gin.Context) {
	userID := userIDFrom(c)

	day, err := domain.ParseDayOfWeek(c.Param("day"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	saved, err := h.scheduleService.GetDaySchedule(c.Request.Context(), userID, day)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newScheduleResponse(saved))
}

type editBlockRequest struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

// HandleEditBlock handles PATCH /schedules/:day/blocks/:label.
func (h *ScheduleHandler) HandleEditBlock(c *gin.Context) {
	ctx := c.Request.Context()
	userID := userIDFrom(c)

	day, err := domain.ParseDayOfWeek(c.Param("day"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	label, err := domain.ParseEnergyLabel(c.Param("label"))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	var req editBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	r, err := parseRange(req.Start, req.End)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	saved, err := h.scheduleService.EditBlock(ctx, userID, day, label, r)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, newScheduleResponse(saved))
}

func parseRange(startClock, endClock string) (domain.TimeRange, error) {
	start, err := domain.ParseClock(startClock)
	if err != nil {
		return domain.TimeRange{}, err
	}
	end, err := domain.ParseClock(endClock)
	if err != nil {
		return domain.TimeRange{}, err
	}
	return domain.TimeRange{Start: start, End: end}, nil
}

func dayName(day time.Weekday) string {
	return strings.ToLower(day.String())
}
