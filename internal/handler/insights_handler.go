package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nagomi-dev/dayflow/internal/domain"
	"github.com/nagomi-dev/dayflow/internal/service/insights"
	"github.com/nagomi-dev/dayflow/internal/service/schedule"
)

type InsightsHandler struct {
	insightsService *insights.Service
	scheduleService *schedule.Service
}

func NewInsightsHandler(insightsService *insights.Service, scheduleService *schedule.Service) *InsightsHandler {
	return &InsightsHandler{
		insightsService: insightsService,
		scheduleService: scheduleService,
	}
}

// HandleGetInsights handles GET /insights. The response always carries
// a narrative; the narrative_source field says whether the external
// collaborator or the local fallback produced it.
func (h *InsightsHandler) HandleGetInsights(c *gin.Context) {
	ctx := c.Request.Context()
	userID := userIDFrom(c)

	result, err := h.insightsService.Fetch(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "insights request failed",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()),
		)
		respondError(c, http.StatusInternalServerError, "insights_failed", "failed to compute insights")
		return
	}

	c.JSON(http.StatusOK, result)
}

type applyProposalRequest struct {
	Kind      string           `json:"type" binding:"required"`
	Target    domain.TimeRange `json:"target" binding:"required"`
	DayOfWeek string           `json:"day_of_week" binding:"required"`
}

// HandleApplyProposal handles POST /insights/apply. Accepting a
// proposal re-runs the full save pipeline; a proposal that no longer
// fits the stored schedule is rejected like any other bad edit. Success
// is an acknowledgement only, no payload.
func (h *InsightsHandler) HandleApplyProposal(c *gin.Context) {
	userID := userIDFrom(c)

	var req applyProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	day, err := domain.ParseDayOfWeek(req.DayOfWeek)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	proposal := domain.Proposal{Kind: req.Kind, Target: req.Target}
	if _, err := h.scheduleService.ApplyProposal(c.Request.Context(), userID, day, proposal); err != nil {
		respondDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
