package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/rewards_ledger/internal/core/ports/services"
	"github.com/SscSPs/rewards_ledger/internal/dto"
	"github.com/SscSPs/rewards_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// commissionHandler serves the commission schedule and manual fan-outs.
type commissionHandler struct {
	distributor portssvc.CommissionDistributorSvc
	schedule    portssvc.CommissionScheduleSvcFacade
}

// registerCommissionRoutes registers the schedule and distribution routes.
func registerCommissionRoutes(rg *gin.RouterGroup, distributor portssvc.CommissionDistributorSvc, schedule portssvc.CommissionScheduleSvcFacade) {
	h := &commissionHandler{distributor: distributor, schedule: schedule}
	admin := middleware.RequireRole(middleware.RoleAdmin)

	rg.GET("/commission-schedule", h.getSchedule)
	rg.PUT("/commission-schedule", admin, h.replaceSchedule)

	commissions := rg.Group("/commissions")
	{
		commissions.POST("/distribute", admin, h.distribute)
		commissions.POST("/reversals", admin, h.reverse)
		commissions.GET("/events/:eventID", h.listEventEarnings)
	}
}

// getSchedule godoc
// @Summary Get the commission schedule
// @Description Returns the snapshot currently used for fan-outs, with any entries that were skipped as malformed.
// @Tags commissions
// @Produce  json
// @Success 200 {object} dto.ScheduleResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /commission-schedule [get]
// @Security BearerAuth
func (h *commissionHandler) getSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	snapshot, err := h.schedule.Snapshot(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to load commission schedule")
		return
	}
	c.JSON(http.StatusOK, dto.ToScheduleResponse(snapshot, nil))
}

// replaceSchedule godoc
// @Summary Replace the commission schedule
// @Description Stores a new schedule version. Fan-outs already running keep the snapshot they started with.
// @Tags commissions
// @Accept  json
// @Produce  json
// @Param   schedule body dto.ReplaceScheduleRequest true "Schedule entries"
// @Success 200 {object} dto.ScheduleResponse
// @Failure 400 {object} map[string]string "Invalid schedule"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /commission-schedule [put]
// @Security BearerAuth
func (h *commissionHandler) replaceSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, _ := middleware.GetUserIDFromContext(c)

	var req dto.ReplaceScheduleRequest
	if !bindJSON(c, logger, &req, "ReplaceSchedule") {
		return
	}

	snapshot, warnings, err := h.schedule.Replace(c.Request.Context(), req, userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to replace commission schedule")
		return
	}

	logger.Info("Commission schedule replaced", slog.Int64("version", snapshot.Version), slog.Int("warnings", len(warnings)))
	c.JSON(http.StatusOK, dto.ToScheduleResponse(snapshot, warnings))
}

// distribute godoc
// @Summary Run a commission fan-out
// @Description Pays the ancestors of the source account for an event. Levels already paid for the event are skipped, so the call is safe to repeat.
// @Tags commissions
// @Accept  json
// @Produce  json
// @Param   request body dto.DistributeRequest true "Fan-out request"
// @Success 200 {object} dto.DistributionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Unknown source account"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /commissions/distribute [post]
// @Security BearerAuth
func (h *commissionHandler) distribute(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.DistributeRequest
	if !bindJSON(c, logger, &req, "Distribute") {
		return
	}

	dist, err := h.distributor.Distribute(c.Request.Context(), req.SourceAccountID, req.BaseAmount, req.EventID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to distribute commissions")
		return
	}
	c.JSON(http.StatusOK, dto.ToDistributionResponse(dist))
}

// reverse godoc
// @Summary Reverse the commissions of an event
// @Description Debits every commission paid for the original event under a new reversal event. Levels whose beneficiary cannot cover the debit are reported and skipped.
// @Tags commissions
// @Accept  json
// @Produce  json
// @Param   request body dto.ReverseCommissionsRequest true "Reversal request"
// @Success 200 {object} dto.DistributionResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /commissions/reversals [post]
// @Security BearerAuth
func (h *commissionHandler) reverse(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ReverseCommissionsRequest
	if !bindJSON(c, logger, &req, "ReverseCommissions") {
		return
	}

	dist, err := h.distributor.Reverse(c.Request.Context(), req.OriginalEventID, req.ReversalEventID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to reverse commissions")
		return
	}
	c.JSON(http.StatusOK, dto.ToDistributionResponse(dist))
}

// listEventEarnings godoc
// @Summary List the referral earnings of an event
// @Description Returns every commission row recorded under the event id, including reversal rows.
// @Tags commissions
// @Produce  json
// @Param   eventID path string true "Event ID"
// @Success 200 {object} dto.EventEarningsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /commissions/events/{eventID} [get]
// @Security BearerAuth
func (h *commissionHandler) listEventEarnings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	eventID := c.Param("eventID")

	earnings, err := h.distributor.EarningsForEvent(c.Request.Context(), eventID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list referral earnings")
		return
	}
	c.JSON(http.StatusOK, dto.EventEarningsResponse{EventID: eventID, Earnings: earnings})
}
