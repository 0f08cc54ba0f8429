package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/rewards_ledger/internal/core/ports/services"
	"github.com/SscSPs/rewards_ledger/internal/dto"
	"github.com/SscSPs/rewards_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// eventHandler receives earning events from the collaborating services.
type eventHandler struct {
	earningService portssvc.EarningTriggerSvc
}

// registerEventRoutes registers the earning trigger routes.
func registerEventRoutes(rg *gin.RouterGroup, es portssvc.EarningTriggerSvc) {
	h := &eventHandler{earningService: es}
	admin := middleware.RequireRole(middleware.RoleAdmin)

	events := rg.Group("/events")
	{
		events.POST("/task-approvals", h.approveTask)
		events.POST("/quiz-grades", h.gradeQuiz)
		events.POST("/check-ins", h.checkIn)
		events.POST("/dispute-refunds", h.refundDispute)
		events.POST("/adjustments", admin, h.adjust)
		events.POST("/reversals", admin, h.reverseEarning)
	}
}

// respondOutcome answers 201 for a fresh credit and 200 for a replayed event.
func respondOutcome(c *gin.Context, logger *slog.Logger, outcome *domain.EarningOutcome) {
	if outcome.DistributionError != "" {
		logger.Warn("Earning recorded with incomplete commission fan-out",
			slog.String("event_id", outcome.EventID), slog.String("error", outcome.DistributionError))
	}
	if outcome.ChainCorrupted {
		logger.Warn("Earning fan-out stopped at a referral cycle", slog.String("event_id", outcome.EventID))
	}
	if outcome.AlreadyRecorded {
		c.JSON(http.StatusOK, outcome)
		return
	}
	c.JSON(http.StatusCreated, outcome)
}

// approveTask godoc
// @Summary Record an approved task submission
// @Description Credits the task reward to the submitter and pays referral commissions. Replaying the same submission is a no-op.
// @Tags events
// @Accept  json
// @Produce  json
// @Param   request body dto.TaskApprovalRequest true "Task approval"
// @Success 201 {object} domain.EarningOutcome
// @Success 200 {object} domain.EarningOutcome "Already recorded"
// @Failure 400 {object} map[string]string "Invalid input or amount"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Unknown account"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /events/task-approvals [post]
// @Security BearerAuth
func (h *eventHandler) approveTask(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TaskApprovalRequest
	if !bindJSON(c, logger, &req, "ApproveTaskSubmission") {
		return
	}

	outcome, err := h.earningService.ApproveTaskSubmission(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record task approval")
		return
	}
	respondOutcome(c, logger, outcome)
}

// gradeQuiz godoc
// @Summary Record a graded quiz attempt
// @Description Credits the quiz reward in points and pays referral commissions.
// @Tags events
// @Accept  json
// @Produce  json
// @Param   request body dto.QuizGradeRequest true "Quiz grade"
// @Success 201 {object} domain.EarningOutcome
// @Success 200 {object} domain.EarningOutcome "Already recorded"
// @Failure 400 {object} map[string]string "Invalid input or amount"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Unknown account"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /events/quiz-grades [post]
// @Security BearerAuth
func (h *eventHandler) gradeQuiz(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.QuizGradeRequest
	if !bindJSON(c, logger, &req, "GradeQuiz") {
		return
	}

	outcome, err := h.earningService.GradeQuiz(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record quiz grade")
		return
	}
	respondOutcome(c, logger, outcome)
}

// checkIn godoc
// @Summary Record a daily check-in
// @Description Credits the check-in bonus once per account per UTC day.
// @Tags events
// @Accept  json
// @Produce  json
// @Param   request body dto.CheckInRequest true "Check-in"
// @Success 201 {object} domain.EarningOutcome
// @Success 200 {object} domain.EarningOutcome "Already checked in"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Unknown account"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /events/check-ins [post]
// @Security BearerAuth
func (h *eventHandler) checkIn(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CheckInRequest
	if !bindJSON(c, logger, &req, "DailyCheckIn") {
		return
	}

	outcome, err := h.earningService.DailyCheckIn(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record check-in")
		return
	}
	respondOutcome(c, logger, outcome)
}

// refundDispute godoc
// @Summary Record a dispute refund
// @Description Credits a refund resolved in the account's favour.
// @Tags events
// @Accept  json
// @Produce  json
// @Param   request body dto.DisputeRefundRequest true "Dispute refund"
// @Success 201 {object} domain.EarningOutcome
// @Success 200 {object} domain.EarningOutcome "Already recorded"
// @Failure 400 {object} map[string]string "Invalid input or amount"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Unknown account"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /events/dispute-refunds [post]
// @Security BearerAuth
func (h *eventHandler) refundDispute(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.DisputeRefundRequest
	if !bindJSON(c, logger, &req, "RefundDispute") {
		return
	}

	outcome, err := h.earningService.RefundDispute(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to record dispute refund")
		return
	}
	respondOutcome(c, logger, outcome)
}

// adjust godoc
// @Summary Adjust a balance
// @Description Positive amounts credit an adjustment, negative amounts debit a penalty. Admin only.
// @Tags events
// @Accept  json
// @Produce  json
// @Param   request body dto.AdjustmentRequest true "Adjustment"
// @Success 201 {object} domain.EarningOutcome
// @Success 200 {object} domain.EarningOutcome "Already recorded"
// @Failure 400 {object} map[string]string "Invalid input or amount"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Unknown account"
// @Failure 422 {object} map[string]string "Insufficient balance"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /events/adjustments [post]
// @Security BearerAuth
func (h *eventHandler) adjust(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	adminID, _ := middleware.GetUserIDFromContext(c)

	var req dto.AdjustmentRequest
	if !bindJSON(c, logger, &req, "AdminAdjust") {
		return
	}

	outcome, err := h.earningService.AdminAdjust(c.Request.Context(), req, adminID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to adjust balance")
		return
	}
	respondOutcome(c, logger, outcome)
}

// reverseEarning godoc
// @Summary Reverse an earning event
// @Description Takes back the originating credit of an event and the commissions paid for it. Admin only.
// @Tags events
// @Accept  json
// @Produce  json
// @Param   request body dto.EarningReversalRequest true "Reversal"
// @Success 201 {object} domain.EarningOutcome
// @Success 200 {object} domain.EarningOutcome "Already reversed"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Original event not found"
// @Failure 422 {object} map[string]string "Insufficient balance"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /events/reversals [post]
// @Security BearerAuth
func (h *eventHandler) reverseEarning(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	adminID, _ := middleware.GetUserIDFromContext(c)

	var req dto.EarningReversalRequest
	if !bindJSON(c, logger, &req, "ReverseEarning") {
		return
	}

	outcome, err := h.earningService.ReverseEarning(c.Request.Context(), req, adminID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to reverse earning")
		return
	}
	respondOutcome(c, logger, outcome)
}
