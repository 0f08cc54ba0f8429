package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/rewards_ledger/internal/core/ports/services"
	"github.com/SscSPs/rewards_ledger/internal/dto"
	"github.com/SscSPs/rewards_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler holds dependencies for direct ledger operations.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
	ledgerConfig  dto.LedgerConfigResponse
}

// registerLedgerRoutes registers routes for direct ledger access. Postings are admin only.
func registerLedgerRoutes(rg *gin.RouterGroup, ls portssvc.LedgerSvcFacade, ledgerConfig dto.LedgerConfigResponse) {
	h := &ledgerHandler{ledgerService: ls, ledgerConfig: ledgerConfig}

	ledger := rg.Group("/ledger")
	{
		ledger.GET("/config", h.getConfig)
		ledger.GET("/references/:reference", h.checkReference)
		ledger.POST("/credit", middleware.RequireRole(middleware.RoleAdmin), h.credit)
		ledger.POST("/debit", middleware.RequireRole(middleware.RoleAdmin), h.debit)
	}
}

// credit godoc
// @Summary Credit an account
// @Description Increases one balance of an account and appends a transaction. References are not deduplicated here.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   entry body dto.LedgerEntryRequest true "Ledger entry"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input or amount"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Unknown account"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /ledger/credit [post]
// @Security BearerAuth
func (h *ledgerHandler) credit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.LedgerEntryRequest
	if !bindJSON(c, logger, &req, "Credit") {
		return
	}

	txn, err := h.ledgerService.Credit(c.Request.Context(), req.ToLedgerEntry())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to credit account")
		return
	}
	logger.Info("Manual credit posted", slog.String("transaction_id", txn.TransactionID), slog.String("reference", txn.Reference))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// debit godoc
// @Summary Debit an account
// @Description Decreases one balance of an account when it holds enough and appends a transaction.
// @Tags ledger
// @Accept  json
// @Produce  json
// @Param   entry body dto.LedgerEntryRequest true "Ledger entry"
// @Success 201 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid input or amount"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Unknown account"
// @Failure 422 {object} map[string]string "Insufficient balance"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /ledger/debit [post]
// @Security BearerAuth
func (h *ledgerHandler) debit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.LedgerEntryRequest
	if !bindJSON(c, logger, &req, "Debit") {
		return
	}

	txn, err := h.ledgerService.Debit(c.Request.Context(), req.ToLedgerEntry())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to debit account")
		return
	}
	logger.Info("Manual debit posted", slog.String("transaction_id", txn.TransactionID), slog.String("reference", txn.Reference))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

// checkReference godoc
// @Summary Check a ledger reference
// @Description Reports whether any transaction already carries the reference.
// @Tags ledger
// @Produce  json
// @Param   reference path string true "Ledger reference"
// @Success 200 {object} dto.ReferenceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /ledger/references/{reference} [get]
// @Security BearerAuth
func (h *ledgerHandler) checkReference(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	reference := c.Param("reference")

	exists, err := h.ledgerService.HasReference(c.Request.Context(), reference)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to check reference")
		return
	}
	c.JSON(http.StatusOK, dto.ReferenceResponse{Reference: reference, Exists: exists})
}

// getConfig godoc
// @Summary Show ledger configuration
// @Description Returns the commission ledger, cash precision and the points-per-cash conversion factor.
// @Tags ledger
// @Produce  json
// @Success 200 {object} dto.LedgerConfigResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /ledger/config [get]
// @Security BearerAuth
func (h *ledgerHandler) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.ledgerConfig)
}
