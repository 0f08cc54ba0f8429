package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/rewards_ledger/internal/apperrors"
	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/rewards_ledger/internal/core/ports/services"
	"github.com/SscSPs/rewards_ledger/internal/dto"
	"github.com/SscSPs/rewards_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler holds dependencies for account handlers.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	ledgerService  portssvc.LedgerReaderSvc
	graphService   portssvc.ReferralGraphSvc
}

func newAccountHandler(as portssvc.AccountSvcFacade, ls portssvc.LedgerReaderSvc, gs portssvc.ReferralGraphSvc) *accountHandler {
	return &accountHandler{accountService: as, ledgerService: ls, graphService: gs}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, as portssvc.AccountSvcFacade, ls portssvc.LedgerReaderSvc, gs portssvc.ReferralGraphSvc) {
	h := newAccountHandler(as, ls, gs)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("/:accountID", h.getAccount)
		accounts.GET("/:accountID/transactions", h.listTransactions)
		accounts.GET("/:accountID/ancestors", h.listAncestors)
	}
}

// createAccount godoc
// @Summary Open a new account
// @Description Opens an account with zero balances, optionally linked to the referrer that invited it.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Account already exists"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /accounts [post]
// @Security BearerAuth
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateAccountRequest
	if !bindJSON(c, logger, &req, "CreateAccount") {
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create account")
		return
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("referred_by", account.ReferredBy))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get an account
// @Description Returns the balances and referrer of an account.
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /accounts/{accountID} [get]
// @Security BearerAuth
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	account, err := h.accountService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listTransactions godoc
// @Summary List an account's transactions
// @Description Pages through the transaction log of an account, newest first.
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   limit query int false "Page size (1-100)" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid paging parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /accounts/{accountID}/transactions [get]
// @Security BearerAuth
func (h *accountHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid paging parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	page, err := h.ledgerService.ListTransactions(c.Request.Context(), accountID, params)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, page)
}

// listAncestors godoc
// @Summary List an account's referral chain
// @Description Returns up to ten ancestors nearest first. A looping chain is answered with the valid prefix and chainCorrupted set.
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AncestorsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /accounts/{accountID}/ancestors [get]
// @Security BearerAuth
func (h *accountHandler) listAncestors(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	ancestors, err := h.graphService.AncestorsOf(c.Request.Context(), accountID, domain.MaxReferralDepth)
	resp := dto.AncestorsResponse{AccountID: accountID, Ancestors: ancestors}
	if err != nil {
		if !errors.Is(err, apperrors.ErrChainCorrupted) {
			respondServiceError(c, logger, err, "Failed to walk referral chain")
			return
		}
		logger.Warn("Referral chain corrupted", slog.String("account_id", accountID), slog.String("error", err.Error()))
		resp.ChainCorrupted = true
	}
	if resp.Ancestors == nil {
		resp.Ancestors = []domain.Ancestor{}
	}
	c.JSON(http.StatusOK, resp)
}
