package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/rewards_ledger/internal/core/ports/services"
	"github.com/SscSPs/rewards_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type homeHandler struct {
	schedule portssvc.CommissionScheduleReaderSvc
}

// getHome godoc
// @Summary Show the status of the server
// @Description Reports that the API is up and which commission schedule version it serves.
// @Tags root
// @Accept */*
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *homeHandler) getHome(c *gin.Context) {
	status := gin.H{"message": "Rewards Ledger API v1"}
	if snapshot, err := h.schedule.Snapshot(c.Request.Context()); err == nil {
		status["scheduleVersion"] = snapshot.Version
	} else {
		middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Schedule unavailable for status", "error", err)
	}
	c.JSON(http.StatusOK, status)
}

func registerHomeRoutes(group *gin.RouterGroup, schedule portssvc.CommissionScheduleReaderSvc) {
	h := &homeHandler{schedule: schedule}
	group.GET("/", h.getHome)
}
