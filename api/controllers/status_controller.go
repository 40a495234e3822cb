package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/filemigrate/api/models"
	"github.com/moyoez/filemigrate/tool"
)

// UserStatus returns the latest status report and poll health.
// GET /api/self/v1/status
func UserStatus(c *gin.Context) {
	resp := gin.H{
		"running":           true,
		"polling":           models.GetStatusURL() != "",
		"notify_ws_enabled": models.GetNotifyHub() != nil,
	}
	if res, ok := models.GetLatestPoll(); ok {
		resp["at"] = res.At
		resp["unavailable"] = res.Unavailable
		if res.Unavailable {
			resp["message"] = res.Message
		} else {
			resp["report"] = res.Report
		}
	}
	c.JSON(http.StatusOK, resp)
}

// UserConfigGet returns the effective configuration; the CSRF token is never included.
// GET /api/self/v1/config
func UserConfigGet(c *gin.Context) {
	c.JSON(http.StatusOK, tool.GetCurrentConfig())
}
