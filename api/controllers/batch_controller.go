package controllers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/filemigrate/api/models"
	"github.com/moyoez/filemigrate/tool"
)

// UserBatchGet returns the current snapshot of a batch.
// GET /api/self/v1/batch/:id
func UserBatchGet(c *gin.Context) {
	tally, ok := models.GetBatchRegistry().Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, tool.FastReturnError("Batch not found or expired"))
		return
	}
	c.JSON(http.StatusOK, tally.Snapshot())
}

// UserBatchList returns the ids of every live batch.
// GET /api/self/v1/batches
func UserBatchList(c *gin.Context) {
	ids := models.GetBatchRegistry().List()
	sort.Strings(ids)
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(ids))
}
