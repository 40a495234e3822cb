package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/filemigrate/api/models"
	"github.com/moyoez/filemigrate/tool"
	"github.com/moyoez/filemigrate/transfer"
	"github.com/moyoez/filemigrate/types"
)

// UserUploadBatch builds items from local paths and starts every transfer at once.
// Groups share one batch, so the batch completes when all of them have settled.
// POST /api/self/v1/upload-batch
func UserUploadBatch(c *gin.Context) {
	var request types.UserUploadBatchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid request body: "+err.Error()))
		return
	}

	dest, err := resolveDestination(request)
	if err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return
	}

	groups := make([]transfer.Group, 0, len(request.Groups))
	total := 0
	for _, g := range request.Groups {
		files, err := tool.ExpandPaths(g.Paths)
		if err != nil {
			c.JSON(http.StatusBadRequest, tool.FastReturnErrorWithData(err.Error(), map[string]any{"group": g.Name}))
			return
		}
		items := make([]types.TransferItem, 0, len(files))
		for _, path := range files {
			item, err := tool.BuildTransferItem(path)
			if err != nil {
				c.JSON(http.StatusBadRequest, tool.FastReturnErrorWithData(err.Error(), map[string]any{"group": g.Name, "path": path}))
				return
			}
			// names may repeat across folders, ids must not
			item.ID = tool.GenerateRandomUUID()
			items = append(items, item)
		}
		total += len(items)
		groups = append(groups, transfer.Group{Name: g.Name, Items: items})
	}
	if total == 0 {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("No files to upload"))
		return
	}

	coordinator := models.GetCoordinator()
	tally := coordinator.NewTally()
	models.GetBatchRegistry().Track(tally)
	started, err := coordinator.Submit(c.Request.Context(), tally, dest, groups...)
	if err != nil {
		models.GetBatchRegistry().Delete(tally.ID())
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to submit batch: "+err.Error()))
		return
	}
	tool.DefaultLogger.Infof("[UploadBatch] batch %s started with %d files in %d groups", tally.ID(), started, len(groups))
	c.JSON(http.StatusAccepted, types.UserUploadBatchResponse{BatchID: tally.ID(), Total: started})
}

func resolveDestination(request types.UserUploadBatchRequest) (types.Destination, error) {
	dest := models.GetDefaultDestination()
	if request.Kind != "" {
		kind, err := tool.ParseDestinationKind(string(request.Kind))
		if err != nil {
			return dest, err
		}
		dest.Kind = kind
	}
	if request.URL != "" {
		dest.URL = request.URL
	}
	if dest.URL == "" {
		return dest, fmt.Errorf("no destination url configured")
	}
	return dest, nil
}
