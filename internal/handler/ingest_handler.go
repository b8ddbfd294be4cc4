package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sivanlg/homeradar/internal/pkg/errcode"
	"github.com/sivanlg/homeradar/internal/pkg/response"
	"github.com/sivanlg/homeradar/internal/service"
)

type IngestHandler struct {
	ingest *service.IngestService
}

func NewIngestHandler(ingest *service.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

type ingestFileRequest struct {
	File      string `json:"file"`
	City      string `json:"city"`
	SegmentID string `json:"segment_id"`
}

func (h *IngestHandler) IngestFile(c *gin.Context) {
	var req ingestFileRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.File == "" {
		response.Error(c, errcode.ErrInvalid, "file is required")
		return
	}
	result, err := h.ingest.IngestFile(c.Request.Context(), req.File, req.City, req.SegmentID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
