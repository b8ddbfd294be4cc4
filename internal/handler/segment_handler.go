package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sivanlg/homeradar/internal/model"
	"github.com/sivanlg/homeradar/internal/pkg/errcode"
	"github.com/sivanlg/homeradar/internal/pkg/response"
	"github.com/sivanlg/homeradar/internal/service"
)

type SegmentHandler struct {
	segments *service.SegmentService
}

func NewSegmentHandler(segments *service.SegmentService) *SegmentHandler {
	return &SegmentHandler{segments: segments}
}

type createSegmentRequest struct {
	City     string                `json:"city"`
	Criteria model.SegmentCriteria `json:"criteria"`
}

func (h *SegmentHandler) Create(c *gin.Context) {
	var req createSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.City == "" {
		response.Error(c, errcode.ErrInvalid, "city is required")
		return
	}
	segment, err := h.segments.CreateTrackedSegment(c.Request.Context(), req.City, req.Criteria)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, segment)
}

func (h *SegmentHandler) List(c *gin.Context) {
	segments, err := h.segments.List(c.Request.Context(), 50, 0)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"segments": segments})
}
