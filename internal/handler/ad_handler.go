package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sivanlg/homeradar/internal/pkg/errcode"
	"github.com/sivanlg/homeradar/internal/pkg/response"
	"github.com/sivanlg/homeradar/internal/service"
)

type AdHandler struct {
	ads *service.AdService
}

func NewAdHandler(ads *service.AdService) *AdHandler {
	return &AdHandler{ads: ads}
}

func (h *AdHandler) Get(c *gin.Context) {
	adID := c.Param("id")
	if adID == "" {
		response.Error(c, errcode.ErrInvalid, "ad id is required")
		return
	}
	ad, err := h.ads.Get(c.Request.Context(), adID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, ad)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *AdHandler) UpdateStatus(c *gin.Context) {
	adID := c.Param("id")
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		response.Error(c, errcode.ErrInvalid, "status is required")
		return
	}
	if err := h.ads.UpdateStatus(c.Request.Context(), adID, req.Status); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"id": adID, "status": req.Status})
}

func (h *AdHandler) History(c *gin.Context) {
	adID := c.Param("id")
	if adID == "" {
		response.Error(c, errcode.ErrInvalid, "ad id is required")
		return
	}
	limit := uint(0)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			response.Error(c, errcode.ErrInvalid, "invalid limit")
			return
		}
		limit = uint(n)
	}
	ad, snapshots, err := h.ads.History(c.Request.Context(), adID, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"ad":        ad,
		"snapshots": snapshots,
	})
}
