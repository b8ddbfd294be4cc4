package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sivanlg/homeradar/internal/model"
	"github.com/sivanlg/homeradar/internal/pkg/errcode"
	"github.com/sivanlg/homeradar/internal/pkg/response"
	"github.com/sivanlg/homeradar/internal/service"
)

type SearchHandler struct {
	search *service.SearchService
}

func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

type searchRequest struct {
	Query    string   `json:"query"`
	City     string   `json:"city"`
	MinPrice *int64   `json:"min_price"`
	MaxPrice *int64   `json:"max_price"`
	MinRooms *float64 `json:"min_rooms"`
	MaxRooms *float64 `json:"max_rooms"`
	Limit    int      `json:"limit"`
}

func (h *SearchHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	filters := model.SearchFilters{
		City:     req.City,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		MinRooms: req.MinRooms,
		MaxRooms: req.MaxRooms,
	}
	results, err := h.search.Search(c.Request.Context(), req.Query, filters, req.Limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"results": results})
}
