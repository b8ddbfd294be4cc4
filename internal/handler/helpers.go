package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	appErr "github.com/sivanlg/homeradar/internal/pkg/errcode"
	pkgErr "github.com/sivanlg/homeradar/internal/pkg/errors"
	"github.com/sivanlg/homeradar/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case pkgErr.IsNotFound(err):
		response.Error(c, appErr.ErrNotFound, "not found")
	case errors.Is(err, pkgErr.ErrInvalid):
		response.Error(c, appErr.ErrInvalid, "invalid request")
	case pkgErr.IsConflict(err):
		response.Error(c, appErr.ErrConflict, "conflict")
	case errors.Is(err, pkgErr.ErrUnavailable):
		response.Error(c, appErr.ErrUnavailable, "service unavailable")
	default:
		response.Error(c, appErr.ErrInternal, "internal error")
	}
}
