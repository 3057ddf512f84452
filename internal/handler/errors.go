package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/resourcemap-backend-go/internal/heatmap"
	"github.com/jengzang/resourcemap-backend-go/internal/service"
	"github.com/jengzang/resourcemap-backend-go/pkg/response"
)

// writeError maps service and engine errors to HTTP responses
func writeError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case heatmap.IsInvalidRequest(err), errors.As(err, &verr):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrSchemaNotFound), errors.Is(err, service.ErrMarkerNotFound):
		response.Error(c, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, heatmap.ErrEmptyInput):
		response.Error(c, http.StatusUnprocessableEntity, err.Error(), nil)
	case errors.Is(err, service.ErrSuperseded), errors.Is(err, context.Canceled):
		response.Error(c, response.StatusClientClosedRequest, err.Error(), nil)
	default:
		response.InternalError(c, "Internal server error", err)
	}
}
