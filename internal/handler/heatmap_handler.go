package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/resourcemap-backend-go/internal/heatmap"
	"github.com/jengzang/resourcemap-backend-go/internal/models"
	"github.com/jengzang/resourcemap-backend-go/internal/service"
	"github.com/jengzang/resourcemap-backend-go/pkg/response"
)

// SessionHeader identifies the client view whose older raster requests a
// new request supersedes
const SessionHeader = "X-Session-ID"

// HeatmapHandler handles HTTP requests for raster generation
type HeatmapHandler struct {
	service *service.HeatmapService
}

// NewHeatmapHandler creates a new heatmap handler
func NewHeatmapHandler(service *service.HeatmapService) *HeatmapHandler {
	return &HeatmapHandler{service: service}
}

// HeatmapRequest is a raster request plus an optional session id.
// Absent fields keep the map client defaults.
type HeatmapRequest struct {
	models.RasterRequest
	Session string `json:"session"`
}

func (h *HeatmapHandler) bind(c *gin.Context) (HeatmapRequest, bool) {
	req := HeatmapRequest{RasterRequest: models.DefaultRasterRequest()}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid request body")
		return req, false
	}
	if req.Session == "" {
		req.Session = c.GetHeader(SessionHeader)
	}
	return req, true
}

// Generate builds a raster for a dataset
// POST /api/v1/datasets/:dataset/heatmap
func (h *HeatmapHandler) Generate(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}

	raster, err := h.service.Generate(c.Request.Context(), c.Param("dataset"), req.Session, req.RasterRequest)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, raster)
}

// GeneratePNG builds a raster and renders it as a PNG image
// POST /api/v1/datasets/:dataset/heatmap.png?scale=4
func (h *HeatmapHandler) GeneratePNG(c *gin.Context) {
	scale, err := strconv.Atoi(c.DefaultQuery("scale", "1"))
	if err != nil || scale < 1 || scale > heatmap.MaxImageScale {
		response.BadRequest(c, fmt.Sprintf("scale must be an integer between 1 and %d", heatmap.MaxImageScale))
		return
	}

	req, ok := h.bind(c)
	if !ok {
		return
	}

	raster, err := h.service.Generate(c.Request.Context(), c.Param("dataset"), req.Session, req.RasterRequest)
	if err != nil {
		writeError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := heatmap.EncodePNG(&buf, raster, scale); err != nil {
		writeError(c, err)
		return
	}

	// bounds let clients place the image as a map overlay
	c.Header("X-Raster-Bounds", fmt.Sprintf("%g,%g,%g,%g",
		raster.Bounds[0][0], raster.Bounds[0][1], raster.Bounds[1][0], raster.Bounds[1][1]))
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// Options lists the raster parameter choices
// GET /api/v1/heatmap/options
func (h *HeatmapHandler) Options(c *gin.Context) {
	response.Success(c, h.service.Options())
}
