package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/resourcemap-backend-go/internal/models"
	"github.com/jengzang/resourcemap-backend-go/internal/service"
	"github.com/jengzang/resourcemap-backend-go/pkg/response"
)

// MarkerHandler handles HTTP requests for markers
type MarkerHandler struct {
	service *service.MarkerService
}

// NewMarkerHandler creates a new marker handler
func NewMarkerHandler(service *service.MarkerService) *MarkerHandler {
	return &MarkerHandler{service: service}
}

// Datasets lists the dataset names
// GET /api/v1/datasets
func (h *MarkerHandler) Datasets(c *gin.Context) {
	datasets, err := h.service.Datasets(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, datasets)
}

// List returns every marker of a dataset
// GET /api/v1/datasets/:dataset/markers
func (h *MarkerHandler) List(c *gin.Context) {
	markers, err := h.service.List(c.Request.Context(), c.Param("dataset"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, markers)
}

// Get returns one marker
// GET /api/v1/datasets/:dataset/markers/:id
func (h *MarkerHandler) Get(c *gin.Context) {
	marker, err := h.service.Get(c.Request.Context(), c.Param("dataset"), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, marker)
}

// Create stores a new marker
// POST /api/v1/datasets/:dataset/markers
func (h *MarkerHandler) Create(c *gin.Context) {
	var in models.MarkerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	marker, err := h.service.Create(c.Request.Context(), c.Param("dataset"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, marker)
}

// Update changes the fields present in the body
// PUT /api/v1/datasets/:dataset/markers/:id
func (h *MarkerHandler) Update(c *gin.Context) {
	var in models.MarkerInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	marker, err := h.service.Update(c.Request.Context(), c.Param("dataset"), c.Param("id"), in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, marker)
}

// Delete removes a marker
// DELETE /api/v1/datasets/:dataset/markers/:id
func (h *MarkerHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("dataset"), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"id": c.Param("id")})
}
