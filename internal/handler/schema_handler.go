package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/resourcemap-backend-go/internal/models"
	"github.com/jengzang/resourcemap-backend-go/internal/service"
	"github.com/jengzang/resourcemap-backend-go/pkg/response"
)

// SchemaHandler handles HTTP requests for category schemas
type SchemaHandler struct {
	service *service.SchemaService
}

// NewSchemaHandler creates a new schema handler
func NewSchemaHandler(service *service.SchemaService) *SchemaHandler {
	return &SchemaHandler{service: service}
}

// PutSchemaRequest is the body of a schema upsert
type PutSchemaRequest struct {
	Categories []models.Category `json:"categories"`
}

// List returns every schema
// GET /api/v1/schemas
func (h *SchemaHandler) List(c *gin.Context) {
	schemas, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if len(schemas) == 0 {
		response.NotFound(c, "No schemas found")
		return
	}
	response.Success(c, schemas)
}

// Get returns the schema of a project
// GET /api/v1/schemas/:project
func (h *SchemaHandler) Get(c *gin.Context) {
	schema, err := h.service.Get(c.Request.Context(), c.Param("project"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, schema)
}

// Put creates or replaces a project's category list
// PUT /api/v1/schemas/:project
func (h *SchemaHandler) Put(c *gin.Context) {
	var req PutSchemaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	schema, err := h.service.Put(c.Request.Context(), c.Param("project"), req.Categories)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, schema)
}

// Selectors lists the category selectors of a project
// GET /api/v1/schemas/:project/selectors
func (h *SchemaHandler) Selectors(c *gin.Context) {
	selectors, err := h.service.Selectors(c.Request.Context(), c.Param("project"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, selectors)
}
