package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/milfin/milfin-api/internal/repository"
	"github.com/milfin/milfin-api/internal/services"
	"github.com/milfin/milfin-api/internal/storage"
	"github.com/shopspring/decimal"
)

type AllocationHandler struct {
	allocationService *services.AllocationService
	exportService     *services.ExportService
	storage           *storage.LocalStorage
}

func NewAllocationHandler(allocationService *services.AllocationService, exportService *services.ExportService, storage *storage.LocalStorage) *AllocationHandler {
	return &AllocationHandler{allocationService: allocationService, exportService: exportService, storage: storage}
}

// @Summary List Allocations
// @Description Get a paginated list of funding allocations
// @Tags Allocations
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search term"
// @Param currency query string false "Filter by currency"
// @Param start_date query string false "Received from (YYYY-MM-DD)"
// @Param end_date query string false "Received until (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /allocations [get]
func (h *AllocationHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	for _, key := range []string{"currency", "start_date", "end_date"} {
		if v := c.Query(key); v != "" {
			query.Filters[key] = v
		}
	}

	allocations, total, err := h.allocationService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for _, a := range allocations {
		responses = append(responses, a.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{"allocations": responses, "pagination": pagination(query.Page, query.PerPage, total)})
}

// @Summary Get Allocation
// @Description Get an allocation by ID
// @Tags Allocations
// @Accept json
// @Produce json
// @Param allocation_id path int true "Allocation ID"
// @Success 200 {object} models.AllocationResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /allocations/{allocation_id} [get]
func (h *AllocationHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("allocation_id"), 10, 32)
	allocation, err := h.allocationService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Allocation not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"allocation": allocation.ToResponse()})
}

type CreateAllocationRequest struct {
	ReceivedDate string           `json:"received_date" binding:"required"`
	Amount       decimal.Decimal  `json:"amount" binding:"required"`
	Currency     string           `json:"currency" binding:"required"`
	Source       string           `json:"source" binding:"required"`
	Notes        *string          `json:"notes"`
	PreviousDebt *decimal.Decimal `json:"previous_debt"`
}

// @Summary Create Allocation
// @Description Register a received funding allocation (Finance)
// @Tags Allocations
// @Accept json
// @Produce json
// @Param request body CreateAllocationRequest true "Allocation Data"
// @Success 201 {object} models.AllocationResponse
// @Security BearerAuth
// @Router /allocations [post]
func (h *AllocationHandler) Create(c *gin.Context) {
	var req CreateAllocationRequest
	if err := BindNestedOrFlat(c, "allocation", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	receivedDate, err := time.Parse("2006-01-02", req.ReceivedDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "received_date must be in YYYY-MM-DD format"})
		return
	}

	input := &services.CreateAllocationInput{
		ReceivedDate: receivedDate,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Source:       req.Source,
		Notes:        req.Notes,
		PreviousDebt: req.PreviousDebt,
	}

	allocation, err := h.allocationService.Create(c.Request.Context(), input, currentUser(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"allocation": allocation.ToResponse()})
}

type UpdateAllocationRequest struct {
	ReceivedDate *string          `json:"received_date"`
	Amount       *decimal.Decimal `json:"amount"`
	Currency     *string          `json:"currency"`
	Source       *string          `json:"source"`
	Notes        *string          `json:"notes"`
	PreviousDebt *decimal.Decimal `json:"previous_debt"`
}

// @Summary Update Allocation
// @Description Update an existing allocation (Finance)
// @Tags Allocations
// @Accept json
// @Produce json
// @Param allocation_id path int true "Allocation ID"
// @Param request body UpdateAllocationRequest true "Allocation Data"
// @Success 200 {object} models.AllocationResponse
// @Security BearerAuth
// @Router /allocations/{allocation_id} [patch]
func (h *AllocationHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("allocation_id"), 10, 32)
	var req UpdateAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := &services.UpdateAllocationInput{
		Amount:       req.Amount,
		Currency:     req.Currency,
		Source:       req.Source,
		Notes:        req.Notes,
		PreviousDebt: req.PreviousDebt,
	}
	if req.ReceivedDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.ReceivedDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "received_date must be in YYYY-MM-DD format"})
			return
		}
		input.ReceivedDate = &parsed
	}

	allocation, err := h.allocationService.Update(c.Request.Context(), uint(id), input, currentUser(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"allocation": allocation.ToResponse()})
}

// @Summary Delete Allocation
// @Description Delete an allocation (Finance)
// @Tags Allocations
// @Accept json
// @Produce json
// @Param allocation_id path int true "Allocation ID"
// @Success 200 {object} map[string]string
// @Security BearerAuth
// @Router /allocations/{allocation_id} [delete]
func (h *AllocationHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("allocation_id"), 10, 32)
	if err := h.allocationService.Delete(c.Request.Context(), uint(id), currentUser(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Allocation deleted"})
}

// @Summary Export Allocations
// @Description Download the allocation ledger as CSV or XLSX
// @Tags Allocations
// @Produce application/octet-stream
// @Param format query string false "Export format (csv or xlsx)" default(csv)
// @Success 200 {file} file
// @Security BearerAuth
// @Router /allocations/export [get]
func (h *AllocationHandler) Export(c *gin.Context) {
	actor := currentUser(c)
	format := c.DefaultQuery("format", "csv")

	var (
		data     []byte
		filename string
		err      error
	)
	switch format {
	case "xlsx":
		data, filename, err = h.exportService.ExportAllocationsXLSX(c.Request.Context(), actor, c.ClientIP(), c.Request.UserAgent())
	default:
		data, filename, err = h.exportService.ExportAllocationsCSV(c.Request.Context(), actor, c.ClientIP(), c.Request.UserAgent())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	contentType := "text/csv"
	if format == "xlsx" {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
